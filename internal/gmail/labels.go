package gmail

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/inboxsummary/internal/instrumentation"
	"github.com/teemow/inboxsummary/internal/logging"
)

// ErrLabelNotFound is returned by LabelID for an unknown label name.
var ErrLabelNotFound = errors.New("label not found")

// LabelID resolves a label name to its ID. System labels such as STARRED
// resolve to themselves. User labels are listed once and cached.
func (c *Client) LabelID(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.labels == nil {
		var res *gmail.ListLabelsResponse
		err := c.observe(ctx, instrumentation.OperationList, func(ctx context.Context) error {
			var err error
			res, err = c.svc.Labels.List(me).Context(ctx).Do()
			return err
		})
		if err != nil {
			return "", fmt.Errorf("failed to list labels: %w", err)
		}

		c.labels = make(map[string]string, len(res.Labels))
		for _, l := range res.Labels {
			c.labels[l.Name] = l.Id
		}
	}

	id, ok := c.labels[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrLabelNotFound, name)
	}
	return id, nil
}

// RemoveThreadLabel removes a label from every message of a thread.
func (c *Client) RemoveThreadLabel(ctx context.Context, threadID, labelID string) error {
	err := c.observe(ctx, instrumentation.OperationModify, func(ctx context.Context) error {
		_, err := c.svc.Threads.Modify(me, threadID, &gmail.ModifyThreadRequest{
			RemoveLabelIds: []string{labelID},
		}).Context(ctx).Do()
		return err
	}, attribute.String(instrumentation.SpanAttrThreadID, threadID))
	if err != nil {
		return fmt.Errorf("failed to remove label %s from thread %s: %w", labelID, threadID, err)
	}

	c.logger.Debug("label removed", logging.ThreadID(threadID))
	return nil
}

// ModifyMessage adds and removes labels on a single message.
func (c *Client) ModifyMessage(ctx context.Context, messageID string, add, remove []string) error {
	err := c.observe(ctx, instrumentation.OperationModify, func(ctx context.Context) error {
		_, err := c.svc.Messages.Modify(me, messageID, &gmail.ModifyMessageRequest{
			AddLabelIds:    add,
			RemoveLabelIds: remove,
		}).Context(ctx).Do()
		return err
	}, attribute.String(instrumentation.SpanAttrMessageID, messageID))
	if err != nil {
		return fmt.Errorf("failed to modify message %s: %w", messageID, err)
	}
	return nil
}
