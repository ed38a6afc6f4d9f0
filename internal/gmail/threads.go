package gmail

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/inboxsummary/internal/instrumentation"
	"github.com/teemow/inboxsummary/internal/mail"
)

// ForeachThread calls fn with the ID of every thread matching q, in the order
// the API returns them. All pages are listed before fn is first called, so fn
// may change which threads match q. Iteration stops at the first error from fn.
func (c *Client) ForeachThread(ctx context.Context, q string, fn func(threadID string) error) error {
	ids, err := c.listThreadIDs(ctx, q)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) listThreadIDs(ctx context.Context, q string) ([]string, error) {
	var ids []string
	pageToken := ""
	for {
		var res *gmail.ListThreadsResponse
		err := c.observe(ctx, instrumentation.OperationList, func(ctx context.Context) error {
			req := c.svc.Threads.List(me).Q(q).Context(ctx)
			if pageToken != "" {
				req.PageToken(pageToken)
			}
			var err error
			res, err = req.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list threads for %q: %w", q, err)
		}

		for _, t := range res.Threads {
			ids = append(ids, t.Id)
		}
		if res.NextPageToken == "" {
			return ids, nil
		}
		pageToken = res.NextPageToken
	}
}

// GetThread retrieves a thread with all its messages.
func (c *Client) GetThread(ctx context.Context, threadID string) (*mail.Thread, error) {
	var t *gmail.Thread
	err := c.observe(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		t, err = c.svc.Threads.Get(me, threadID).Format("full").Context(ctx).Do()
		return err
	}, attribute.String(instrumentation.SpanAttrThreadID, threadID))
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", threadID, err)
	}

	thread := &mail.Thread{ID: t.Id}
	for _, m := range t.Messages {
		msg, err := convertMessage(m)
		if err != nil {
			return nil, fmt.Errorf("thread %s: %w", threadID, err)
		}
		thread.Messages = append(thread.Messages, msg)
	}
	if len(thread.Messages) > 0 {
		thread.Subject = thread.Messages[0].Subject
	}

	c.logger.Debug("thread loaded",
		slog.String("thread_id", threadID),
		slog.Int("messages", len(thread.Messages)),
	)
	return thread, nil
}
