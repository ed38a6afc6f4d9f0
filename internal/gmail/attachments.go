package gmail

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/inboxsummary/internal/instrumentation"
	"github.com/teemow/inboxsummary/internal/mail"
)

// MaxAttachmentSize is the largest attachment that is downloaded (25MB).
const MaxAttachmentSize = 25 * 1024 * 1024

// LoadAttachment downloads the content of a into a.Data. Attachments that
// are already loaded are left untouched.
func (c *Client) LoadAttachment(ctx context.Context, a *mail.Attachment) error {
	if a.Loaded() {
		return nil
	}
	if a.MessageID == "" || a.AttachmentID == "" {
		return fmt.Errorf("attachment %q has no message or attachment ID", a.Filename)
	}
	if a.Size > MaxAttachmentSize {
		return fmt.Errorf("attachment %q size %d exceeds maximum size %d", a.Filename, a.Size, MaxAttachmentSize)
	}

	var body *gmail.MessagePartBody
	err := c.observe(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		body, err = c.svc.Messages.Attachments.Get(me, a.MessageID, a.AttachmentID).Context(ctx).Do()
		return err
	}, attribute.String(instrumentation.SpanAttrMessageID, a.MessageID))
	if err != nil {
		return fmt.Errorf("failed to get attachment %q: %w", a.Filename, err)
	}

	if body.Size > MaxAttachmentSize {
		return fmt.Errorf("attachment %q size %d exceeds maximum size %d", a.Filename, body.Size, MaxAttachmentSize)
	}

	data, err := decodeBase64(body.Data)
	if err != nil {
		return fmt.Errorf("attachment %q: %w", a.Filename, err)
	}
	a.Data = data
	return nil
}
