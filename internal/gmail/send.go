package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/inboxsummary/internal/instrumentation"
	"github.com/teemow/inboxsummary/internal/logging"
	"github.com/teemow/inboxsummary/internal/mail"
)

// Send composes out as a MIME message and sends it from the account.
// It returns the ID of the sent message.
func (c *Client) Send(ctx context.Context, out *mail.Outgoing) (string, error) {
	raw, err := mail.Compose(out)
	if err != nil {
		return "", err
	}

	var sent *gmail.Message
	err = c.observe(ctx, instrumentation.OperationSend, func(ctx context.Context) error {
		var err error
		sent, err = c.svc.Messages.Send(me, &gmail.Message{
			Raw: base64.URLEncoding.EncodeToString(raw),
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug("email sent",
		logging.MessageID(sent.Id),
		slog.Int("attachments", len(out.Attachments)),
	)
	return sent.Id, nil
}
