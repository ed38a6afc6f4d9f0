package pipeline

import (
	"context"

	"github.com/teemow/inboxsummary/internal/gemini"
	"github.com/teemow/inboxsummary/internal/mail"
)

// Mailbox is the part of the Gmail client the pipeline uses.
type Mailbox interface {
	ForeachThread(ctx context.Context, query string, fn func(threadID string) error) error
	GetThread(ctx context.Context, threadID string) (*mail.Thread, error)
	LabelID(ctx context.Context, name string) (string, error)
	RemoveThreadLabel(ctx context.Context, threadID, labelID string) error
	ModifyMessage(ctx context.Context, messageID string, add, remove []string) error
	LoadAttachment(ctx context.Context, a *mail.Attachment) error
}

// Summarizer produces the summary text for a message.
type Summarizer interface {
	UploadFile(ctx context.Context, name, mimeType string, data []byte) (gemini.FileReference, error)
	Summarize(ctx context.Context, req gemini.SummaryRequest) (string, error)
}

// Sender delivers the notification email and returns its message ID.
type Sender interface {
	Send(ctx context.Context, out *mail.Outgoing) (string, error)
}
