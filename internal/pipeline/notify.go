package pipeline

import (
	"html"
	"strings"

	"github.com/teemow/inboxsummary/internal/mail"
)

// SubjectPrefix starts the subject of every summary email.
const SubjectPrefix = "Summary of "

// ComposeNotification builds the summary email for msg. summaryHTML is the
// formatted model answer. The original message is quoted below it with its
// sender and subject escaped. A non-nil pdf is attached.
func ComposeNotification(msg *mail.Message, summaryHTML, recipient string, pdf *mail.Attachment) *mail.Outgoing {
	var b strings.Builder
	b.WriteString("<h1>AI Key Points</h1>")
	b.WriteString(summaryHTML)
	b.WriteString("<h1>Original Email</h1>")
	b.WriteString("From: ")
	b.WriteString(html.EscapeString(msg.From))
	b.WriteString("<br>Subject: ")
	b.WriteString(html.EscapeString(msg.Subject))
	b.WriteString("<br>")
	b.WriteString(msg.RawBody)

	out := &mail.Outgoing{
		To:       []string{recipient},
		Subject:  SubjectPrefix + msg.Subject,
		HTMLBody: b.String(),
	}
	if pdf != nil {
		out.Attachments = []*mail.Attachment{pdf}
	}
	return out
}
