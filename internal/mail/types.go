package mail

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// PDFMimeType is the MIME type of attachments forwarded to the summary model.
const PDFMimeType = "application/pdf"

// Thread is a group of related messages as returned by a mailbox search.
type Thread struct {
	ID       string
	Subject  string
	Messages []*Message
}

// Message is a fetched email. It is not modified after it has been read from
// the mailbox.
type Message struct {
	ID       string
	ThreadID string
	From     string
	Subject  string
	// PlainBody is the text/plain body, or a text rendering of the HTML body
	// when the message has no plain part.
	PlainBody string
	// RawBody is the body quoted in the notification: the HTML body when
	// present, the plain body otherwise.
	RawBody     string
	LabelIDs    []string
	Attachments []*Attachment
}

// HasLabel reports whether the message carries the given label ID.
func (m *Message) HasLabel(labelID string) bool {
	return lo.Contains(m.LabelIDs, labelID)
}

// Attachment describes a file attached to a message. Data may be nil until the
// mailbox loads it.
type Attachment struct {
	MessageID    string
	AttachmentID string
	Filename     string
	MimeType     string
	Size         int64
	Data         []byte
}

// Loaded reports whether the attachment content is available.
func (a *Attachment) Loaded() bool {
	return a.Data != nil
}

// IsPDF reports whether the attachment is a PDF document. Some senders label
// PDFs as application/octet-stream, so the file extension is also checked.
func (a *Attachment) IsPDF() bool {
	mimeType := strings.ToLower(strings.TrimSpace(a.MimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == PDFMimeType {
		return true
	}
	return mimeType == "application/octet-stream" &&
		strings.EqualFold(filepath.Ext(a.Filename), ".pdf")
}

// FirstPDF returns the first PDF attachment, or nil if there is none.
func FirstPDF(attachments []*Attachment) *Attachment {
	pdf, ok := lo.Find(attachments, func(a *Attachment) bool {
		return a != nil && a.IsPDF()
	})
	if !ok {
		return nil
	}
	return pdf
}
