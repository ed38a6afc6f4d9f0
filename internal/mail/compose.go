package mail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	gomail "github.com/emersion/go-message/mail"
)

// Outgoing is an HTML email to be sent.
type Outgoing struct {
	From        string
	To          []string
	Subject     string
	HTMLBody    string
	Attachments []*Attachment
	Date        time.Time
}

// Compose renders out as an RFC 5322 message. Messages with attachments
// become multipart/mixed; others are a single text/html part. Non-ASCII
// subjects are encoded per RFC 2047.
func Compose(out *Outgoing) ([]byte, error) {
	if len(out.To) == 0 {
		return nil, errors.New("at least one recipient is required")
	}
	if out.Subject == "" {
		return nil, errors.New("subject is required")
	}

	h, err := outgoingHeader(out)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if len(out.Attachments) == 0 {
		h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
		h.Set("Content-Transfer-Encoding", "quoted-printable")
		w, err := gomail.CreateSingleInlineWriter(&buf, h)
		if err != nil {
			return nil, fmt.Errorf("failed to create message: %w", err)
		}
		if _, err := io.WriteString(w, out.HTMLBody); err != nil {
			return nil, fmt.Errorf("failed to write body: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to close message: %w", err)
		}
		return buf.Bytes(), nil
	}

	mw, err := gomail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	var ih gomail.InlineHeader
	ih.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	ih.Set("Content-Transfer-Encoding", "quoted-printable")
	bw, err := mw.CreateSingleInline(ih)
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := io.WriteString(bw, out.HTMLBody); err != nil {
		return nil, fmt.Errorf("failed to write body: %w", err)
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close body part: %w", err)
	}

	for _, a := range out.Attachments {
		if !a.Loaded() {
			return nil, fmt.Errorf("attachment %q is not loaded", a.Filename)
		}
		var ah gomail.AttachmentHeader
		ah.SetContentType(attachmentMimeType(a), nil)
		ah.SetFilename(a.Filename)
		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		if _, err := aw.Write(a.Data); err != nil {
			return nil, fmt.Errorf("failed to write attachment %q: %w", a.Filename, err)
		}
		if err := aw.Close(); err != nil {
			return nil, fmt.Errorf("failed to close attachment %q: %w", a.Filename, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close message: %w", err)
	}
	return buf.Bytes(), nil
}

func outgoingHeader(out *Outgoing) (gomail.Header, error) {
	var h gomail.Header

	date := out.Date
	if date.IsZero() {
		date = time.Now()
	}
	h.SetDate(date)

	if out.From != "" {
		from, err := gomail.ParseAddress(out.From)
		if err != nil {
			return h, fmt.Errorf("invalid sender %q: %w", out.From, err)
		}
		h.SetAddressList("From", []*gomail.Address{from})
	}

	to := make([]*gomail.Address, 0, len(out.To))
	for _, addr := range out.To {
		a, err := gomail.ParseAddress(addr)
		if err != nil {
			return h, fmt.Errorf("invalid recipient %q: %w", addr, err)
		}
		to = append(to, a)
	}
	h.SetAddressList("To", to)
	h.SetSubject(out.Subject)
	return h, nil
}

func attachmentMimeType(a *Attachment) string {
	if a.IsPDF() {
		return PDFMimeType
	}
	if a.MimeType == "" {
		return "application/octet-stream"
	}
	return a.MimeType
}
