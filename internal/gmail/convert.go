package gmail

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"

	"github.com/jaytaylor/html2text"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/inboxsummary/internal/mail"
)

// HeaderValue extracts a top-level header value from a Gmail message.
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, header) {
			return h.Value
		}
	}
	return ""
}

// convertMessage turns a full-format Gmail message into a mail.Message.
func convertMessage(m *gmail.Message) (*mail.Message, error) {
	msg := &mail.Message{
		ID:       m.Id,
		ThreadID: m.ThreadId,
		From:     HeaderValue(m, "From"),
		Subject:  HeaderValue(m, "Subject"),
		LabelIDs: m.LabelIds,
	}

	var plain, htmlBody string
	var walkErr error
	walkParts(m.Payload, func(part *gmail.MessagePart) {
		if walkErr != nil || part.Body == nil {
			return
		}

		if part.Filename != "" {
			att := &mail.Attachment{
				MessageID:    m.Id,
				AttachmentID: part.Body.AttachmentId,
				Filename:     part.Filename,
				MimeType:     part.MimeType,
				Size:         part.Body.Size,
			}
			// Small attachments are returned inline instead of by ID.
			if part.Body.AttachmentId == "" && part.Body.Data != "" {
				data, err := decodeBase64(part.Body.Data)
				if err != nil {
					walkErr = fmt.Errorf("message %s: attachment %s: %w", m.Id, part.Filename, err)
					return
				}
				att.Data = data
			}
			msg.Attachments = append(msg.Attachments, att)
			return
		}

		if part.Body.Data == "" {
			return
		}
		switch mediaType(part.MimeType) {
		case "text/plain":
			if plain == "" {
				data, err := decodeBase64(part.Body.Data)
				if err != nil {
					walkErr = fmt.Errorf("message %s: plain body: %w", m.Id, err)
					return
				}
				plain = string(data)
			}
		case "text/html":
			if htmlBody == "" {
				data, err := decodeBase64(part.Body.Data)
				if err != nil {
					walkErr = fmt.Errorf("message %s: html body: %w", m.Id, err)
					return
				}
				htmlBody = string(data)
			}
		}
	})
	if walkErr != nil {
		return nil, walkErr
	}

	msg.PlainBody = plain
	if msg.PlainBody == "" && htmlBody != "" {
		text, err := html2text.FromString(htmlBody, html2text.Options{OmitLinks: true, TextOnly: true})
		if err == nil {
			msg.PlainBody = text
		}
	}

	msg.RawBody = htmlBody
	if msg.RawBody == "" {
		msg.RawBody = plainToHTML(plain)
	}
	return msg, nil
}

// walkParts visits part and all its descendants depth first.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, sub := range part.Parts {
		walkParts(sub, fn)
	}
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// decodeBase64 decodes Gmail body data, which is base64url with or without
// padding. Standard encoding is accepted as a fallback.
func decodeBase64(s string) ([]byte, error) {
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body data: %w", err)
	}
	return data, nil
}

// plainToHTML escapes a text body so it can be quoted inside an HTML email.
func plainToHTML(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}
