package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	gomail "github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/inboxsummary/internal/mail"
)

func TestSend(t *testing.T) {
	fake := newFakeGmail(t)
	fake.json(http.MethodPost, "messages/send", `{"id":"sent-1","threadId":"t-new"}`)

	id, err := fake.client().Send(context.Background(), &mail.Outgoing{
		To:       []string{"me@example.org"},
		Subject:  "Summary of Invoice",
		HTMLBody: "<h1>AI Key Points</h1>",
	})
	require.NoError(t, err)
	assert.Equal(t, "sent-1", id)

	var msg gmail.Message
	fake.body(http.MethodPost, "messages/send", &msg)
	raw, err := base64.URLEncoding.DecodeString(msg.Raw)
	require.NoError(t, err)

	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)
	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Summary of Invoice", subject)
}

func TestSend_Errors(t *testing.T) {
	fake := newFakeGmail(t)
	client := fake.client()

	_, err := client.Send(context.Background(), &mail.Outgoing{Subject: "no recipient"})
	assert.Error(t, err)
	assert.Empty(t, fake.calls, "invalid messages are not sent")

	_, err = client.Send(context.Background(), &mail.Outgoing{To: []string{"a@b.c"}, Subject: "s"})
	assert.Error(t, err, "api error is returned")
}
