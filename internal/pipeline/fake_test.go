package pipeline

import (
	"context"
	"errors"

	"github.com/teemow/inboxsummary/internal/gemini"
	"github.com/teemow/inboxsummary/internal/gmail"
	"github.com/teemow/inboxsummary/internal/mail"
)

type modifyCall struct {
	MessageID   string
	Add, Remove []string
}

type fakeMailbox struct {
	order   []string
	threads map[string]*mail.Thread
	labels  map[string]string
	content map[string][]byte

	queries        []string
	removedLabels  []string
	modified       []modifyCall
	loaded         []string
	getErr         error
	removeLabelErr error
}

func newFakeMailbox(threads ...*mail.Thread) *fakeMailbox {
	f := &fakeMailbox{
		threads: map[string]*mail.Thread{},
		labels:  map[string]string{"AI Summary": "Label_1"},
		content: map[string][]byte{},
	}
	for _, t := range threads {
		f.order = append(f.order, t.ID)
		f.threads[t.ID] = t
	}
	return f
}

func (f *fakeMailbox) ForeachThread(ctx context.Context, query string, fn func(string) error) error {
	f.queries = append(f.queries, query)
	for _, id := range f.order {
		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeMailbox) GetThread(ctx context.Context, id string) (*mail.Thread, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	t, ok := f.threads[id]
	if !ok {
		return nil, errors.New("no such thread")
	}
	return t, nil
}

func (f *fakeMailbox) LabelID(ctx context.Context, name string) (string, error) {
	id, ok := f.labels[name]
	if !ok {
		return "", gmail.ErrLabelNotFound
	}
	return id, nil
}

func (f *fakeMailbox) RemoveThreadLabel(ctx context.Context, threadID, labelID string) error {
	if f.removeLabelErr != nil {
		return f.removeLabelErr
	}
	f.removedLabels = append(f.removedLabels, threadID+"/"+labelID)
	return nil
}

func (f *fakeMailbox) ModifyMessage(ctx context.Context, id string, add, remove []string) error {
	f.modified = append(f.modified, modifyCall{MessageID: id, Add: add, Remove: remove})
	return nil
}

func (f *fakeMailbox) LoadAttachment(ctx context.Context, a *mail.Attachment) error {
	f.loaded = append(f.loaded, a.AttachmentID)
	data, ok := f.content[a.AttachmentID]
	if !ok {
		return errors.New("attachment not found")
	}
	a.Data = data
	return nil
}

type fakeSummarizer struct {
	summary      string
	summarizeErr map[string]error // keyed by subject
	ref          gemini.FileReference
	uploadErr    error

	requests []gemini.SummaryRequest
	uploads  []string
}

func (f *fakeSummarizer) UploadFile(ctx context.Context, name, mimeType string, data []byte) (gemini.FileReference, error) {
	f.uploads = append(f.uploads, name+"|"+mimeType+"|"+string(data))
	if f.uploadErr != nil {
		return gemini.FileReference{}, f.uploadErr
	}
	return f.ref, nil
}

func (f *fakeSummarizer) Summarize(ctx context.Context, req gemini.SummaryRequest) (string, error) {
	f.requests = append(f.requests, req)
	if err := f.summarizeErr[req.Subject]; err != nil {
		return "", err
	}
	return f.summary, nil
}

type fakeSender struct {
	sent []*mail.Outgoing
	err  error
}

func (f *fakeSender) Send(ctx context.Context, out *mail.Outgoing) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, out)
	return "sent-" + out.Subject, nil
}

func message(id, threadID, subject string, labels ...string) *mail.Message {
	return &mail.Message{
		ID:        id,
		ThreadID:  threadID,
		From:      "Alice <alice@example.com>",
		Subject:   subject,
		PlainBody: "body of " + id,
		RawBody:   "<p>body of " + id + "</p>",
		LabelIDs:  labels,
	}
}
