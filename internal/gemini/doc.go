// Package gemini is a small REST client for the Gemini generative language API.
//
// It covers the two calls inboxsummary needs: a resumable file upload, used to
// hand a PDF attachment to the model, and generateContent, used to request the
// summary. Requests carry the API key in the x-goog-api-key header and go
// through an otelhttp transport.
//
//	client := gemini.NewClient(apiKey, gemini.WithModel("gemini-1.5-pro-latest"))
//	ref, err := client.UploadFile(ctx, "invoice.pdf", "application/pdf", data)
//	if errors.Is(err, gemini.ErrNoUploadSession) {
//		// summarise without the attachment
//	}
//	text, err := client.Summarize(ctx, gemini.SummaryRequest{From: from, Subject: subject, Body: body, File: &ref})
package gemini
