package gemini

import "strings"

const (
	promptEmail = "Give me the key points of this email"
	promptPDF   = " and of the attached PDF"
)

// BuildPrompt renders the text part of a summary request.
func BuildPrompt(req SummaryRequest) string {
	var b strings.Builder
	b.WriteString(promptEmail)
	if req.File != nil && !req.File.IsZero() {
		b.WriteString(promptPDF)
	}
	b.WriteString("\n\nFrom: ")
	b.WriteString(req.From)
	b.WriteString("\nSubject: ")
	b.WriteString(req.Subject)
	b.WriteString("\nEmail Body: ")
	b.WriteString(req.Body)
	return b.String()
}

// buildContentRequest assembles the generateContent payload: the prompt text
// followed by the file reference when one is present.
func buildContentRequest(req SummaryRequest) GenerateContentRequest {
	parts := []Part{{Text: BuildPrompt(req)}}
	if req.File != nil && !req.File.IsZero() {
		parts = append(parts, Part{FileData: &FileData{
			MimeType: req.File.MimeType,
			FileURI:  req.File.URI,
		}})
	}
	return GenerateContentRequest{Contents: []Content{{Parts: parts}}}
}
