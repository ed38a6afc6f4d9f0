package gemini

// FileReference identifies a file previously uploaded to the Files API.
// It is only valid for a limited time after the upload.
type FileReference struct {
	URI      string
	MimeType string
}

// IsZero reports whether r refers to no file.
func (r FileReference) IsZero() bool {
	return r.URI == ""
}

// SummaryRequest is the input of Summarize.
type SummaryRequest struct {
	From    string
	Subject string
	Body    string

	// File is an optional uploaded attachment to include in the prompt.
	File *FileReference
}

// Part is one element of a content turn. Exactly one field is set.
type Part struct {
	Text     string    `json:"text,omitempty"`
	FileData *FileData `json:"file_data,omitempty"`
}

// FileData points the model at an uploaded file.
type FileData struct {
	MimeType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

// Content is a single turn of the conversation.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerateContentRequest is the body of models.generateContent.
type GenerateContentRequest struct {
	Contents []Content `json:"contents"`
}

// GenerateContentResponse is the decoded generateContent response.
type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// Text returns the text of the first part of the first candidate.
func (r *GenerateContentResponse) Text() (string, error) {
	if r == nil || len(r.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", ErrEmptyResponse
	}
	return parts[0].Text, nil
}

// File is the metadata the Files API returns for an upload.
type File struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	SizeBytes   string `json:"sizeBytes,omitempty"`
	URI         string `json:"uri"`
	State       string `json:"state,omitempty"`
}

type uploadStartRequest struct {
	File struct {
		DisplayName string `json:"display_name"`
	} `json:"file"`
}

type uploadResponse struct {
	File File `json:"file"`
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
