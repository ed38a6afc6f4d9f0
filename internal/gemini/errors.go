package gemini

import (
	"errors"
	"fmt"
)

var (
	// ErrNoUploadSession is returned when the upload start call does not
	// return a session URL. Callers may continue without the file.
	ErrNoUploadSession = errors.New("gemini: upload start returned no session URL")

	// ErrEmptyResponse is returned when a generateContent response carries
	// no candidate text.
	ErrEmptyResponse = errors.New("gemini: response contains no candidate text")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini: http %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini: http %d: %s", e.StatusCode, e.Message)
}
