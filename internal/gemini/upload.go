package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/inboxsummary/internal/instrumentation"
	"github.com/teemow/inboxsummary/internal/logging"
)

// Resumable upload protocol headers.
const (
	headerUploadProtocol      = "X-Goog-Upload-Protocol"
	headerUploadCommand       = "X-Goog-Upload-Command"
	headerUploadOffset        = "X-Goog-Upload-Offset"
	headerUploadURL           = "X-Goog-Upload-URL"
	headerUploadContentLength = "X-Goog-Upload-Header-Content-Length"
	headerUploadContentType   = "X-Goog-Upload-Header-Content-Type"
)

// UploadFile uploads data to the Files API in two steps: a start call that
// declares the metadata and returns a session URL, then a single
// "upload, finalize" call carrying the bytes.
//
// If the start call succeeds without a session URL, ErrNoUploadSession is
// returned.
func (c *Client) UploadFile(ctx context.Context, name, mimeType string, data []byte) (ref FileReference, err error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGemini, instrumentation.OperationUpload,
		attribute.String("gemini.file.mime_type", mimeType),
		attribute.Int("gemini.file.size", len(data)),
	)
	start := time.Now()
	defer func() {
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGemini, instrumentation.OperationUpload,
			instrumentation.StatusFor(err), time.Since(start))
		instrumentation.EndSpan(span, err)
	}()

	sessionURL, err := c.startUpload(ctx, name, mimeType, len(data))
	if err != nil {
		return FileReference{}, err
	}

	file, err := c.finalizeUpload(ctx, sessionURL, data)
	if err != nil {
		return FileReference{}, err
	}
	if file.URI == "" {
		return FileReference{}, fmt.Errorf("upload finalize: response has no file uri")
	}

	if file.MimeType == "" {
		file.MimeType = mimeType
	}

	c.logger.Debug("file uploaded",
		logging.Operation(instrumentation.OperationUpload),
		slog.String("file", file.Name),
		slog.Int("bytes", len(data)),
	)
	return FileReference{URI: file.URI, MimeType: file.MimeType}, nil
}

func (c *Client) startUpload(ctx context.Context, name, mimeType string, size int) (string, error) {
	var meta uploadStartRequest
	meta.File.DisplayName = name

	body, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode upload metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/v1beta/files", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerUploadProtocol, "resumable")
	req.Header.Set(headerUploadCommand, "start")
	req.Header.Set(headerUploadContentLength, strconv.Itoa(size))
	req.Header.Set(headerUploadContentType, mimeType)

	header, err := c.doJSON(req, nil)
	if err != nil {
		return "", fmt.Errorf("upload start: %w", err)
	}

	sessionURL := header.Get(headerUploadURL)
	if sessionURL == "" {
		return "", ErrNoUploadSession
	}
	return sessionURL, nil
}

func (c *Client) finalizeUpload(ctx context.Context, sessionURL string, data []byte) (File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sessionURL, bytes.NewReader(data))
	if err != nil {
		return File{}, err
	}
	req.ContentLength = int64(len(data))
	req.Header.Set(headerUploadOffset, "0")
	req.Header.Set(headerUploadCommand, "upload, finalize")

	var res uploadResponse
	if _, err := c.doJSON(req, &res); err != nil {
		return File{}, fmt.Errorf("upload finalize: %w", err)
	}
	return res.File, nil
}
