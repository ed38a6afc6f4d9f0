package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/inboxsummary/internal/instrumentation"
	"github.com/teemow/inboxsummary/internal/logging"
)

const (
	// DefaultBaseURL is the public Gemini endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-1.5-pro-latest"

	apiKeyHeader = "x-goog-api-key"

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 * 1024
)

// Client talks to the Gemini REST API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. The caller is responsible for
// its transport instrumentation.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMetrics records each call as a google_api_operation.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a Client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		httpClient: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = logging.WithService(c.logger, instrumentation.ServiceGemini)
	return c
}

// Summarize asks the model for the key points of an email and returns the raw
// generated text.
func (c *Client) Summarize(ctx context.Context, req SummaryRequest) (text string, err error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGemini, instrumentation.OperationGenerate,
		attribute.String("gemini.model", c.model),
		attribute.Bool(instrumentation.SpanAttrAttachment, req.File != nil && !req.File.IsZero()),
	)
	start := time.Now()
	defer func() {
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGemini, instrumentation.OperationGenerate,
			instrumentation.StatusFor(err), time.Since(start))
		instrumentation.EndSpan(span, err)
	}()

	body, err := json.Marshal(buildContentRequest(req))
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp GenerateContentResponse
	if _, err := c.doJSON(httpReq, &resp); err != nil {
		return "", fmt.Errorf("generateContent: %w", err)
	}

	text, err = resp.Text()
	if err != nil {
		return "", err
	}

	c.logger.Debug("summary generated",
		logging.Operation(instrumentation.OperationGenerate),
		slog.Int("chars", len(text)),
	)
	return text, nil
}

// doJSON sends req with the API key and decodes a 2xx JSON body into out.
// Non-2xx responses are returned as *APIError.
func (c *Client) doJSON(req *http.Request, out any) (http.Header, error) {
	req.Header.Set(apiKeyHeader, c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res.Header, decodeAPIError(res)
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return res.Header, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return res.Header, nil
}

func decodeAPIError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))

	apiErr := &APIError{StatusCode: res.StatusCode}

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		apiErr.Message = env.Error.Message
		apiErr.Status = env.Error.Status
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(res.StatusCode)
	}
	return apiErr
}
