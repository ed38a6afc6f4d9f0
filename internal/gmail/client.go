package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/inboxsummary/internal/instrumentation"
	"github.com/teemow/inboxsummary/internal/logging"
)

const me = "me"

// Well-known Gmail system labels.
const (
	LabelStarred = "STARRED"
	LabelUnread  = "UNREAD"
)

// Client wraps the Gmail Users service for one account.
type Client struct {
	svc     *gmail.UsersService
	metrics *instrumentation.Metrics
	logger  *slog.Logger

	mu     sync.Mutex
	labels map[string]string // label name to ID
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	metrics  *instrumentation.Metrics
	logger   *slog.Logger
	endpoint string
}

// WithMetrics records each API call.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithEndpoint overrides the Gmail API base URL.
func WithEndpoint(u string) Option {
	return func(o *clientOptions) { o.endpoint = u }
}

// NewClient creates a Gmail client for account using an authenticated
// HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, account string, opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	svcOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if o.endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(o.endpoint))
	}

	svc, err := gmail.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:     svc.Users,
		metrics: o.metrics,
		logger:  logging.WithAccount(logging.WithService(o.logger, instrumentation.ServiceGmail), account),
	}, nil
}

// observe wraps one API call in a span and records its metric.
func (c *Client) observe(ctx context.Context, operation string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, operation, attrs...)
	start := time.Now()

	err := fn(ctx)

	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGmail, operation, instrumentation.StatusFor(err), time.Since(start))
	instrumentation.EndSpan(span, err)
	return err
}
