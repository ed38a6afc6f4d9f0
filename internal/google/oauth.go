package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/inboxsummary/internal/logging"
)

// ErrNoCredentials is returned when no OAuth client credentials file is configured.
var ErrNoCredentials = errors.New("no Google OAuth client credentials file configured")

// oobRedirect makes Google show the authorization code to the user instead of
// redirecting to a local server.
const oobRedirect = "urn:ietf:wg:oauth:2.0:oob"

// LoadOAuthConfig reads an installed-application credentials JSON file.
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	if credentialsFile == "" {
		return nil, ErrNoCredentials
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	conf, err := google.ConfigFromJSON(data, DefaultOAuthScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if conf.RedirectURL == "" {
		conf.RedirectURL = oobRedirect
	}
	return conf, nil
}

// AuthCodeURL returns the URL the user opens to grant access.
func AuthCodeURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeAndSave trades an authorization code for a token and stores it.
func ExchangeAndSave(ctx context.Context, conf *oauth2.Config, store TokenStore, account, code string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return store.Save(account, tok)
}

// NewHTTPClient returns an authenticated, instrumented HTTP client for
// account. Token refreshes are written back to store.
func NewHTTPClient(ctx context.Context, conf *oauth2.Config, store TokenStore, account string) (*http.Client, error) {
	tok, err := store.Load(account)
	if err != nil {
		return nil, err
	}

	// Force HTTP/1.1; the Gmail API intermittently resets HTTP/2 streams.
	base := &http.Client{
		Transport: otelhttp.NewTransport(&http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}),
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	ts := &persistingTokenSource{
		base:    conf.TokenSource(ctx, tok),
		store:   store,
		account: account,
		last:    tok.AccessToken,
	}

	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, ts)), nil
}

// persistingTokenSource saves every newly issued access token.
type persistingTokenSource struct {
	base    oauth2.TokenSource
	store   TokenStore
	account string

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token for account %s: %w", s.account, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.store.Save(s.account, tok); err != nil {
			slog.Warn("failed to persist refreshed token",
				logging.Account(s.account),
				logging.Err(err),
			)
		}
	}
	return tok, nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return os.TempDir()
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
