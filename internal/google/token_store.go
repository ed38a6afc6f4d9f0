package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no token is stored for an account.
var ErrNoToken = errors.New("no Google OAuth token found")

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name must not be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// TokenStore loads and saves OAuth tokens per account.
type TokenStore interface {
	Load(account string) (*oauth2.Token, error)
	Save(account string, token *oauth2.Token) error
}

// FileTokenStore keeps one JSON token file per account in Dir.
type FileTokenStore struct {
	Dir string
}

// NewFileTokenStore returns a store rooted in the default cache directory.
func NewFileTokenStore() *FileTokenStore {
	return &FileTokenStore{Dir: filepath.Join(userCacheDir(), "inboxsummary")}
}

// Path returns the token file for account.
func (s *FileTokenStore) Path(account string) string {
	return filepath.Join(s.Dir, "google-"+account+".token")
}

// Has reports whether a token file exists for account.
func (s *FileTokenStore) Has(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(s.Path(account))
	return err == nil
}

// Load reads the token for account. It returns ErrNoToken if none is stored.
func (s *FileTokenStore) Load(account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(account))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for account %s, run 'inboxsummary auth --account %s'", ErrNoToken, account, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", s.Path(account), err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, fmt.Errorf("invalid token file %s: no access or refresh token", s.Path(account))
	}
	return &tok, nil
}

// Save writes token for account with owner-only permissions.
func (s *FileTokenStore) Save(account string, token *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(s.Path(account), data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
