package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teemow/inboxsummary/internal/logging"
)

// Trigger modes select which messages are summarised.
const (
	TriggerLabel = "label"
	TriggerStar  = "star"
)

// Defaults.
const (
	DefaultLabel         = "AI Summary"
	DefaultModel         = "gemini-1.5-pro-latest"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultAccount       = "default"
	DefaultPollInterval  = 5 * time.Minute
	DefaultMetricsAddr   = ":9090"
	DefaultEnvFile       = ".env"
)

// envPrefix is used for every key that has no explicit environment name.
const envPrefix = "INBOXSUMMARY"

var (
	ErrMissingAPIKey        = errors.New("gemini_api_key is not set (GEMINI_API_KEY)")
	ErrMissingResponseEmail = errors.New("response_email is not set (RESPONSE_EMAIL)")
	ErrInvalidResponseEmail = errors.New("response_email is not a valid address")
	ErrInvalidTrigger       = errors.New("trigger must be 'label' or 'star'")
	ErrMissingLabel         = errors.New("label must be set when trigger is 'label'")
	ErrInvalidPollInterval  = errors.New("poll_interval must be positive")
)

// Config is the resolved configuration. It is built once by the command and
// passed to every component.
type Config struct {
	GeminiAPIKey  string `mapstructure:"gemini_api_key"`
	ResponseEmail string `mapstructure:"response_email"`

	Label   string `mapstructure:"label"`
	Trigger string `mapstructure:"trigger"`

	Model         string `mapstructure:"model"`
	GeminiBaseURL string `mapstructure:"gemini_base_url"`

	Account         string `mapstructure:"account"`
	CredentialsFile string `mapstructure:"credentials_file"`

	MarkRead  bool `mapstructure:"mark_read"`
	AttachPDF bool `mapstructure:"attach_pdf"`
	DryRun    bool `mapstructure:"dry_run"`

	PollInterval time.Duration `mapstructure:"poll_interval"`
	MetricsAddr  string        `mapstructure:"metrics_addr"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// LoadOptions tells Load where to look.
type LoadOptions struct {
	// ConfigFile is an explicit YAML file. When empty, config.yaml is looked
	// up in the user config directory and the working directory, and a
	// missing file is not an error.
	ConfigFile string

	// EnvFile is a dotenv file. When empty, DefaultEnvFile is tried and may
	// be missing.
	EnvFile string

	// Flags maps configuration keys to command-line flags. A flag only
	// overrides other sources when it was set explicitly.
	Flags map[string]*pflag.Flag
}

// Load resolves the configuration. It does not validate it.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}

	if err := readConfigFile(v, opts.ConfigFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Trigger = strings.ToLower(strings.TrimSpace(cfg.Trigger))
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("label", DefaultLabel)
	v.SetDefault("trigger", TriggerLabel)
	v.SetDefault("model", DefaultModel)
	v.SetDefault("gemini_base_url", DefaultGeminiBaseURL)
	v.SetDefault("account", DefaultAccount)
	v.SetDefault("credentials_file", filepath.Join(DefaultConfigDir(), "credentials.json"))
	v.SetDefault("mark_read", false)
	v.SetDefault("attach_pdf", true)
	v.SetDefault("dry_run", false)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("metrics_addr", DefaultMetricsAddr)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", logging.FormatText)
}

func bindEnv(v *viper.Viper) error {
	// The secrets keep the names the deployment has always used.
	explicit := map[string]string{
		"gemini_api_key": "GEMINI_API_KEY",
		"response_email": "RESPONSE_EMAIL",
	}
	for key, env := range explicit {
		if err := v.BindEnv(key, env, envPrefix+"_"+strings.ToUpper(key)); err != nil {
			return fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(DefaultConfigDir())
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// loadEnvFile loads a dotenv file without overriding variables that are
// already set in the environment.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading env file %s: %w", path, err)
}

// DefaultConfigDir returns the directory searched for config.yaml.
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "inboxsummary")
	}
	return filepath.Join(dir, "inboxsummary")
}

// Validate checks the settings needed to run a scan.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if strings.TrimSpace(c.ResponseEmail) == "" {
		errs = append(errs, ErrMissingResponseEmail)
	} else if _, err := gomail.ParseAddress(c.ResponseEmail); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidResponseEmail, c.ResponseEmail))
	}

	switch c.Trigger {
	case TriggerLabel:
		if strings.TrimSpace(c.Label) == "" {
			errs = append(errs, ErrMissingLabel)
		}
	case TriggerStar:
	default:
		errs = append(errs, fmt.Errorf("%w, got %q", ErrInvalidTrigger, c.Trigger))
	}

	if c.PollInterval <= 0 {
		errs = append(errs, ErrInvalidPollInterval)
	}

	return errors.Join(errs...)
}

// LogValue keeps the API key out of logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("gemini_api_key", logging.SanitizeToken(c.GeminiAPIKey)),
		logging.UserHash(c.ResponseEmail),
		slog.String("trigger", c.Trigger),
		slog.String("label", c.Label),
		slog.String("model", c.Model),
		logging.Account(c.Account),
		slog.Bool("mark_read", c.MarkRead),
		slog.Bool("attach_pdf", c.AttachPDF),
		slog.Bool("dry_run", c.DryRun),
		slog.Duration("poll_interval", c.PollInterval),
	)
}
