package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teemow/inboxsummary/internal/config"
	"github.com/teemow/inboxsummary/internal/gemini"
	"github.com/teemow/inboxsummary/internal/gmail"
	"github.com/teemow/inboxsummary/internal/google"
	"github.com/teemow/inboxsummary/internal/instrumentation"
	"github.com/teemow/inboxsummary/internal/logging"
	"github.com/teemow/inboxsummary/internal/pipeline"
)

// flagKeys maps configuration keys to the flags that may override them.
var flagKeys = map[string]string{
	"account":       "account",
	"log_level":     "log-level",
	"log_format":    "log-format",
	"dry_run":       "dry-run",
	"trigger":       "trigger",
	"label":         "label",
	"mark_read":     "mark-read",
	"attach_pdf":    "attach-pdf",
	"poll_interval": "interval",
	"metrics_addr":  "metrics-addr",
}

// addScanFlags registers the flags shared by run and watch.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().String("trigger", config.TriggerLabel, "Trigger mode: label or star")
	cmd.Flags().String("label", config.DefaultLabel, "Label that marks threads to summarise (label mode)")
	cmd.Flags().Bool("mark-read", false, "Mark processed messages as read")
	cmd.Flags().Bool("attach-pdf", true, "Attach the summarised PDF to the summary email")
}

// loadConfig resolves the configuration for cmd. Only flags the user set
// override the other sources.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := make(map[string]*pflag.Flag, len(flagKeys))
	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			flags[key] = f
		}
	}

	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      flags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// setupLogger builds the process logger and installs it as the default.
func setupLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// app holds the wired components of a scanning command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider *instrumentation.Provider
	scanner  *pipeline.Scanner
}

// newApp loads the configuration and connects to Gmail and Gemini.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := setupLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("configuration loaded", slog.Any("config", cfg))

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	instrConfig.Account = cfg.Account
	instrConfig.Trigger = cfg.Trigger
	if cfg.Trigger == config.TriggerLabel {
		instrConfig.Label = cfg.Label
	}
	if err := instrConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instrumentation configuration: %w", err)
	}
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, provider: provider}
	if err := a.connect(ctx, instrConfig.AuditLogging); err != nil {
		a.shutdown()
		return nil, err
	}
	return a, nil
}

func (a *app) connect(ctx context.Context, audit instrumentation.AuditLoggingConfig) error {
	conf, err := google.LoadOAuthConfig(a.cfg.CredentialsFile)
	if err != nil {
		return err
	}
	httpClient, err := google.NewHTTPClient(ctx, conf, google.NewFileTokenStore(), a.cfg.Account)
	if err != nil {
		return fmt.Errorf("failed to authorize account %s (run 'inboxsummary auth'): %w", a.cfg.Account, err)
	}

	mailbox, err := gmail.NewClient(ctx, httpClient, a.cfg.Account,
		gmail.WithMetrics(a.provider.Metrics()),
		gmail.WithLogger(a.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create Gmail client for account %s: %w", a.cfg.Account, err)
	}

	model := gemini.NewClient(a.cfg.GeminiAPIKey,
		gemini.WithBaseURL(a.cfg.GeminiBaseURL),
		gemini.WithModel(a.cfg.Model),
		gemini.WithMetrics(a.provider.Metrics()),
		gemini.WithLogger(a.logger),
	)

	a.scanner = pipeline.NewScanner(mailbox, model, mailbox, pipeline.OptionsFromConfig(a.cfg),
		pipeline.WithLogger(logging.WithAccount(a.logger, a.cfg.Account)),
		pipeline.WithMetrics(a.provider.Metrics()),
		pipeline.WithAuditLogger(instrumentation.NewAuditLogger(a.logger, audit)),
	)
	return nil
}

// shutdown flushes telemetry. It uses its own deadline since the command
// context may already be cancelled.
func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.provider.Shutdown(ctx); err != nil {
		a.logger.Warn("instrumentation shutdown failed", logging.Err(err))
	}
}
