package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI.
func SetVersion(v string) {
	version = v
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "inboxsummary",
		Short: "Mails AI summaries of labeled or starred Gmail messages",
		Long: `inboxsummary looks for Gmail threads carrying a label (or starred
messages), asks Gemini for the key points of each message and any attached
PDF, and mails the summary to you.

It can run as:
  - A one-shot CLI tool (default)
  - A long-running watcher with Prometheus metrics and health probes`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "inboxsummary version %s\n" .Version}}`)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file (default: searches the user config dir and the working directory)")
	pf.String("env-file", "", "Path to a .env file (default: ./.env if present)")
	pf.String("account", "default", "Google account name to use. Can also use INBOXSUMMARY_ACCOUNT env var.")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.Bool("dry-run", false, "Summarise without sending mail or clearing the trigger")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newFormatCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute is the main entry point for the CLI application
func Execute() {
	// If no subcommand is provided, run a single scan
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "run")
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
