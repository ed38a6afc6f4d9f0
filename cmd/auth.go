package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teemow/inboxsummary/internal/google"
)

func newAuthCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to a Google account",
		Long: `Print the Google consent URL for the configured OAuth client, read the
authorization code from stdin and store the resulting token for --account.

The OAuth client is read from credentials_file (a "Desktop app" client JSON
downloaded from the Google Cloud console).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if _, err := setupLogger(cmd, cfg); err != nil {
				return err
			}

			store := google.NewFileTokenStore()
			out := cmd.OutOrStdout()
			if store.Has(cfg.Account) && !force {
				_, err := fmt.Fprintf(out, "Account %s is already authorized (%s). Use --force to replace the token.\n",
					cfg.Account, store.Path(cfg.Account))
				return err
			}

			conf, err := google.LoadOAuthConfig(cfg.CredentialsFile)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Open this URL in your browser and grant access:\n\n  %s\n\n",
				google.AuthCodeURL(conf, uuid.NewString()))
			fmt.Fprint(out, "Authorization code: ")

			code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			code = strings.TrimSpace(code)
			if code == "" {
				if err != nil {
					return fmt.Errorf("failed to read authorization code: %w", err)
				}
				return fmt.Errorf("no authorization code entered")
			}

			if err := google.ExchangeAndSave(cmd.Context(), conf, store, cfg.Account, code); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "Token for account %s saved to %s\n", cfg.Account, store.Path(cfg.Account))
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing token")
	return cmd
}
