package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxsummary/internal/formatter"
)

func newFormatCmd() *cobra.Command {
	var listStages bool

	cmd := &cobra.Command{
		Use:   "format [file]",
		Short: "Convert summary markdown to HTML",
		Long: `Read markdown as produced by the summary model from a file or stdin and
print the HTML fragment that would be placed in the summary email.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if listStages {
				for i, name := range formatter.Stages.StageNames() {
					if _, err := fmt.Fprintf(out, "%d. %s\n", i+1, name); err != nil {
						return err
					}
				}
				return nil
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open input: %w", err)
				}
				defer f.Close()
				in = f
			}

			md, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			_, err = fmt.Fprintln(out, formatter.Format(string(md)))
			return err
		},
	}

	cmd.Flags().BoolVar(&listStages, "stages", false, "List the formatter stages in execution order and exit")
	return cmd
}
