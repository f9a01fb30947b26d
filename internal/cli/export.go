package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string
	var includeDeleted bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every comment thread as a JSON export document",
		Long:  "Stream all comment threads, grouped by page, to stdout or a file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(env *Env) error {
				var w io.Writer = cmd.OutOrStdout()
				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("creating output file: %w", err)
					}
					defer f.Close()
					w = f
				}

				stats, err := env.Services.Export.Export(cmd.Context(), w, includeDeleted)
				if err != nil {
					return fmt.Errorf("export failed: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d comments on %d pages\n", stats.Comments, stats.Pages)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", true, "include deleted comments")

	return cmd
}
