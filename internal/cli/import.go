package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/page-comments-api/internal/service"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var skipExisting, attachUsers bool
	var performer int64

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import comment threads from an export document",
		Long: "Import an export document. Comments are attached to pages with the same title, " +
			"reply links are remapped to the new ids and already present comments can be skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer f.Close()

			return opts.withEnv(cmd, func(env *Env) error {
				out := cmd.OutOrStdout()
				sink := service.NoticeFunc(func(page, message string) {
					if opts.isJSON() {
						return
					}
					if page != "" {
						fmt.Fprintf(out, "%s: %s\n", page, message)
						return
					}
					fmt.Fprintln(out, message)
				})

				summary, err := env.Services.Import.ImportDocument(cmd.Context(), f, service.ImportOptions{
					SkipExisting: skipExisting,
					AttachUsers:  attachUsers,
					PerformerID:  performer,
				}, sink)
				if opts.isJSON() && summary != nil {
					if perr := printJSON(out, summary); perr != nil {
						return perr
					}
				}
				if err != nil {
					return fmt.Errorf("import failed: %w", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipExisting, "skip-existing", true, "skip comments whose timestamp already exists on the page")
	cmd.Flags().BoolVar(&attachUsers, "attach-users", false, "attribute comments to local accounts with the same name")
	cmd.Flags().Int64Var(&performer, "performer", 0, "account id recorded in the audit log")

	return cmd
}
