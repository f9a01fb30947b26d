package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/page-comments-api/internal/models"
)

func newControlCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "control",
		Short: "Inspect and change per-page comment control",
	}

	cmd.AddCommand(
		newControlGetCmd(opts),
		newControlSetCmd(opts),
		newControlListCmd(opts),
	)
	return cmd
}

func parsePageID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid page ID: %s", arg)
	}
	return id, nil
}

func newControlGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <page-id>",
		Short: "Show the control status of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageID, err := parsePageID(args[0])
			if err != nil {
				return err
			}
			return opts.withEnv(cmd, func(env *Env) error {
				status, err := env.Services.Control.Status(cmd.Context(), pageID)
				if err != nil {
					return err
				}
				if opts.isJSON() {
					return printJSON(cmd.OutOrStdout(), models.ControlOverride{PageID: pageID, Status: status, Key: status.Key()})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Page #%d: %s\n", pageID, status.Key())
				return nil
			})
		},
	}
}

func newControlSetCmd(opts *rootOptions) *cobra.Command {
	var performer int64

	cmd := &cobra.Command{
		Use:   "set <page-id> <enabled|read-only|disabled>",
		Short: "Change the control status of a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageID, err := parsePageID(args[0])
			if err != nil {
				return err
			}
			status, err := models.ControlStatusFromKey(args[1])
			if err != nil {
				return err
			}
			return opts.withEnv(cmd, func(env *Env) error {
				if err := env.Services.Control.SetStatus(cmd.Context(), pageID, status, models.Author{ID: performer}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Page #%d set to %s\n", pageID, status.Key())
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&performer, "performer", 0, "account id recorded in the audit log")
	return cmd
}

func newControlListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pages with a non-default control status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(env *Env) error {
				overrides, err := env.Services.Control.ListOverrides(cmd.Context())
				if err != nil {
					return err
				}
				if opts.isJSON() {
					if overrides == nil {
						overrides = []models.ControlOverride{}
					}
					return printJSON(cmd.OutOrStdout(), overrides)
				}
				if len(overrides) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No control overrides.")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "PAGE\tSTATUS")
				for _, o := range overrides {
					fmt.Fprintf(w, "%d\t%s\n", o.PageID, o.Key)
				}
				return w.Flush()
			})
		},
	}
}
