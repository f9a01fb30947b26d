package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/page-comments-api/internal/database"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "migrations directory (default MIGRATIONS_PATH)")

	run := func(cmd *cobra.Command, fn func(db *database.DB, path string) error) error {
		db, cfg, _, err := opts.connect(cmd)
		if err != nil {
			return err
		}
		defer db.Close()
		dir := path
		if dir == "" {
			dir = cfg.Database.MigrationsPath
		}
		return fn(db, dir)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, func(db *database.DB, path string) error {
					return db.RunMigrations(path)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, func(db *database.DB, path string) error {
					return db.MigrateDown(path)
				})
			},
		},
		&cobra.Command{
			Use:   "to <version>",
			Short: "Migrate to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version: %s", args[0])
				}
				return run(cmd, func(db *database.DB, path string) error {
					return db.MigrateToVersion(path, uint(version))
				})
			},
		},
	)

	return cmd
}
