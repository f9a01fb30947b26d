// Package cli defines the commentctl command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/page-comments-api/internal/config"
	"github.com/page-comments-api/internal/database"
	"github.com/page-comments-api/internal/repository"
	"github.com/page-comments-api/internal/service"
	"github.com/page-comments-api/pkg/logger"
)

// Env is what the data commands operate on
type Env struct {
	Services *service.Services
	Close    func() error
}

// Opener connects a command to the store
type Opener func(cmd *cobra.Command) (*Env, error)

type rootOptions struct {
	format   string
	logLevel string
	open     Opener
}

// NewRootCmd creates the root command backed by the configured database.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(open Opener) *cobra.Command {
	opts := &rootOptions{}
	if open == nil {
		open = opts.openDatabase
	}
	opts.open = open

	root := &cobra.Command{
		Use:           "commentctl",
		Short:         "Operate the page comments store",
		Long:          "Export, import and moderate page comment threads directly against the database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.format, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		newExportCmd(opts),
		newImportCmd(opts),
		newControlCmd(opts),
		newMigrateCmd(opts),
	)

	return root
}

func (o *rootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	return logger.NewWithOptions(logger.Options{Level: o.logLevel}).Output(cmd.ErrOrStderr())
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) connect(cmd *cobra.Command) (*database.DB, *config.Config, zerolog.Logger, error) {
	log := o.logger(cmd)
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, log, err
	}
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, nil, log, err
	}
	return db, cfg, log, nil
}

func (o *rootOptions) openDatabase(cmd *cobra.Command) (*Env, error) {
	db, cfg, log, err := o.connect(cmd)
	if err != nil {
		return nil, err
	}
	services := service.NewServices(repository.New(db), service.Dependencies{}, cfg, log)
	return &Env{Services: services, Close: db.Close}, nil
}

// withEnv opens the store, runs fn and closes the store again
func (o *rootOptions) withEnv(cmd *cobra.Command, fn func(env *Env) error) error {
	env, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if env.Close == nil {
			return
		}
		if err := env.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: closing database: %v\n", err)
		}
	}()
	return fn(env)
}

func (o *rootOptions) isJSON() bool {
	return o.format == "json"
}

// printJSON marshals v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
