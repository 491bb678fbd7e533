// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/librarium/internal/platform/config"
	"github.com/taibuivan/librarium/internal/platform/constants"
	"github.com/taibuivan/librarium/internal/platform/database"
	"github.com/taibuivan/librarium/internal/platform/migration"
)

// startupTimeout bounds connecting to the store so misconfiguration fails fast.
const startupTimeout = 30 * time.Second

// environment is loaded once before any subcommand runs.
type environment struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	env := &environment{}

	root := &cobra.Command{
		Use:           "librarian",
		Short:         "Personal library catalog and lending tracker",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			env.cfg = cfg
			env.logger = newLogger(cmd.ErrOrStderr(), cfg.Debug)
			slog.SetDefault(env.logger)

			env.logger.Debug("configuration_loaded",
				slog.String("environment", cfg.Environment),
				slog.String("driver", cfg.DBDriver),
			)
			return nil
		},
	}

	root.AddCommand(
		newServeCommand(env),
		newMigrateCommand(env),
		newRenumberCommand(env),
		newBackupCommand(env),
		newIssueTokenCommand(env),
	)

	return root
}

// newLogger builds the JSON logger every entry point uses.
func newLogger(output io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// openStore connects to the configured store and applies pending migrations.
func (env *environment) openStore(ctx context.Context) (*database.DB, error) {
	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	db, err := database.Open(startupCtx, env.cfg.DBDriver, env.cfg.DatabaseURL, env.logger)
	if err != nil {
		return nil, err
	}

	if err := migration.RunUp(env.cfg.DBDriver, env.cfg.DatabaseURL, env.logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
