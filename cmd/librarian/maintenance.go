// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/internal/platform/constants"
	"github.com/taibuivan/librarium/internal/platform/sec"
)

func newMigrateCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := env.openStore(cmd.Context())
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}

func newRenumberCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "renumber-copies",
		Short: "Renumber the copies of every ISBN as 1..n",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := env.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			report, err := catalog.NewService(catalog.NewSQLRepository(db), env.logger).RenumberCopies(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renumbered %d books across %d ISBNs\n", report.Updated, report.Groups)
			return nil
		},
	}
}

func newBackupCommand(env *environment) *cobra.Command {
	var notes string

	command := &cobra.Command{
		Use:   "backup",
		Short: "Write a snapshot of the SQLite library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !env.cfg.UsesSQLite() {
				return errors.New("backups require the sqlite driver")
			}

			db, err := env.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			service, err := env.newBackupService(cmd.Context(), db)
			if err != nil {
				return err
			}
			created, err := service.Create(cmd.Context(), notes, false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.Filename)
			return nil
		},
	}

	command.Flags().StringVar(&notes, "notes", "Manual backup", "note stored with the backup")
	return command
}

func newIssueTokenCommand(env *environment) *cobra.Command {
	var (
		subject    string
		timeToLive time.Duration
	)

	command := &cobra.Command{
		Use:   "issue-token",
		Short: "Mint an admin token signed with the configured private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokens, err := sec.NewTokenService(env.cfg.JWTPrivKeyPath, "", constants.AuthIssuer)
			if err != nil {
				return err
			}
			token, err := tokens.GenerateAdminToken(subject, constants.AdminRole, timeToLive)
			if err != nil {
				return err
			}
			env.logger.Info("admin_token_issued", slog.String("subject", subject), slog.Duration("ttl", timeToLive))
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	command.Flags().StringVar(&subject, "subject", "owner", "subject claim of the token")
	command.Flags().DurationVar(&timeToLive, "ttl", constants.AdminTokenTTL, "token lifetime")
	return command
}
