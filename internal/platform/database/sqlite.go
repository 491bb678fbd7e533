// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	// Registers the "sqlite3" database/sql driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/taibuivan/librarium/internal/platform/config"
)

// SQLiteDSN builds the connection string for a library file.
//
// _txlock=immediate makes every transaction BEGIN IMMEDIATE, which takes the
// write lock up front. Read-then-write sequences such as copy numbering can
// then never interleave.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1&_journal_mode=WAL&_txlock=immediate", path)
}

// OpenSQLite opens (creating if needed) the SQLite library file at path.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	sqlDB, err := sqlx.Open("sqlite3", SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	// One writer connection; readers queue behind it instead of hitting SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{
		DB:      sqlDB,
		driver:  config.DriverSQLite,
		dialect: goqu.Dialect("sqlite3"),
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("sqlite store opened", slog.String("path", path))
	return db, nil
}

// Snapshot writes a consistent copy of the SQLite store to dest.
func (db *DB) Snapshot(ctx context.Context, dest string) error {
	if !db.IsSQLite() {
		return fmt.Errorf("database: snapshots require the sqlite driver")
	}
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("sqlite: snapshot to %s: %w", dest, err)
	}
	return nil
}
