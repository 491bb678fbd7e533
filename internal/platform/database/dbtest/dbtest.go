// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dbtest opens a migrated, throwaway SQLite library for tests.
package dbtest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librarium/internal/platform/config"
	"github.com/taibuivan/librarium/internal/platform/database"
	"github.com/taibuivan/librarium/internal/platform/migration"
)

// Logger discards output so test runs stay quiet.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Open returns a store backed by a fresh file under t.TempDir.
func Open(t testing.TB) *database.DB {
	t.Helper()
	db, _ := OpenAt(t)
	return db
}

// OpenAt is like Open but also returns the file path, for snapshot tests.
func OpenAt(t testing.TB) (*database.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "library.db")
	require.NoError(t, migration.RunUp(config.DriverSQLite, path, Logger()))

	db, err := database.OpenSQLite(context.Background(), path, Logger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, path
}
