// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librarium/internal/platform/database"
	"github.com/taibuivan/librarium/internal/platform/database/dbtest"
	"github.com/taibuivan/librarium/internal/platform/database/schema"
)

func insertBook(t *testing.T, db *database.DB, q sqlx.ExtContext, title string) int64 {
	t.Helper()
	id, err := db.InsertID(context.Background(), q, db.InsertInto(schema.Books.Table).Rows(goqu.Record{
		schema.Books.Title:     title,
		schema.Books.Author:    "Anon",
		schema.Books.CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, err)
	return id
}

func countBooks(t *testing.T, db *database.DB) int {
	t.Helper()
	var n int
	require.NoError(t, database.Get(context.Background(), db, &n,
		db.From(schema.Books.Table).Select(goqu.COUNT(goqu.Star()))))
	return n
}

func TestInsertID_ReturnsSequentialIDs(t *testing.T) {
	db := dbtest.Open(t)

	first := insertBook(t, db, db, "One")
	second := insertBook(t, db, db, "Two")

	assert.Equal(t, first+1, second)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := dbtest.Open(t)
	boom := errors.New("boom")

	err := db.WithTx(context.Background(), func(tx *sqlx.Tx) error {
		insertBook(t, db, tx, "Never")
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countBooks(t, db))
}

func TestWithTx_Commits(t *testing.T) {
	db := dbtest.Open(t)

	err := db.WithTx(context.Background(), func(tx *sqlx.Tx) error {
		insertBook(t, db, tx, "Kept")
		return db.LockKey(context.Background(), tx, "isbn:123")
	})

	require.NoError(t, err)
	assert.Equal(t, 1, countBooks(t, db))
}

func TestSnapshot(t *testing.T) {
	db := dbtest.Open(t)
	insertBook(t, db, db, "Saved")

	dest := filepath.Join(t.TempDir(), "copy.db")
	require.NoError(t, db.Snapshot(context.Background(), dest))

	copyDB, err := database.OpenSQLite(context.Background(), dest, dbtest.Logger())
	require.NoError(t, err)
	defer copyDB.Close()

	assert.Equal(t, 1, countBooks(t, copyDB))
}
