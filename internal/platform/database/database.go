// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package database provides the relational store shared by every repository.
//
// # Architecture
//
// Librarium runs on either a local SQLite file or PostgreSQL. Both are exposed
// through one [DB] type: a [sqlx.DB] for scanning plus a goqu dialect for
// building statements, so repositories are written once for both drivers.
//
// Writes go through [DB.WithTx]. Repositories that must serialize on a key,
// such as copy numbering per ISBN, call [DB.LockKey] inside the transaction.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/doug-martin/goqu/v9"
	// Dialects register themselves with goqu.
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/taibuivan/librarium/internal/platform/config"
	"github.com/taibuivan/librarium/internal/platform/dberr"
)

// Statement is any goqu dataset that renders to SQL.
type Statement interface {
	ToSQL() (string, []interface{}, error)
}

// DB is a store handle bound to one driver and its SQL dialect.
type DB struct {
	*sqlx.DB

	driver  string
	dialect goqu.DialectWrapper
	pool    *pgxpool.Pool
}

// Open connects to the store selected by driver.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*DB, error) {
	switch driver {
	case config.DriverSQLite:
		return OpenSQLite(ctx, dsn, logger)
	case config.DriverPostgres:
		return OpenPostgres(ctx, dsn, logger)
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}
}

// Driver returns the configured driver name.
func (db *DB) Driver() string { return db.driver }

// IsSQLite reports whether the store is a SQLite file.
func (db *DB) IsSQLite() bool { return db.driver == config.DriverSQLite }

// From starts a prepared SELECT on table.
func (db *DB) From(table ...interface{}) *goqu.SelectDataset {
	return db.dialect.From(table...).Prepared(true)
}

// InsertInto starts a prepared INSERT on table.
func (db *DB) InsertInto(table string) *goqu.InsertDataset {
	return db.dialect.Insert(table).Prepared(true)
}

// Update starts a prepared UPDATE on table.
func (db *DB) Update(table string) *goqu.UpdateDataset {
	return db.dialect.Update(table).Prepared(true)
}

// DeleteFrom starts a prepared DELETE on table.
func (db *DB) DeleteFrom(table string) *goqu.DeleteDataset {
	return db.dialect.Delete(table).Prepared(true)
}

// Close releases the connection pool.
func (db *DB) Close() error {
	err := db.DB.Close()
	if db.pool != nil {
		db.pool.Close()
	}
	return err
}

// Ping verifies that the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database: ping failed: %w", err)
	}
	return nil
}

// # Statement helpers

// Get renders stmt and scans exactly one row into dest.
func Get(ctx context.Context, q sqlx.QueryerContext, dest interface{}, stmt Statement) error {
	query, args, err := stmt.ToSQL()
	if err != nil {
		return fmt.Errorf("database: build query: %w", err)
	}
	return sqlx.GetContext(ctx, q, dest, query, args...)
}

// Select renders stmt and scans every row into dest, a pointer to a slice.
func Select(ctx context.Context, q sqlx.QueryerContext, dest interface{}, stmt Statement) error {
	query, args, err := stmt.ToSQL()
	if err != nil {
		return fmt.Errorf("database: build query: %w", err)
	}
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

// Exec renders stmt, runs it and returns the number of affected rows.
func Exec(ctx context.Context, q sqlx.ExecerContext, stmt Statement) (int64, error) {
	query, args, err := stmt.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("database: build statement: %w", err)
	}
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// InsertID runs an INSERT and returns the generated id.
//
// PostgreSQL has no LastInsertId through the pgx stdlib adapter, so it uses
// RETURNING. The goqu SQLite dialect rejects RETURNING, so SQLite uses LastInsertId.
func (db *DB) InsertID(ctx context.Context, q sqlx.ExtContext, stmt *goqu.InsertDataset) (int64, error) {
	if !db.IsSQLite() {
		var id int64
		if err := Get(ctx, q, &id, stmt.Returning("id")); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args, err := stmt.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("database: build insert: %w", err)
	}
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// # Transactions

// WithTx runs fn inside a transaction, committing when fn returns nil.
//
// On SQLite the transaction starts with BEGIN IMMEDIATE (see the DSN), so it
// holds the write lock for its whole duration.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	transaction, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return dberr.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := transaction.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			slog.Default().Warn("transaction_rollback_failed", slog.Any("error", rollbackErr))
		}
	}()

	if err := fn(transaction); err != nil {
		return err
	}

	if err := transaction.Commit(); err != nil {
		return dberr.Wrap(err, "commit transaction")
	}
	return nil
}

// LockKey serializes transactions on key until the current transaction ends.
// PostgreSQL takes a transaction-scoped advisory lock; SQLite is already
// serialized by its immediate transaction.
func (db *DB) LockKey(ctx context.Context, tx *sqlx.Tx, key string) error {
	if db.IsSQLite() {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return dberr.Wrap(err, "acquire advisory lock")
	}
	return nil
}
