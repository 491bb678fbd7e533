// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// Both store drivers are classified here: PostgreSQL errors arrive as
// [pgconn.PgError] through the pgx stdlib adapter, SQLite errors as [sqlite3.Error].
package dberr

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/taibuivan/librarium/internal/platform/apperr"
)

// PostgreSQL SQLSTATE codes.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Errors that are already classified pass through untouched
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if IsNoRows(err) {
		return ErrNotFound
	}

	// 2. Constraint violations that reflect bad input rather than a broken store
	switch {
	case IsForeignKeyViolation(err):
		return apperr.NotFound("Referenced record")
	case isCheckViolation(err):
		return apperr.ValidationError("The record violates a store constraint")
	case isUniqueViolation(err):
		return apperr.Conflict("The record already exists")
	}

	// 3. Everything else is a store failure
	return apperr.Store(action, err)
}

// WrapNotFound behaves like [Wrap] but names the missing resource.
func WrapNotFound(err error, resource, action string) error {
	if IsNoRows(err) {
		return apperr.NotFound(resource)
	}
	return Wrap(err, action)
}

// IsNoRows reports whether err signals an empty single-row result.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

// IsForeignKeyViolation reports whether err is a foreign key failure on either driver.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCheckViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintCheck
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
