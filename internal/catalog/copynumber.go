// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/taibuivan/librarium/internal/platform/database"
	"github.com/taibuivan/librarium/internal/platform/database/schema"
	"github.com/taibuivan/librarium/internal/platform/dberr"
)

// lockKey namespaces advisory locks taken for an ISBN group.
func lockKey(isbn string) string {
	return "librarium:isbn:" + isbn
}

// LockISBN serializes copy number assignment for isbn until tx ends.
// Callers that read the group maximum and then write must hold it.
func LockISBN(ctx context.Context, db *database.DB, tx *sqlx.Tx, isbn string) error {
	if isbn == "" {
		return nil
	}
	return db.LockKey(ctx, tx, lockKey(isbn))
}

// NextCopyNumberIn computes the next copy number for isbn as seen by q.
//
// An empty ISBN always yields 1. Otherwise it is one more than the largest copy
// number among live books with exactly that ISBN, or 1 when there are none.
// Inside a transaction, call [LockISBN] first.
func NextCopyNumberIn(ctx context.Context, db *database.DB, q sqlx.QueryerContext, isbn string) (int, error) {
	if isbn == "" {
		return 1, nil
	}

	var highest int
	err := database.Get(ctx, q, &highest, db.From(schema.Books.Table).
		Select(goqu.COALESCE(goqu.MAX(schema.Books.CopyNumber), 0)).
		Where(
			goqu.C(schema.Books.ISBN).Eq(isbn),
			goqu.C(schema.Books.Deleted).IsFalse(),
		))
	if err != nil {
		return 0, dberr.Wrap(err, "compute next copy number")
	}

	return highest + 1, nil
}

// CopyNumberTaken reports whether a live book other than excludeID already
// holds copyNumber within isbn.
func CopyNumberTaken(ctx context.Context, db *database.DB, q sqlx.QueryerContext, isbn string, copyNumber int, excludeID int64) (bool, error) {
	if isbn == "" {
		return false, nil
	}

	var holders int
	err := database.Get(ctx, q, &holders, db.From(schema.Books.Table).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.C(schema.Books.ISBN).Eq(isbn),
			goqu.C(schema.Books.CopyNumber).Eq(copyNumber),
			goqu.C(schema.Books.Deleted).IsFalse(),
			goqu.C(schema.Books.ID).Neq(excludeID),
		))
	if err != nil {
		return false, dberr.Wrap(err, "check copy number")
	}
	return holders > 0, nil
}

// renumberGroup assigns 1..N to ids in the given order and returns the
// positions whose stored number differs.
func renumberGroup(current []int) []int {
	var changed []int
	for position, copyNumber := range current {
		if copyNumber != position+1 {
			changed = append(changed, position)
		}
	}
	return changed
}
