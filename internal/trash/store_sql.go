// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package trash

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/internal/lending"
	"github.com/taibuivan/librarium/internal/platform/apperr"
	"github.com/taibuivan/librarium/internal/platform/database"
	"github.com/taibuivan/librarium/internal/platform/database/schema"
	"github.com/taibuivan/librarium/internal/platform/dberr"
)

// SQLRepository implements [Repository] on either supported driver.
type SQLRepository struct {
	db *database.DB
}

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (repository *SQLRepository) loadBook(ctx context.Context, tx *sqlx.Tx, id int64) (*catalog.Book, error) {
	book := &catalog.Book{}
	err := database.Get(ctx, tx, book, repository.db.From(schema.Books.Table).
		Select(schema.Books.Columns()...).
		Where(goqu.C(schema.Books.ID).Eq(id)))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "Book", "load book")
	}
	return book, nil
}

func (repository *SQLRepository) TrashBook(ctx context.Context, id int64, at time.Time, batch string) (int, error) {
	var cascaded int64

	err := repository.db.WithTx(ctx, func(tx *sqlx.Tx) error {

		// 1. Hold the book so no lending is created while it is being trashed
		if err := repository.db.LockKey(ctx, tx, lending.BookLockKey(id)); err != nil {
			return err
		}

		book, err := repository.loadBook(ctx, tx, id)
		if err != nil {
			return err
		}
		if book.Deleted {
			return apperr.AlreadyInTrash("Book")
		}

		// 2. Stamp the book
		if _, err := database.Exec(ctx, tx, repository.db.Update(schema.Books.Table).
			Set(goqu.Record{
				schema.Books.Deleted:     true,
				schema.Books.DeletedAt:   at,
				schema.Books.DeleteBatch: batch,
			}).
			Where(goqu.C(schema.Books.ID).Eq(id))); err != nil {
			return dberr.Wrap(err, "trash book")
		}

		// 3. Stamp its present lendings with the same event
		cascaded, err = database.Exec(ctx, tx, repository.db.Update(schema.Lendings.Table).
			Set(goqu.Record{
				schema.Lendings.Deleted:     true,
				schema.Lendings.DeletedAt:   at,
				schema.Lendings.DeleteBatch: batch,
			}).
			Where(
				goqu.C(schema.Lendings.BookID).Eq(id),
				goqu.C(schema.Lendings.Deleted).IsFalse(),
			))
		if err != nil {
			return dberr.Wrap(err, "trash lendings of book")
		}
		return nil
	})

	return int(cascaded), err
}

func (repository *SQLRepository) RestoreBook(ctx context.Context, id int64) (RestoreReport, error) {
	report := RestoreReport{BookID: id}

	err := repository.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := repository.db.LockKey(ctx, tx, lending.BookLockKey(id)); err != nil {
			return err
		}

		book, err := repository.loadBook(ctx, tx, id)
		if err != nil {
			return err
		}
		if !book.Deleted {
			return apperr.NotInTrash("Book")
		}

		// 1. Keep the ISBN group free of duplicates
		isbn := book.ISBNValue()
		if err := catalog.LockISBN(ctx, repository.db, tx, isbn); err != nil {
			return err
		}
		report.CopyNumber = book.CopyNumber

		taken, err := catalog.CopyNumberTaken(ctx, repository.db, tx, isbn, book.CopyNumber, id)
		if err != nil {
			return err
		}
		if taken {
			report.CopyNumber, err = catalog.NextCopyNumberIn(ctx, repository.db, tx, isbn)
			if err != nil {
				return err
			}
			report.Renumbered = true
		}

		// 2. Clear the book flags
		if _, err := database.Exec(ctx, tx, repository.db.Update(schema.Books.Table).
			Set(goqu.Record{
				schema.Books.Deleted:     false,
				schema.Books.DeletedAt:   nil,
				schema.Books.DeleteBatch: nil,
				schema.Books.CopyNumber:  report.CopyNumber,
			}).
			Where(goqu.C(schema.Books.ID).Eq(id))); err != nil {
			return dberr.Wrap(err, "restore book")
		}

		// 3. Bring back the lendings of the same delete event
		restored, err := database.Exec(ctx, tx, repository.db.Update(schema.Lendings.Table).
			Set(goqu.Record{
				schema.Lendings.Deleted:     false,
				schema.Lendings.DeletedAt:   nil,
				schema.Lendings.DeleteBatch: nil,
			}).
			Where(
				goqu.C(schema.Lendings.BookID).Eq(id),
				goqu.C(schema.Lendings.Deleted).IsTrue(),
				sameEvent(book),
			))
		if err != nil {
			return dberr.Wrap(err, "restore lendings of book")
		}
		report.Lendings = int(restored)
		return nil
	})

	return report, err
}

// sameEvent matches the lendings trashed together with book. Rows trashed before
// delete batches existed carry none and fall back to the shared timestamp.
func sameEvent(book *catalog.Book) exp.Expression {
	if book.DeleteBatch != nil && *book.DeleteBatch != "" {
		return goqu.C(schema.Lendings.DeleteBatch).Eq(*book.DeleteBatch)
	}
	if book.DeletedAt == nil {
		return goqu.L("1 = 0")
	}
	return goqu.And(
		goqu.C(schema.Lendings.DeleteBatch).IsNull(),
		goqu.C(schema.Lendings.DeletedAt).Eq(*book.DeletedAt),
	)
}

func (repository *SQLRepository) TrashedBooks(ctx context.Context) ([]*catalog.Book, error) {
	books := []*catalog.Book{}
	err := database.Select(ctx, repository.db, &books, repository.db.From(schema.Books.Table).
		Select(schema.Books.Columns()...).
		Where(goqu.C(schema.Books.Deleted).IsTrue()).
		Order(goqu.C(schema.Books.DeletedAt).Desc(), goqu.C(schema.Books.ID).Desc()))
	if err != nil {
		return nil, dberr.Wrap(err, "list trashed books")
	}
	return books, nil
}

func (repository *SQLRepository) TrashedLendings(ctx context.Context) ([]*lending.View, error) {
	views := []*lending.View{}
	err := database.Select(ctx, repository.db, &views, lending.JoinBook(repository.db.From(schema.Lendings.Table)).
		Select(lending.ViewColumns()...).
		Where(goqu.I(schema.Lendings.Table+"."+schema.Lendings.Deleted).IsTrue()).
		Order(
			goqu.I(schema.Lendings.Table+"."+schema.Lendings.DeletedAt).Desc(),
			goqu.I(schema.Lendings.Table+"."+schema.Lendings.ID).Desc(),
		))
	if err != nil {
		return nil, dberr.Wrap(err, "list trashed lendings")
	}
	return views, nil
}
