// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lending

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/taibuivan/librarium/internal/platform/apperr"
	"github.com/taibuivan/librarium/internal/platform/database"
	"github.com/taibuivan/librarium/internal/platform/database/schema"
	"github.com/taibuivan/librarium/internal/platform/dberr"
	"github.com/taibuivan/librarium/pkg/dateonly"
)

// SQLRepository implements [Repository] on either supported driver.
type SQLRepository struct {
	db *database.DB
}

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// BookLockKey namespaces the advisory lock that serializes writes touching the
// open lending of one book.
func BookLockKey(bookID int64) string {
	return "librarium:book:" + strconv.FormatInt(bookID, 10)
}

func (repository *SQLRepository) Create(ctx context.Context, lending *Lending, guard Guard) error {
	return repository.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		check, err := repository.loadCheck(ctx, tx, lending.BookID, 0)
		if err != nil {
			return err
		}

		if err := guard(check, lending); err != nil {
			return err
		}

		id, err := repository.db.InsertID(ctx, tx, repository.db.InsertInto(schema.Lendings.Table).Rows(goqu.Record{
			schema.Lendings.BookID:       lending.BookID,
			schema.Lendings.BorrowerName: lending.BorrowerName,
			schema.Lendings.LentDate:     lending.LentDate,
			schema.Lendings.DueDate:      lending.DueDate,
			schema.Lendings.ReturnDate:   lending.ReturnDate,
			schema.Lendings.Notes:        lending.Notes,
			schema.Lendings.Deleted:      false,
		}))
		if err != nil {
			return dberr.Wrap(err, "insert lending")
		}
		lending.ID = id
		return nil
	})
}

func (repository *SQLRepository) Get(ctx context.Context, id int64) (*Lending, error) {
	return repository.get(ctx, repository.db, id)
}

func (repository *SQLRepository) get(ctx context.Context, q sqlx.QueryerContext, id int64) (*Lending, error) {
	lending := &Lending{}
	err := database.Get(ctx, q, lending, repository.db.From(schema.Lendings.Table).
		Select(schema.Lendings.Columns()...).
		Where(goqu.C(schema.Lendings.ID).Eq(id)))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "Lending", "get lending")
	}
	return lending, nil
}

func (repository *SQLRepository) SetReturnDate(ctx context.Context, id int64, day time.Time) error {
	affected, err := database.Exec(ctx, repository.db, repository.db.Update(schema.Lendings.Table).
		Set(goqu.Record{schema.Lendings.ReturnDate: day}).
		Where(goqu.C(schema.Lendings.ID).Eq(id)))
	if err != nil {
		return dberr.Wrap(err, "mark lending returned")
	}
	if affected == 0 {
		return apperr.NotFound("Lending")
	}
	return nil
}

func (repository *SQLRepository) Trash(ctx context.Context, id int64, at time.Time, batch string) (bool, error) {
	trashed := false

	err := repository.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		lending, err := repository.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if lending.Deleted {
			return nil
		}

		if _, err := database.Exec(ctx, tx, repository.db.Update(schema.Lendings.Table).
			Set(goqu.Record{
				schema.Lendings.Deleted:     true,
				schema.Lendings.DeletedAt:   at,
				schema.Lendings.DeleteBatch: batch,
			}).
			Where(goqu.C(schema.Lendings.ID).Eq(id))); err != nil {
			return dberr.Wrap(err, "trash lending")
		}
		trashed = true
		return nil
	})

	return trashed, err
}

func (repository *SQLRepository) Restore(ctx context.Context, id int64, guard Guard) error {
	return repository.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		target, err := repository.get(ctx, tx, id)
		if err != nil {
			return err
		}

		check, err := repository.loadCheck(ctx, tx, target.BookID, id)
		if err != nil {
			return err
		}
		check.Target = target

		if err := guard(check, target); err != nil {
			return err
		}

		if _, err := database.Exec(ctx, tx, repository.db.Update(schema.Lendings.Table).
			Set(goqu.Record{
				schema.Lendings.Deleted:     false,
				schema.Lendings.DeletedAt:   nil,
				schema.Lendings.DeleteBatch: nil,
			}).
			Where(goqu.C(schema.Lendings.ID).Eq(id))); err != nil {
			return dberr.Wrap(err, "restore lending")
		}
		return nil
	})
}

// loadCheck locks the book and reads its state and open lending, ignoring excludeID.
func (repository *SQLRepository) loadCheck(ctx context.Context, tx *sqlx.Tx, bookID, excludeID int64) (Check, error) {
	var check Check

	if err := repository.db.LockKey(ctx, tx, BookLockKey(bookID)); err != nil {
		return check, err
	}

	err := database.Get(ctx, tx, &check.Book, repository.db.From(schema.Books.Table).
		Select(schema.Books.ID, schema.Books.Title, schema.Books.CopyNumber, schema.Books.Deleted).
		Where(goqu.C(schema.Books.ID).Eq(bookID)))
	if err != nil {
		return check, dberr.WrapNotFound(err, "Book", "load book for lending")
	}

	check.Active, err = repository.active(ctx, tx, bookID, excludeID)
	return check, err
}

func (repository *SQLRepository) Active(ctx context.Context, bookID int64) (*Lending, error) {
	return repository.active(ctx, repository.db, bookID, 0)
}

// active returns the oldest open lending of a book, or nil.
func (repository *SQLRepository) active(ctx context.Context, q sqlx.QueryerContext, bookID, excludeID int64) (*Lending, error) {
	var lendings []*Lending
	err := database.Select(ctx, q, &lendings, repository.db.From(schema.Lendings.Table).
		Select(schema.Lendings.Columns()...).
		Where(
			goqu.C(schema.Lendings.BookID).Eq(bookID),
			goqu.C(schema.Lendings.ReturnDate).IsNull(),
			goqu.C(schema.Lendings.Deleted).IsFalse(),
			goqu.C(schema.Lendings.ID).Neq(excludeID),
		).
		Order(goqu.C(schema.Lendings.ID).Asc()).
		Limit(1))
	if err != nil {
		return nil, dberr.Wrap(err, "find active lending")
	}
	if len(lendings) == 0 {
		return nil, nil
	}
	return lendings[0], nil
}

// ViewColumns selects a lending with the joined book fields of [View]. Use it
// on a dataset passed through [JoinBook].
func ViewColumns() []any {
	columns := make([]any, 0, len(schema.Lendings.Columns())+4)
	for _, column := range schema.Lendings.Columns() {
		columns = append(columns, goqu.I(schema.Lendings.Table+"."+column.(string)))
	}
	return append(columns,
		goqu.I(schema.Books.Table+"."+schema.Books.Title).As("book_title"),
		goqu.I(schema.Books.Table+"."+schema.Books.Author).As("book_author"),
		goqu.I(schema.Books.Table+"."+schema.Books.CopyNumber).As("copy_number"),
		goqu.I(schema.Books.Table+"."+schema.Books.Deleted).As("book_deleted"),
	)
}

// JoinBook joins a lendings dataset with the books table.
func JoinBook(dataset *goqu.SelectDataset) *goqu.SelectDataset {
	return dataset.Join(goqu.T(schema.Books.Table), goqu.On(
		goqu.I(schema.Books.Table+"."+schema.Books.ID).Eq(goqu.I(schema.Lendings.Table+"."+schema.Lendings.BookID)),
	))
}

func (repository *SQLRepository) joined() *goqu.SelectDataset {
	return JoinBook(repository.db.From(schema.Lendings.Table))
}

func lendingColumn(name string) exp.IdentifierExpression {
	return goqu.I(schema.Lendings.Table + "." + name)
}

func (repository *SQLRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*View, int, error) {
	conditions := []exp.Expression{lendingColumn(schema.Lendings.Deleted).IsFalse()}

	if filter.BookID != nil {
		conditions = append(conditions, lendingColumn(schema.Lendings.BookID).Eq(*filter.BookID))
	}
	if title := strings.ToLower(strings.TrimSpace(filter.Title)); title != "" {
		conditions = append(conditions,
			goqu.Func("LOWER", goqu.I(schema.Books.Table+"."+schema.Books.Title)).Like("%"+title+"%"))
	}
	if borrower := strings.ToLower(strings.TrimSpace(filter.Borrower)); borrower != "" {
		conditions = append(conditions,
			goqu.Func("LOWER", lendingColumn(schema.Lendings.BorrowerName)).Like("%"+borrower+"%"))
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, lendingColumn(schema.Lendings.LentDate).Gte(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, lendingColumn(schema.Lendings.LentDate).Lte(*filter.DateTo))
	}

	switch filter.Status {
	case StatusReturned:
		conditions = append(conditions, lendingColumn(schema.Lendings.ReturnDate).IsNotNull())
	case StatusOut:
		conditions = append(conditions, lendingColumn(schema.Lendings.ReturnDate).IsNull())
	case StatusOverdue:
		today := filter.Today
		if today.IsZero() {
			today = dateonly.Today()
		}
		conditions = append(conditions,
			lendingColumn(schema.Lendings.ReturnDate).IsNull(),
			lendingColumn(schema.Lendings.DueDate).IsNotNull(),
			lendingColumn(schema.Lendings.DueDate).Lt(today),
		)
	}

	var total int
	if err := database.Get(ctx, repository.db, &total, repository.joined().
		Select(goqu.COUNT(goqu.Star())).
		Where(conditions...)); err != nil {
		return nil, 0, dberr.Wrap(err, "count lendings")
	}

	views := []*View{}
	if err := database.Select(ctx, repository.db, &views, repository.joined().
		Select(ViewColumns()...).
		Where(conditions...).
		Order(lendingColumn(schema.Lendings.LentDate).Desc(), lendingColumn(schema.Lendings.ID).Desc()).
		Limit(uint(limit)).
		Offset(uint(offset))); err != nil {
		return nil, 0, dberr.Wrap(err, "list lendings")
	}

	return views, total, nil
}

func (repository *SQLRepository) ListActive(ctx context.Context) ([]*View, error) {
	views := []*View{}
	err := database.Select(ctx, repository.db, &views, repository.joined().
		Select(ViewColumns()...).
		Where(
			lendingColumn(schema.Lendings.ReturnDate).IsNull(),
			lendingColumn(schema.Lendings.Deleted).IsFalse(),
		).
		Order(lendingColumn(schema.Lendings.LentDate).Asc(), lendingColumn(schema.Lendings.ID).Asc()))
	if err != nil {
		return nil, dberr.Wrap(err, "list active lendings")
	}
	return views, nil
}
