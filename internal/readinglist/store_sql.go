// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package readinglist

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/internal/platform/apperr"
	"github.com/taibuivan/librarium/internal/platform/database"
	"github.com/taibuivan/librarium/internal/platform/database/schema"
	"github.com/taibuivan/librarium/internal/platform/dberr"
	"github.com/taibuivan/librarium/pkg/dateonly"
)

// orderLockKey serializes appends computing the next order.
const orderLockKey = "librarium:reading-list"

// SQLRepository implements [Repository] on either supported driver.
type SQLRepository struct {
	db *database.DB
}

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func column(name string) exp.IdentifierExpression {
	return goqu.I(schema.ReadingList.Table + "." + name)
}

func (repository *SQLRepository) Add(ctx context.Context, item *Item) error {
	return repository.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := repository.db.LockKey(ctx, tx, orderLockKey); err != nil {
			return err
		}

		// 1. The book must be present
		var deleted bool
		err := database.Get(ctx, tx, &deleted, repository.db.From(schema.Books.Table).
			Select(schema.Books.Deleted).
			Where(goqu.C(schema.Books.ID).Eq(item.BookID)))
		if err != nil {
			return dberr.WrapNotFound(err, "Book", "load book for reading list")
		}
		if deleted {
			return apperr.BookUnavailable(item.BookID)
		}

		// 2. Append after the highest order on the whole list
		var highest int
		if err := database.Get(ctx, tx, &highest, repository.db.From(schema.ReadingList.Table).
			Select(goqu.COALESCE(goqu.MAX(schema.ReadingList.SortOrder), 0))); err != nil {
			return dberr.Wrap(err, "compute next reading order")
		}
		item.Order = highest + 1

		id, err := repository.db.InsertID(ctx, tx, repository.db.InsertInto(schema.ReadingList.Table).Rows(goqu.Record{
			schema.ReadingList.BookID:    item.BookID,
			schema.ReadingList.SortOrder: item.Order,
			schema.ReadingList.AddedDate: item.AddedDate,
			schema.ReadingList.Notes:     item.Notes,
			schema.ReadingList.Completed: false,
		}))
		if err != nil {
			return dberr.Wrap(err, "insert reading list item")
		}
		item.ID = id
		return nil
	})
}

func (repository *SQLRepository) Get(ctx context.Context, id int64) (*Item, error) {
	item := &Item{}
	err := database.Get(ctx, repository.db, item, repository.db.From(schema.ReadingList.Table).
		Select(schema.ReadingList.Columns()...).
		Where(goqu.C(schema.ReadingList.ID).Eq(id)))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "Reading list item", "get reading list item")
	}
	return item, nil
}

func (repository *SQLRepository) Reorder(ctx context.Context, updates []OrderUpdate) (int, error) {
	changed := 0

	err := repository.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, update := range updates {
			affected, err := database.Exec(ctx, tx, repository.db.Update(schema.ReadingList.Table).
				Set(goqu.Record{schema.ReadingList.SortOrder: update.Order}).
				Where(goqu.C(schema.ReadingList.ID).Eq(update.ID)))
			if err != nil {
				return dberr.Wrap(err, "reorder reading list")
			}
			changed += int(affected)
		}
		return nil
	})

	return changed, err
}

// update writes record to one item and reports NOT_FOUND when it does not exist.
func (repository *SQLRepository) update(ctx context.Context, id int64, record goqu.Record, action string) error {
	affected, err := database.Exec(ctx, repository.db, repository.db.Update(schema.ReadingList.Table).
		Set(record).
		Where(goqu.C(schema.ReadingList.ID).Eq(id)))
	if err != nil {
		return dberr.Wrap(err, action)
	}
	if affected == 0 {
		return apperr.NotFound("Reading list item")
	}
	return nil
}

func (repository *SQLRepository) SetCompletion(ctx context.Context, id int64, completed bool, day *time.Time) error {
	return repository.update(ctx, id, goqu.Record{
		schema.ReadingList.Completed:     completed,
		schema.ReadingList.CompletedDate: day,
	}, "update reading completion")
}

func (repository *SQLRepository) SetAddedDate(ctx context.Context, id int64, day time.Time) error {
	return repository.update(ctx, id, goqu.Record{schema.ReadingList.AddedDate: day}, "update added date")
}

func (repository *SQLRepository) Delete(ctx context.Context, id int64) error {
	affected, err := database.Exec(ctx, repository.db, repository.db.DeleteFrom(schema.ReadingList.Table).
		Where(goqu.C(schema.ReadingList.ID).Eq(id)))
	if err != nil {
		return dberr.Wrap(err, "remove reading list item")
	}
	if affected == 0 {
		return apperr.NotFound("Reading list item")
	}
	return nil
}

func (repository *SQLRepository) List(ctx context.Context, year *int) ([]*Entry, error) {
	columns := make([]any, 0, len(schema.ReadingList.Columns())+4)
	for _, name := range schema.ReadingList.Columns() {
		columns = append(columns, column(name.(string)))
	}
	columns = append(columns,
		goqu.I(schema.Books.Table+"."+schema.Books.Title).As("book_title"),
		goqu.I(schema.Books.Table+"."+schema.Books.Author).As("book_author"),
		goqu.I(schema.Books.Table+"."+schema.Books.CopyNumber).As("copy_number"),
		goqu.I(schema.Books.Table+"."+schema.Books.Deleted).As("book_deleted"),
	)

	query := repository.db.From(schema.ReadingList.Table).
		Join(goqu.T(schema.Books.Table), goqu.On(
			goqu.I(schema.Books.Table+"."+schema.Books.ID).Eq(column(schema.ReadingList.BookID)),
		)).
		Select(columns...)

	if year != nil {
		start, end := dateonly.YearRange(*year)
		query = query.
			Where(column(schema.ReadingList.AddedDate).Gte(start), column(schema.ReadingList.AddedDate).Lt(end)).
			Order(column(schema.ReadingList.SortOrder).Asc(), column(schema.ReadingList.ID).Asc())
	} else {
		query = query.
			Order(column(schema.ReadingList.AddedDate).Desc(), column(schema.ReadingList.SortOrder).Asc(), column(schema.ReadingList.ID).Asc())
	}

	entries := []*Entry{}
	if err := database.Select(ctx, repository.db, &entries, query); err != nil {
		return nil, dberr.Wrap(err, "list reading list")
	}
	return entries, nil
}

func (repository *SQLRepository) AddedDates(ctx context.Context) ([]time.Time, error) {
	dates := []time.Time{}
	err := database.Select(ctx, repository.db, &dates, repository.db.From(schema.ReadingList.Table).
		Select(schema.ReadingList.AddedDate).Distinct())
	if err != nil {
		return nil, dberr.Wrap(err, "list reading list dates")
	}
	return dates, nil
}

func (repository *SQLRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := database.Get(ctx, repository.db, &total, repository.db.From(schema.ReadingList.Table).
		Select(goqu.COUNT(goqu.Star())))
	if err != nil {
		return 0, dberr.Wrap(err, "count reading list")
	}
	return total, nil
}

func (repository *SQLRepository) AvailableBooks(ctx context.Context) ([]*catalog.Book, error) {
	listed := repository.db.From(schema.ReadingList.Table).Select(schema.ReadingList.BookID)

	books := []*catalog.Book{}
	err := database.Select(ctx, repository.db, &books, repository.db.From(schema.Books.Table).
		Select(schema.Books.Columns()...).
		Where(
			goqu.C(schema.Books.Deleted).IsFalse(),
			goqu.C(schema.Books.ID).NotIn(listed),
		).
		Order(goqu.C(schema.Books.Title).Asc(), goqu.C(schema.Books.ID).Asc()))
	if err != nil {
		return nil, dberr.Wrap(err, "list books available for reading list")
	}
	return books, nil
}
