// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package stats

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/taibuivan/librarium/internal/platform/database"
	"github.com/taibuivan/librarium/internal/platform/database/schema"
	"github.com/taibuivan/librarium/internal/platform/dberr"
)

type SQLRepository struct {
	db *database.DB
}

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (repository *SQLRepository) liveBooks() *goqu.SelectDataset {
	return repository.db.From(schema.Books.Table).Where(goqu.C(schema.Books.Deleted).IsFalse())
}

func (repository *SQLRepository) BookTotals(ctx context.Context) (BookTotals, error) {
	var totals BookTotals
	err := database.Get(ctx, repository.db, &totals, repository.liveBooks().Select(
		goqu.COUNT(goqu.Star()).As("book_count"),
		goqu.COALESCE(goqu.SUM(schema.Books.Pages), 0).As("page_total"),
		goqu.COALESCE(goqu.SUM(schema.Books.Chapters), 0).As("chapter_total"),
	))
	if err != nil {
		return BookTotals{}, dberr.Wrap(err, "sum books")
	}
	return totals, nil
}

func (repository *SQLRepository) Longest(ctx context.Context) (*BookRef, error) {
	books := []*BookRef{}
	err := database.Select(ctx, repository.db, &books, repository.liveBooks().
		Select(schema.Books.ID, schema.Books.Title, schema.Books.CopyNumber, schema.Books.Pages).
		Where(goqu.C(schema.Books.Pages).IsNotNull()).
		Order(goqu.C(schema.Books.Pages).Desc(), goqu.C(schema.Books.ID).Asc()).
		Limit(1))
	if err != nil {
		return nil, dberr.Wrap(err, "find longest book")
	}
	if len(books) == 0 {
		return nil, nil
	}
	return books[0], nil
}

func (repository *SQLRepository) AcquiredSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := database.Get(ctx, repository.db, &count, repository.liveBooks().
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(schema.Books.AcquisitionDate).Gte(since)))
	if err != nil {
		return 0, dberr.Wrap(err, "count acquisitions")
	}
	return count, nil
}

func (repository *SQLRepository) Categories(ctx context.Context) ([]string, error) {
	rows := []string{}
	err := database.Select(ctx, repository.db, &rows, repository.liveBooks().
		Select(schema.Books.Categories).
		Where(goqu.C(schema.Books.Categories).Neq("")).
		Order(goqu.C(schema.Books.ID).Asc()))
	if err != nil {
		return nil, dberr.Wrap(err, "list categories")
	}
	return rows, nil
}

// qualified names a column of table, for joined selects.
func qualified(table, name string) exp.IdentifierExpression {
	return goqu.I(table + "." + name)
}

func (repository *SQLRepository) Lendings(ctx context.Context) ([]LendingRow, error) {
	rows := []LendingRow{}
	err := database.Select(ctx, repository.db, &rows, repository.db.From(schema.Lendings.Table).
		Join(goqu.T(schema.Books.Table), goqu.On(
			qualified(schema.Books.Table, schema.Books.ID).Eq(qualified(schema.Lendings.Table, schema.Lendings.BookID)),
		)).
		Select(
			qualified(schema.Lendings.Table, schema.Lendings.BookID),
			qualified(schema.Books.Table, schema.Books.Title).As("book_title"),
			qualified(schema.Books.Table, schema.Books.CopyNumber),
			qualified(schema.Books.Table, schema.Books.Deleted).As("book_deleted"),
			qualified(schema.Lendings.Table, schema.Lendings.BorrowerName),
			qualified(schema.Lendings.Table, schema.Lendings.LentDate),
			qualified(schema.Lendings.Table, schema.Lendings.ReturnDate),
		).
		Where(qualified(schema.Lendings.Table, schema.Lendings.Deleted).IsFalse()))
	if err != nil {
		return nil, dberr.Wrap(err, "load lendings for stats")
	}
	return rows, nil
}

func (repository *SQLRepository) ReadingItems(ctx context.Context) ([]ReadingRow, error) {
	rows := []ReadingRow{}
	err := database.Select(ctx, repository.db, &rows, repository.db.From(schema.ReadingList.Table).
		Join(goqu.T(schema.Books.Table), goqu.On(
			qualified(schema.Books.Table, schema.Books.ID).Eq(qualified(schema.ReadingList.Table, schema.ReadingList.BookID)),
		)).
		Select(
			qualified(schema.ReadingList.Table, schema.ReadingList.AddedDate),
			qualified(schema.ReadingList.Table, schema.ReadingList.Completed),
			qualified(schema.ReadingList.Table, schema.ReadingList.CompletedDate),
			qualified(schema.Books.Table, schema.Books.Deleted).As("book_deleted"),
		))
	if err != nil {
		return nil, dberr.Wrap(err, "load reading list for stats")
	}
	return rows, nil
}
