// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestlog

import (
	"context"

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

func (repository *SQLRepository) Insert(ctx context.Context, entry *Entry) error {
	id, err := repository.db.InsertID(ctx, repository.db, repository.db.InsertInto(schema.RequestLogs.Table).Rows(goqu.Record{
		schema.RequestLogs.Timestamp:    entry.Timestamp,
		schema.RequestLogs.Method:       entry.Method,
		schema.RequestLogs.Path:         entry.Path,
		schema.RequestLogs.Endpoint:     entry.Endpoint,
		schema.RequestLogs.StatusCode:   entry.StatusCode,
		schema.RequestLogs.IPAddress:    entry.IPAddress,
		schema.RequestLogs.UserAgent:    entry.UserAgent,
		schema.RequestLogs.ResponseTime: entry.ResponseTime,
	}))
	if err != nil {
		return dberr.Wrap(err, "insert request log")
	}
	entry.ID = id
	return nil
}

func (repository *SQLRepository) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := database.Get(ctx, repository.db, &total, repository.db.From(schema.RequestLogs.Table).
		Select(goqu.COUNT(goqu.Star()))); err != nil {
		return nil, 0, dberr.Wrap(err, "count request logs")
	}

	entries := []*Entry{}
	err := database.Select(ctx, repository.db, &entries, repository.db.From(schema.RequestLogs.Table).
		Select(schema.RequestLogs.Columns()...).
		Order(goqu.C(schema.RequestLogs.Timestamp).Desc(), goqu.C(schema.RequestLogs.ID).Desc()).
		Limit(uint(limit)).
		Offset(uint(offset)))
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list request logs")
	}
	return entries, total, nil
}

// countWhen counts the rows matching condition. The literals keep PostgreSQL
// from having to infer a type for bound CASE results.
func countWhen(condition exp.Expression) exp.SQLFunctionExpression {
	return goqu.COALESCE(goqu.SUM(goqu.Case().When(condition, goqu.L("1")).Else(goqu.L("0"))), 0)
}

func (repository *SQLRepository) Counts(ctx context.Context) (Counts, error) {
	var counts Counts
	err := database.Get(ctx, repository.db, &counts, repository.db.From(schema.RequestLogs.Table).Select(
		goqu.COUNT(goqu.Star()).As("total"),
		countWhen(goqu.C(schema.RequestLogs.Method).Eq("GET")).As("get_count"),
		countWhen(goqu.C(schema.RequestLogs.Method).Eq("POST")).As("post_count"),
		countWhen(goqu.C(schema.RequestLogs.StatusCode).Between(exp.NewRangeVal(200, 299))).As("success_count"),
		countWhen(goqu.C(schema.RequestLogs.StatusCode).Gte(400)).As("error_count"),
	))
	if err != nil {
		return Counts{}, dberr.Wrap(err, "count requests")
	}
	return counts, nil
}
