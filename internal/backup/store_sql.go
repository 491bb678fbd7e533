// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backup

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/taibuivan/librarium/internal/platform/apperr"
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

func (repository *SQLRepository) Create(ctx context.Context, backup *Backup) error {
	id, err := repository.db.InsertID(ctx, repository.db, repository.db.InsertInto(schema.Backups.Table).Rows(goqu.Record{
		schema.Backups.Filename:  backup.Filename,
		schema.Backups.CreatedAt: backup.CreatedAt,
		schema.Backups.Size:      backup.Size,
		schema.Backups.Scheduled: backup.Scheduled,
		schema.Backups.Notes:     backup.Notes,
		schema.Backups.ObjectKey: backup.ObjectKey,
	}))
	if err != nil {
		return dberr.Wrap(err, "record backup")
	}
	backup.ID = id
	return nil
}

func (repository *SQLRepository) Get(ctx context.Context, id int64) (*Backup, error) {
	backup := &Backup{}
	err := database.Get(ctx, repository.db, backup, repository.db.From(schema.Backups.Table).
		Select(schema.Backups.Columns()...).
		Where(goqu.C(schema.Backups.ID).Eq(id)))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "Backup", "load backup")
	}
	return backup, nil
}

func (repository *SQLRepository) List(ctx context.Context) ([]*Backup, error) {
	backups := []*Backup{}
	err := database.Select(ctx, repository.db, &backups, repository.db.From(schema.Backups.Table).
		Select(schema.Backups.Columns()...).
		Order(goqu.C(schema.Backups.CreatedAt).Desc(), goqu.C(schema.Backups.ID).Desc()))
	if err != nil {
		return nil, dberr.Wrap(err, "list backups")
	}
	return backups, nil
}

func (repository *SQLRepository) CreatedBefore(ctx context.Context, cutoff time.Time) ([]*Backup, error) {
	backups := []*Backup{}
	err := database.Select(ctx, repository.db, &backups, repository.db.From(schema.Backups.Table).
		Select(schema.Backups.Columns()...).
		Where(goqu.C(schema.Backups.CreatedAt).Lt(cutoff)).
		Order(goqu.C(schema.Backups.CreatedAt).Asc()))
	if err != nil {
		return nil, dberr.Wrap(err, "list expired backups")
	}
	return backups, nil
}

func (repository *SQLRepository) Delete(ctx context.Context, id int64) error {
	affected, err := database.Exec(ctx, repository.db, repository.db.DeleteFrom(schema.Backups.Table).
		Where(goqu.C(schema.Backups.ID).Eq(id)))
	if err != nil {
		return dberr.Wrap(err, "delete backup record")
	}
	if affected == 0 {
		return apperr.NotFound("Backup")
	}
	return nil
}
