// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package backup snapshots the SQLite library file and keeps a record of every copy.

Backups are a side concern of the catalog: they are taken on demand or on a cron
schedule, optionally copied to S3-compatible storage, and never take part in a
catalog mutation. A failed scheduled run is logged and forgotten.
*/
package backup

import (
	"context"
	"io"
	"time"

	"github.com/taibuivan/librarium/internal/platform/constants"
)

// Backup is one snapshot file on disk.
type Backup struct {
	ID        int64     `json:"id"         db:"id"`
	Filename  string    `json:"filename"   db:"filename"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Size      int64     `json:"size"       db:"size"`
	Scheduled bool      `json:"scheduled"  db:"scheduled"`
	Notes     string    `json:"notes"      db:"notes"`

	// ObjectKey is set when the file was also uploaded to object storage.
	ObjectKey string `json:"object_key,omitempty" db:"object_key"`
}

// Snapshotter writes a consistent copy of the live store to dest.
type Snapshotter interface {
	Snapshot(ctx context.Context, dest string) error
}

// Uploader copies snapshot files to remote storage.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader) error
	Delete(ctx context.Context, key string) error
}

// Filename names a snapshot taken at t.
func Filename(t time.Time) string {
	return constants.BackupFilePrefix + t.Format(constants.BackupTimeLayout) + ".db"
}
