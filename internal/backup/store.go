// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backup

import (
	"context"
	"time"
)

// Repository records the snapshot files.
type Repository interface {
	Create(ctx context.Context, backup *Backup) error
	Get(ctx context.Context, id int64) (*Backup, error)

	// List returns every backup, newest first.
	List(ctx context.Context) ([]*Backup, error)

	// CreatedBefore returns the backups taken before cutoff.
	CreatedBefore(ctx context.Context, cutoff time.Time) ([]*Backup, error)
	Delete(ctx context.Context, id int64) error
}
