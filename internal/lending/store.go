// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lending

import (
	"context"
	"time"
)

// Repository is the persistence contract of the ledger.
type Repository interface {
	// Create runs guard and inserts lending in one transaction that holds the
	// book's lock. ID is set on success.
	Create(ctx context.Context, lending *Lending, guard Guard) error

	// Get returns a lending, trashed or not.
	Get(ctx context.Context, id int64) (*Lending, error)

	SetReturnDate(ctx context.Context, id int64, day time.Time) error

	// Trash soft-deletes a present lending. It reports false when the lending
	// exists but is already trashed.
	Trash(ctx context.Context, id int64, at time.Time, batch string) (bool, error)

	// Restore runs guard and clears the trash flags in one transaction.
	Restore(ctx context.Context, id int64, guard Guard) error

	Active(ctx context.Context, bookID int64) (*Lending, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*View, int, error)
	ListActive(ctx context.Context) ([]*View, error)
}
