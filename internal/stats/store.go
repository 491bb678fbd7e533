// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package stats

import (
	"context"
	"time"
)

// Repository reads the raw figures behind a summary.
type Repository interface {
	BookTotals(ctx context.Context) (BookTotals, error)

	// Longest returns the present book with the most pages, or nil.
	Longest(ctx context.Context) (*BookRef, error)
	AcquiredSince(ctx context.Context, since time.Time) (int, error)

	// Categories returns the stored category list of every present book.
	Categories(ctx context.Context) ([]string, error)

	// Lendings returns every present lending, including those of trashed books.
	Lendings(ctx context.Context) ([]LendingRow, error)
	ReadingItems(ctx context.Context) ([]ReadingRow, error)
}
