// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package readinglist

import (
	"context"
	"time"

	"github.com/taibuivan/librarium/internal/catalog"
)

// Repository is the persistence contract of the reading list.
type Repository interface {
	// Add appends item after the highest order on the whole list. The book must
	// exist and not be trashed. ID and Order are set on success.
	Add(ctx context.Context, item *Item) error

	Get(ctx context.Context, id int64) (*Item, error)

	// Reorder writes the given orders verbatim in one transaction, skipping
	// unknown ids, and returns how many items changed.
	Reorder(ctx context.Context, updates []OrderUpdate) (int, error)

	// SetCompletion writes both completion fields together.
	SetCompletion(ctx context.Context, id int64, completed bool, day *time.Time) error
	SetAddedDate(ctx context.Context, id int64, day time.Time) error
	Delete(ctx context.Context, id int64) error

	// List returns the items added in year, or every item when year is nil,
	// in the order of the corresponding view.
	List(ctx context.Context, year *int) ([]*Entry, error)
	AddedDates(ctx context.Context) ([]time.Time, error)
	Count(ctx context.Context) (int, error)

	// AvailableBooks lists live books that are not on the list, by title.
	AvailableBooks(ctx context.Context) ([]*catalog.Book, error)
}
