// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package trash

import (
	"context"
	"time"

	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/internal/lending"
)

// Repository performs the cascades, each in one transaction.
type Repository interface {
	// TrashBook stamps the book and its present lendings with at and batch.
	// It returns the number of cascaded lendings.
	TrashBook(ctx context.Context, id int64, at time.Time, batch string) (int, error)

	RestoreBook(ctx context.Context, id int64) (RestoreReport, error)

	TrashedBooks(ctx context.Context) ([]*catalog.Book, error)
	TrashedLendings(ctx context.Context) ([]*lending.View, error)
}
