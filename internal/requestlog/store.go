// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestlog

import "context"

type Repository interface {
	Insert(ctx context.Context, entry *Entry) error

	// List returns a page of entries, newest first, with the total count.
	List(ctx context.Context, limit, offset int) ([]*Entry, int, error)
	Counts(ctx context.Context) (Counts, error)
}
