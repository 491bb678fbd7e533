// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package trash moves books to the trash and back, together with their lendings.

Deleting a book stamps the book and every present lending of it with the same
delete batch id. Restoring the book brings back exactly the lendings carrying
that batch; lendings trashed on their own have a batch of their own and stay in
the trash.
*/
package trash

import (
	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/internal/lending"
)

// DeleteReport describes one delete event.
type DeleteReport struct {
	BookID   int64  `json:"book_id"`
	Batch    string `json:"delete_batch"`
	Lendings int    `json:"lendings"`
}

// RestoreReport describes one restore.
type RestoreReport struct {
	BookID   int64 `json:"book_id"`
	Lendings int   `json:"lendings"`

	// CopyNumber is the number the book holds after the restore. Renumbered is
	// set when its old number had been taken by a newer copy.
	CopyNumber int  `json:"copy_number"`
	Renumbered bool `json:"renumbered"`
}

// Listing is the content of the trash, most recently trashed first.
type Listing struct {
	Books    []*catalog.Book `json:"books"`
	Lendings []*lending.View `json:"lendings"`
}
