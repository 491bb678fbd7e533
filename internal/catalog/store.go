// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import "context"

// Repository is the persistence contract of the catalog.
type Repository interface {
	// CreateBook assigns the next copy number for the book's ISBN and inserts it
	// atomically. ID, CopyNumber and CreatedAt are set on success.
	CreateBook(ctx context.Context, book *Book) error

	// UpdateBook rewrites the editable fields. When the ISBN changes the book
	// receives the next copy number of its new group.
	UpdateBook(ctx context.Context, book *Book) error

	// GetBook returns a book, deleted or not.
	GetBook(ctx context.Context, id int64) (*Book, error)

	ListBooks(ctx context.Context, filter Filter, limit, offset int) ([]*Book, int, error)
	FindByISBN(ctx context.Context, isbn string) ([]*Book, error)

	NextCopyNumber(ctx context.Context, isbn string) (int, error)
	RenumberAll(ctx context.Context) (RenumberReport, error)

	// LabelColumn returns the non-empty stored values of the categories or tags column.
	LabelColumn(ctx context.Context, column string) ([]string, error)
}
