// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog owns book records and their copy numbers.

Several physical copies of one title share an ISBN. Each live copy carries a
copy number; adding a copy assigns max+1 within its ISBN group, and
[Service.RenumberCopies] compacts every group back to 1..N in id order.

Deleting and restoring books is coordinated by the trash package because it
cascades into lendings; this package only reads the deleted flag.
*/
package catalog

import (
	"fmt"
	"time"

	"github.com/taibuivan/librarium/pkg/isbn"
	"github.com/taibuivan/librarium/pkg/labels"
	"github.com/taibuivan/librarium/pkg/pointer"
)

// Field names used in validation errors.
const (
	FieldTitle           = "title"
	FieldAuthor          = "author"
	FieldISBN            = "isbn"
	FieldPages           = "pages"
	FieldChapters        = "chapters"
	FieldAcquisitionDate = "acquisition_date"
	FieldPublicationDate = "publication_date"
	FieldCategories      = "categories"
	FieldTags            = "tags"
)

// Length limits shared by validation and the schema.
const (
	maxTitleLen    = 200
	maxAuthorLen   = 200
	maxLabelsLen   = 500
	maxISBNLen     = 20
	maxPubDateLen  = 20
	maxNotesLength = 10000
)

// Book is the single authoritative record of one physical copy.
type Book struct {
	ID              int64      `json:"id"                         db:"id"`
	Title           string     `json:"title"                      db:"title"`
	Author          string     `json:"author"                     db:"author"`
	ISBN            *string    `json:"isbn,omitempty"             db:"isbn"`
	CopyNumber      int        `json:"copy_number"                db:"copy_number"`
	PublicationDate *string    `json:"publication_date,omitempty" db:"publication_date"`
	Pages           *int       `json:"pages,omitempty"            db:"pages"`
	Chapters        *int       `json:"chapters,omitempty"         db:"chapters"`
	AcquisitionDate *time.Time `json:"acquisition_date,omitempty" db:"acquisition_date"`
	Categories      string     `json:"categories"                 db:"categories"`
	Tags            string     `json:"tags"                       db:"tags"`
	Notes           string     `json:"notes"                      db:"notes"`
	Deleted         bool       `json:"deleted"                    db:"deleted"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"       db:"deleted_at"`
	DeleteBatch     *string    `json:"-"                          db:"delete_batch"`
	CreatedAt       time.Time  `json:"created_at"                 db:"created_at"`
}

// ISBNValue returns the ISBN or "" when the book has none.
func (b *Book) ISBNValue() string {
	return pointer.Val(b.ISBN)
}

// FormattedISBN returns the hyphenated display form of the ISBN.
func (b *Book) FormattedISBN() string {
	return isbn.Format(b.ISBNValue())
}

// DisplayTitle appends the copy number for second and later copies.
func (b *Book) DisplayTitle() string {
	return DisplayTitle(b.Title, b.CopyNumber)
}

// CategoryList splits the stored categories.
func (b *Book) CategoryList() []string { return labels.Parse(b.Categories) }

// TagList splits the stored tags.
func (b *Book) TagList() []string { return labels.Parse(b.Tags) }

// DisplayTitle renders "Title (Copy #n)" when n > 1.
func DisplayTitle(title string, copyNumber int) string {
	if copyNumber > 1 {
		return fmt.Sprintf("%s (Copy #%d)", title, copyNumber)
	}
	return title
}

// BookInput carries the user-editable fields of a book. Dates are YYYY-MM-DD.
// The copy number is never supplied by callers.
type BookInput struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationDate string `json:"publication_date"`
	Pages           *int   `json:"pages"`
	Chapters        *int   `json:"chapters"`
	AcquisitionDate string `json:"acquisition_date"`
	Categories      string `json:"categories"`
	Tags            string `json:"tags"`
	Notes           string `json:"notes"`
}

// Filter narrows a catalog listing. Deleted books are never listed.
type Filter struct {
	// Query matches title, author or ISBN, case-insensitively.
	Query    string
	Category string
	Tag      string
}

// RenumberReport summarizes a copy number repair pass.
type RenumberReport struct {
	Groups  int `json:"groups"`
	Updated int `json:"updated"`
}
