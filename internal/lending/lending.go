// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package lending records who borrowed which copy and when it came back.

A book has at most one open lending (no return date, not trashed). Lending it to
another borrower while it is out is refused. Lending it again to the same
borrower is allowed and leaves a "Re-lent by" note on the new record; the earlier
open record stays open until it is marked returned.
*/
package lending

import (
	"time"

	"github.com/taibuivan/librarium/internal/catalog"
)

// Field names used in validation errors.
const (
	FieldBorrowerName = "borrower_name"
	FieldLentDate     = "lent_date"
	FieldDueDate      = "due_date"
	FieldReturnDate   = "return_date"
	FieldNotes        = "notes"
)

const (
	maxBorrowerLen = 100
	maxNotesLen    = 5000
)

// Status filters for listings.
const (
	StatusReturned = "returned"
	StatusOut      = "out"
	StatusOverdue  = "overdue"
)

// Lending is one loan of one physical copy.
type Lending struct {
	ID           int64      `json:"id"                    db:"id"`
	BookID       int64      `json:"book_id"               db:"book_id"`
	BorrowerName string     `json:"borrower_name"         db:"borrower_name"`
	LentDate     time.Time  `json:"lent_date"             db:"lent_date"`
	DueDate      *time.Time `json:"due_date,omitempty"    db:"due_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty" db:"return_date"`
	Notes        string     `json:"notes"                 db:"notes"`
	Deleted      bool       `json:"deleted"               db:"deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"  db:"deleted_at"`
	DeleteBatch  *string    `json:"-"                     db:"delete_batch"`
}

// IsOpen reports whether the copy is still out with this borrower.
func (l *Lending) IsOpen() bool {
	return l.ReturnDate == nil
}

// IsActive reports whether the lending counts toward the one-open-lending rule.
func (l *Lending) IsActive() bool {
	return l.IsOpen() && !l.Deleted
}

// IsOverdue reports whether an open lending is past its due date on day.
func (l *Lending) IsOverdue(day time.Time) bool {
	return l.IsOpen() && l.DueDate != nil && l.DueDate.Before(day)
}

// View is a lending joined with the copy it concerns.
type View struct {
	Lending
	BookTitle   string `json:"book_title"   db:"book_title"`
	BookAuthor  string `json:"book_author"  db:"book_author"`
	CopyNumber  int    `json:"copy_number"  db:"copy_number"`
	BookDeleted bool   `json:"book_deleted" db:"book_deleted"`
}

// DisplayTitle renders the book title with its copy number.
func (v *View) DisplayTitle() string {
	return catalog.DisplayTitle(v.BookTitle, v.CopyNumber)
}

// Input carries a new lending. Dates are YYYY-MM-DD; only LentDate is required.
type Input struct {
	BorrowerName string `json:"borrower_name"`
	LentDate     string `json:"lent_date"`
	DueDate      string `json:"due_date"`
	ReturnDate   string `json:"return_date"`
	Notes        string `json:"notes"`
}

// Filter narrows a lending history listing. Trashed lendings are never listed.
type Filter struct {
	BookID   *int64
	Title    string
	Borrower string
	DateFrom *time.Time
	DateTo   *time.Time
	Status   string

	// Today anchors the overdue status; zero means the current date.
	Today time.Time
}

// BookState is what the ledger needs to know about a copy.
type BookState struct {
	ID         int64  `db:"id"`
	Title      string `db:"title"`
	CopyNumber int    `db:"copy_number"`
	Deleted    bool   `db:"deleted"`
}

// Check is the state a [Guard] decides on, read inside the writing transaction.
type Check struct {
	Book BookState

	// Active is the open lending of the book, if any. When restoring, it never
	// refers to the lending being restored.
	Active *Lending

	// Target is the lending being restored; nil when creating.
	Target *Lending
}

// Guard rejects a write by returning an error. It may adjust the lending being
// created.
type Guard func(check Check, lending *Lending) error
