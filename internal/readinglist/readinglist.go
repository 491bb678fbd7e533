// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package readinglist keeps an ordered list of books to read.

The order value is a manual ranking that is only meaningful within one year:
a single-year view sorts by it, while the all-years view sorts by added date,
newest first, and falls back to the order for items added on the same day.

Items reference books but never follow them into the trash; an item whose book
is trashed stays on the list.
*/
package readinglist

import (
	"time"

	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/pkg/dateonly"
)

// Item is one entry of the reading list.
type Item struct {
	ID            int64      `json:"id"                       db:"id"`
	BookID        int64      `json:"book_id"                  db:"book_id"`
	Order         int        `json:"order"                    db:"sort_order"`
	AddedDate     time.Time  `json:"added_date"               db:"added_date"`
	Notes         string     `json:"notes"                    db:"notes"`
	Completed     bool       `json:"completed"                db:"completed"`
	CompletedDate *time.Time `json:"completed_date,omitempty" db:"completed_date"`
}

// Entry is an item joined with its book, numbered by its place in a listing.
type Entry struct {
	Item
	BookTitle   string `json:"book_title"   db:"book_title"`
	BookAuthor  string `json:"book_author"  db:"book_author"`
	CopyNumber  int    `json:"copy_number"  db:"copy_number"`
	BookDeleted bool   `json:"book_deleted" db:"book_deleted"`

	// Position is 1-based within the listing that produced the entry.
	Position int `json:"position" db:"-"`
}

// DisplayTitle renders the book title with its copy number.
func (e *Entry) DisplayTitle() string {
	return catalog.DisplayTitle(e.BookTitle, e.CopyNumber)
}

// Listing is one view of the reading list.
type Listing struct {
	Year    *int     `json:"year"`
	Entries []*Entry `json:"entries"`

	// Total counts every item regardless of the year filter.
	Total int   `json:"total"`
	Years []int `json:"years"`
}

// Date is a calendar date given either as "YYYY-MM-DD" or as parts. A zero
// month or day defaults to 1, so a year alone means January 1st.
type Date struct {
	Date  string `json:"date"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
}

// IsZero reports whether no date was given.
func (d Date) IsZero() bool {
	return d.Date == "" && d.Year == 0
}

// AddInput carries a new item. Without a date the item is added today.
type AddInput struct {
	BookID int64  `json:"book_id"`
	Notes  string `json:"notes"`
	Date
}

// OrderUpdate assigns an order value to an item.
type OrderUpdate struct {
	ID    int64 `json:"id"`
	Order int   `json:"order"`
}

// resolve converts the date, defaulting to fallback when none was given.
func (d Date) resolve(fallback time.Time) (time.Time, error) {
	if d.IsZero() {
		return fallback, nil
	}
	if d.Date != "" {
		return dateonly.Parse(d.Date)
	}
	return dateonly.FromParts(d.Year, d.Month, d.Day), nil
}
