// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package stats aggregates the library into one read-only summary.

Counts and sums run in SQL. Anything involving date arithmetic is computed here
from the relevant rows, so the same code serves SQLite and PostgreSQL.
*/
package stats

import (
	"time"

	"github.com/taibuivan/librarium/internal/requestlog"
)

// Summary is the full metrics view.
type Summary struct {
	GeneratedAt     time.Time         `json:"generated_at"`
	Books           BookStats         `json:"books"`
	Lending         LendingStats      `json:"lending"`
	ReadingList     ReadingStats      `json:"reading_list"`
	Requests        requestlog.Counts `json:"requests"`
	MonthlyLendings []MonthCount      `json:"monthly_lendings"`
}

type BookStats struct {
	Total            int             `json:"total"`
	Pages            int64           `json:"pages"`
	Chapters         int64           `json:"chapters"`
	AveragePages     float64         `json:"average_pages"`
	Longest          *BookRef        `json:"longest,omitempty"`
	AcquiredThisYear int             `json:"acquired_this_year"`
	Categories       []CategoryCount `json:"categories"`
}

type LendingStats struct {
	CurrentlyLent        int        `json:"currently_lent"`
	TotalReturned        int        `json:"total_returned"`
	Overdue              int        `json:"overdue"`
	UniqueBorrowers      int        `json:"unique_borrowers"`
	MostFrequentBorrower *NameCount `json:"most_frequent_borrower,omitempty"`
	MostBorrowedBook     *BookCount `json:"most_borrowed_book,omitempty"`
	AverageDurationDays  float64    `json:"average_duration_days"`
}

type ReadingStats struct {
	Total                 int     `json:"total"`
	Completed             int     `json:"completed"`
	AverageCompletionDays float64 `json:"average_completion_days"`

	// ReadingRate projects this year's completions onto a full year.
	ReadingRate float64 `json:"reading_rate"`
}

// BookRef identifies a book in a summary.
type BookRef struct {
	ID           int64  `json:"id"            db:"id"`
	Title        string `json:"title"         db:"title"`
	CopyNumber   int    `json:"copy_number"   db:"copy_number"`
	Pages        *int   `json:"pages,omitempty" db:"pages"`
	DisplayTitle string `json:"display_title" db:"-"`
}

type BookCount struct {
	BookRef
	Count int `json:"count"`
}

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthCount is the number of lendings started in a YYYY-MM month.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// BookTotals are the SQL aggregates over present books.
type BookTotals struct {
	Count    int   `db:"book_count"`
	Pages    int64 `db:"page_total"`
	Chapters int64 `db:"chapter_total"`
}

// LendingRow is one present lending with its book.
type LendingRow struct {
	BookID      int64      `db:"book_id"`
	BookTitle   string     `db:"book_title"`
	CopyNumber  int        `db:"copy_number"`
	BookDeleted bool       `db:"book_deleted"`
	Borrower    string     `db:"borrower_name"`
	LentDate    time.Time  `db:"lent_date"`
	ReturnDate  *time.Time `db:"return_date"`
}

// ReadingRow is one reading-list item with the state of its book.
type ReadingRow struct {
	AddedDate     time.Time  `db:"added_date"`
	Completed     bool       `db:"completed"`
	CompletedDate *time.Time `db:"completed_date"`
	BookDeleted   bool       `db:"book_deleted"`
}
