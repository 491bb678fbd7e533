// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package stats

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/internal/platform/constants"
	"github.com/taibuivan/librarium/internal/requestlog"
	"github.com/taibuivan/librarium/pkg/dateonly"
	"github.com/taibuivan/librarium/pkg/labels"
)

const (
	monthLayout  = "2006-01"
	daysInPeriod = 365
)

// RequestCounter supplies the request figures. [*requestlog.Service] satisfies it.
type RequestCounter interface {
	Counts(ctx context.Context) (requestlog.Counts, error)
}

type Service struct {
	repo     Repository
	requests RequestCounter
	now      func() time.Time
}

// NewService builds the summary service. requests may be nil.
func NewService(repo Repository, requests RequestCounter) *Service {
	return &Service{repo: repo, requests: requests, now: time.Now}
}

// Summary computes every figure of the metrics view.
func (service *Service) Summary(ctx context.Context) (*Summary, error) {
	now := service.now()
	today := dateonly.Of(now)
	summary := &Summary{GeneratedAt: now.UTC()}

	var err error
	if summary.Books, err = service.bookStats(ctx, today); err != nil {
		return nil, err
	}

	lendings, err := service.repo.Lendings(ctx)
	if err != nil {
		return nil, err
	}
	summary.Lending = lendingStats(lendings, today)
	summary.MonthlyLendings = monthlyLendings(lendings, today)

	items, err := service.repo.ReadingItems(ctx)
	if err != nil {
		return nil, err
	}
	summary.ReadingList = readingStats(items, today)

	if service.requests != nil {
		if summary.Requests, err = service.requests.Counts(ctx); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

func (service *Service) bookStats(ctx context.Context, today time.Time) (BookStats, error) {
	totals, err := service.repo.BookTotals(ctx)
	if err != nil {
		return BookStats{}, err
	}

	stats := BookStats{Total: totals.Count, Pages: totals.Pages, Chapters: totals.Chapters}
	if totals.Count > 0 {
		stats.AveragePages = float64(totals.Pages) / float64(totals.Count)
	}

	if stats.Longest, err = service.repo.Longest(ctx); err != nil {
		return BookStats{}, err
	}
	if stats.Longest != nil {
		stats.Longest.DisplayTitle = catalog.DisplayTitle(stats.Longest.Title, stats.Longest.CopyNumber)
	}

	yearStart, _ := dateonly.YearRange(today.Year())
	if stats.AcquiredThisYear, err = service.repo.AcquiredSince(ctx, yearStart); err != nil {
		return BookStats{}, err
	}

	rows, err := service.repo.Categories(ctx)
	if err != nil {
		return BookStats{}, err
	}
	stats.Categories = countCategories(rows)
	return stats, nil
}

// countCategories counts books per category, folding case. The first spelling
// seen names the category.
func countCategories(rows []string) []CategoryCount {
	index := map[string]int{}
	counts := []CategoryCount{}
	for _, row := range rows {
		for _, label := range labels.Parse(row) {
			key := labels.Key(label)
			position, ok := index[key]
			if !ok {
				position = len(counts)
				index[key] = position
				counts = append(counts, CategoryCount{Name: label})
			}
			counts[position].Count++
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return labels.Key(counts[i].Name) < labels.Key(counts[j].Name)
	})
	return counts
}

func lendingStats(rows []LendingRow, today time.Time) LendingStats {
	var (
		stats         LendingStats
		durationTotal float64
		returned      int
		borrowers     = map[string]int{}
		books         = map[int64]*BookCount{}
		overdueBefore = today.Add(-constants.OverdueAfter)
	)

	for _, row := range rows {
		borrowers[strings.TrimSpace(row.Borrower)]++

		if row.ReturnDate != nil {
			durationTotal += row.ReturnDate.Sub(row.LentDate).Hours() / 24
			returned++
		}

		if row.BookDeleted {
			continue
		}
		if row.ReturnDate == nil {
			stats.CurrentlyLent++
			if row.LentDate.Before(overdueBefore) {
				stats.Overdue++
			}
		} else {
			stats.TotalReturned++
		}

		book, ok := books[row.BookID]
		if !ok {
			book = &BookCount{BookRef: BookRef{
				ID:           row.BookID,
				Title:        row.BookTitle,
				CopyNumber:   row.CopyNumber,
				DisplayTitle: catalog.DisplayTitle(row.BookTitle, row.CopyNumber),
			}}
			books[row.BookID] = book
		}
		book.Count++
	}

	if returned > 0 {
		stats.AverageDurationDays = durationTotal / float64(returned)
	}

	stats.UniqueBorrowers = len(borrowers)
	for name, count := range borrowers {
		current := stats.MostFrequentBorrower
		if current == nil || count > current.Count || (count == current.Count && name < current.Name) {
			stats.MostFrequentBorrower = &NameCount{Name: name, Count: count}
		}
	}
	for _, book := range books {
		current := stats.MostBorrowedBook
		if current == nil || book.Count > current.Count || (book.Count == current.Count && book.ID < current.ID) {
			stats.MostBorrowedBook = book
		}
	}
	return stats
}

// monthlyLendings counts lendings started within the last year, newest month first.
func monthlyLendings(rows []LendingRow, today time.Time) []MonthCount {
	since := today.AddDate(0, 0, -daysInPeriod)
	counts := map[string]int{}
	for _, row := range rows {
		if row.LentDate.Before(since) {
			continue
		}
		counts[row.LentDate.Format(monthLayout)]++
	}

	months := make([]MonthCount, 0, len(counts))
	for month, count := range counts {
		months = append(months, MonthCount{Month: month, Count: count})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month > months[j].Month })
	return months
}

func readingStats(rows []ReadingRow, today time.Time) ReadingStats {
	var (
		stats       ReadingStats
		daysTotal   float64
		timedCount  int
		yearStart   = dateonly.FromParts(today.Year(), 1, 1)
		elapsedDays = today.Sub(yearStart).Hours() / 24
	)

	for _, row := range rows {
		if row.Completed && row.CompletedDate != nil {
			daysTotal += row.CompletedDate.Sub(row.AddedDate).Hours() / 24
			timedCount++
		}
		if row.BookDeleted {
			continue
		}
		stats.Total++
		if row.Completed {
			stats.Completed++
		}
	}

	if timedCount > 0 {
		stats.AverageCompletionDays = daysTotal / float64(timedCount)
	}
	if elapsedDays < 1 {
		elapsedDays = 1
	}
	stats.ReadingRate = float64(stats.Completed) / elapsedDays * daysInPeriod
	return stats
}
