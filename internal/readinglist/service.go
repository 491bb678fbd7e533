// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package readinglist

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/internal/platform/apperr"
	"github.com/taibuivan/librarium/internal/platform/validate"
	"github.com/taibuivan/librarium/pkg/dateonly"
)

const maxNotesLen = 5000

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (service *Service) today() time.Time {
	return dateonly.Of(service.now())
}

// Add appends a book to the end of the list.
func (service *Service) Add(ctx context.Context, input AddInput) (*Item, error) {
	validator := &validate.Validator{}
	validator.Positive("book_id", input.BookID)
	validator.MaxLen("notes", input.Notes, maxNotesLen)
	validateDate(validator, "added_date", input.Date)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	addedDate, _ := input.Date.resolve(service.today())
	item := &Item{
		BookID:    input.BookID,
		AddedDate: addedDate,
		Notes:     strings.TrimSpace(input.Notes),
	}

	if err := service.repo.Add(ctx, item); err != nil {
		return nil, err
	}

	service.logger.Info("reading_list_item_added",
		slog.Int64("item_id", item.ID),
		slog.Int64("book_id", item.BookID),
		slog.Int("order", item.Order),
	)
	return item, nil
}

// Reorder applies the given order values as they are. Callers supply a
// consistent permutation; unknown ids are skipped.
func (service *Service) Reorder(ctx context.Context, updates []OrderUpdate) (int, error) {
	changed, err := service.repo.Reorder(ctx, updates)
	if err != nil {
		return 0, err
	}
	service.logger.Info("reading_list_reordered", slog.Int("requested", len(updates)), slog.Int("changed", changed))
	return changed, nil
}

// Complete marks an item read today.
func (service *Service) Complete(ctx context.Context, id int64) (*Item, error) {
	today := service.today()
	if err := service.repo.SetCompletion(ctx, id, true, &today); err != nil {
		return nil, err
	}
	service.logger.Info("reading_list_item_completed", slog.Int64("item_id", id))
	return service.repo.Get(ctx, id)
}

// Unmark clears the completion of an item.
func (service *Service) Unmark(ctx context.Context, id int64) (*Item, error) {
	if err := service.repo.SetCompletion(ctx, id, false, nil); err != nil {
		return nil, err
	}
	service.logger.Info("reading_list_item_unmarked", slog.Int64("item_id", id))
	return service.repo.Get(ctx, id)
}

// Remove deletes an item for good.
func (service *Service) Remove(ctx context.Context, id int64) error {
	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}
	service.logger.Info("reading_list_item_removed", slog.Int64("item_id", id))
	return nil
}

func (service *Service) EditAddedDate(ctx context.Context, id int64, date Date) (*Item, error) {
	day, err := requiredDate("added_date", date)
	if err != nil {
		return nil, err
	}
	if err := service.repo.SetAddedDate(ctx, id, day); err != nil {
		return nil, err
	}
	return service.repo.Get(ctx, id)
}

// EditCompletedDate changes when a completed item was read.
func (service *Service) EditCompletedDate(ctx context.Context, id int64, date Date) (*Item, error) {
	day, err := requiredDate("completed_date", date)
	if err != nil {
		return nil, err
	}

	item, err := service.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.Completed {
		return nil, apperr.Unprocessable("Only a completed item has a read date")
	}

	if err := service.repo.SetCompletion(ctx, id, true, &day); err != nil {
		return nil, err
	}
	return service.repo.Get(ctx, id)
}

// List returns the view for one year, or for all years when year is nil.
func (service *Service) List(ctx context.Context, year *int) (*Listing, error) {
	entries, err := service.repo.List(ctx, year)
	if err != nil {
		return nil, err
	}
	for index, entry := range entries {
		entry.Position = index + 1
	}

	total, err := service.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	years, err := service.Years(ctx)
	if err != nil {
		return nil, err
	}

	return &Listing{Year: year, Entries: entries, Total: total, Years: years}, nil
}

// Years lists the distinct years items were added in, newest first.
func (service *Service) Years(ctx context.Context) ([]int, error) {
	dates, err := service.repo.AddedDates(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[int]struct{}{}
	years := []int{}
	for _, date := range dates {
		if _, ok := seen[date.Year()]; ok {
			continue
		}
		seen[date.Year()] = struct{}{}
		years = append(years, date.Year())
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (service *Service) Count(ctx context.Context) (int, error) {
	return service.repo.Count(ctx)
}

// AvailableBooks lists the live books not yet on the list.
func (service *Service) AvailableBooks(ctx context.Context) ([]*catalog.Book, error) {
	return service.repo.AvailableBooks(ctx)
}

func validateDate(validator *validate.Validator, field string, date Date) {
	if date.Date != "" {
		validator.Date(field, date.Date)
		return
	}
	if date.Year == 0 {
		return
	}
	validator.Range(field, date.Year, 1, 9999)
	validator.Range(field, date.Month, 0, 12)
	validator.Range(field, date.Day, 0, 31)
	validator.Custom(field, !validCalendarDay(date), "Must be a valid calendar date")
}

// validCalendarDay rejects parts that time.Date would silently normalize.
func validCalendarDay(date Date) bool {
	resolved := dateonly.FromParts(date.Year, date.Month, date.Day)
	month := date.Month
	if month == 0 {
		month = 1
	}
	day := date.Day
	if day == 0 {
		day = 1
	}
	return resolved.Year() == date.Year && int(resolved.Month()) == month && resolved.Day() == day
}

func requiredDate(field string, date Date) (time.Time, error) {
	validator := &validate.Validator{}
	validator.Custom(field, date.IsZero(), "This field is required")
	validateDate(validator, field, date)
	if err := validator.Err(); err != nil {
		return time.Time{}, err
	}
	day, _ := date.resolve(time.Time{})
	return day, nil
}
