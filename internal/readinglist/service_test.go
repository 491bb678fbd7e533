// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package readinglist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/internal/platform/apperr"
	"github.com/taibuivan/librarium/internal/platform/database/dbtest"
	"github.com/taibuivan/librarium/internal/readinglist"
	"github.com/taibuivan/librarium/internal/trash"
	"github.com/taibuivan/librarium/pkg/dateonly"
)

type fixture struct {
	books   *catalog.Service
	trash   *trash.Service
	service *readinglist.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	return &fixture{
		books:   catalog.NewService(catalog.NewSQLRepository(db), dbtest.Logger()),
		trash:   trash.NewService(trash.NewSQLRepository(db), dbtest.Logger()),
		service: readinglist.NewService(readinglist.NewSQLRepository(db), dbtest.Logger()),
	}
}

func (f *fixture) addBook(t *testing.T, title string) int64 {
	t.Helper()
	book, err := f.books.AddBook(context.Background(), catalog.BookInput{Title: title, Author: "Author"})
	require.NoError(t, err)
	return book.ID
}

func (f *fixture) add(t *testing.T, bookID int64, date string) *readinglist.Item {
	t.Helper()
	item, err := f.service.Add(context.Background(), readinglist.AddInput{BookID: bookID, Date: readinglist.Date{Date: date}})
	require.NoError(t, err)
	return item
}

func titles(listing *readinglist.Listing) []string {
	var out []string
	for _, entry := range listing.Entries {
		out = append(out, entry.BookTitle)
	}
	return out
}

/*
TestList_DualOrdering adds three items with orders 1, 2, 3 whose added dates run
against the order. A single year sorts by order; all years sort by date, newest
first, with order breaking ties.
*/
func TestList_DualOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.add(t, f.addBook(t, "First"), "2024-03-01")
	second := f.add(t, f.addBook(t, "Second"), "2024-01-15")
	third := f.add(t, f.addBook(t, "Third"), "2023-12-31")
	fourth := f.add(t, f.addBook(t, "Fourth"), "2024-03-01")
	assert.Equal(t, []int{1, 2, 3, 4}, []int{first.Order, second.Order, third.Order, fourth.Order})

	year := 2024
	byYear, err := f.service.List(ctx, &year)
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second", "Fourth"}, titles(byYear))
	assert.Equal(t, 4, byYear.Total)
	assert.Equal(t, []int{2024, 2023}, byYear.Years)

	all, err := f.service.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Fourth", "Second", "Third"}, titles(all))
	for index, entry := range all.Entries {
		assert.Equal(t, index+1, entry.Position)
	}

	assert.NotEqual(t, titles(byYear), titles(all)[:3])
}

func TestAdd_DefaultsAndGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.addBook(t, "Dune")

	item, err := f.service.Add(ctx, readinglist.AddInput{BookID: bookID, Notes: " soon "})
	require.NoError(t, err)
	assert.Equal(t, dateonly.Today().Format(dateonly.Layout), item.AddedDate.Format(dateonly.Layout))
	assert.Equal(t, "soon", item.Notes)

	parts, err := f.service.Add(ctx, readinglist.AddInput{BookID: bookID, Date: readinglist.Date{Year: 2022, Month: 6}})
	require.NoError(t, err)
	assert.Equal(t, "2022-06-01", parts.AddedDate.Format(dateonly.Layout))

	_, err = f.service.Add(ctx, readinglist.AddInput{BookID: 404})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = f.service.Add(ctx, readinglist.AddInput{BookID: bookID, Date: readinglist.Date{Year: 2022, Month: 2, Day: 30}})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = f.trash.DeleteBook(ctx, bookID)
	require.NoError(t, err)
	_, err = f.service.Add(ctx, readinglist.AddInput{BookID: bookID})
	assert.True(t, apperr.HasCode(err, apperr.CodeBookUnavailable))
}

func TestReorder_VerbatimAndSkipsUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.add(t, f.addBook(t, "A"), "2024-01-01")
	b := f.add(t, f.addBook(t, "B"), "2024-01-01")

	changed, err := f.service.Reorder(ctx, []readinglist.OrderUpdate{
		{ID: a.ID, Order: 7},
		{ID: b.ID, Order: 7},
		{ID: 999, Order: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	year := 2024
	listing, err := f.service.List(ctx, &year)
	require.NoError(t, err)
	require.Len(t, listing.Entries, 2)
	assert.Equal(t, 7, listing.Entries[0].Order)
	assert.Equal(t, 7, listing.Entries[1].Order)

	// The next add continues after the highest order
	c := f.add(t, f.addBook(t, "C"), "2020-01-01")
	assert.Equal(t, 8, c.Order)
}

func TestCompleteUnmarkAndDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.add(t, f.addBook(t, "Dune"), "2024-01-01")

	_, err := f.service.EditCompletedDate(ctx, item.ID, readinglist.Date{Date: "2024-02-01"})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnprocessable))

	completed, err := f.service.Complete(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, completed.Completed)
	require.NotNil(t, completed.CompletedDate)
	assert.Equal(t, dateonly.Today().Format(dateonly.Layout), completed.CompletedDate.Format(dateonly.Layout))

	edited, err := f.service.EditCompletedDate(ctx, item.ID, readinglist.Date{Year: 2024, Month: 2, Day: 10})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-10", edited.CompletedDate.Format(dateonly.Layout))

	unmarked, err := f.service.Unmark(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, unmarked.Completed)
	assert.Nil(t, unmarked.CompletedDate)

	moved, err := f.service.EditAddedDate(ctx, item.ID, readinglist.Date{Date: "2021-05-05"})
	require.NoError(t, err)
	assert.Equal(t, "2021-05-05", moved.AddedDate.Format(dateonly.Layout))

	_, err = f.service.EditAddedDate(ctx, item.ID, readinglist.Date{})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = f.service.Complete(ctx, 999)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestRemoveAndTrashedBooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dune := f.addBook(t, "Dune")
	emma := f.addBook(t, "Emma")
	f.addBook(t, "Anathem")
	kept := f.add(t, dune, "2024-01-01")
	removed := f.add(t, emma, "2024-01-02")

	available, err := f.service.AvailableBooks(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Anathem", available[0].Title)

	require.NoError(t, f.service.Remove(ctx, removed.ID))
	assert.True(t, apperr.HasCode(f.service.Remove(ctx, removed.ID), apperr.CodeNotFound))

	// Trashing a book keeps its item on the list
	_, err = f.trash.DeleteBook(ctx, dune)
	require.NoError(t, err)

	listing, err := f.service.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, listing.Entries, 1)
	assert.Equal(t, kept.ID, listing.Entries[0].ID)
	assert.True(t, listing.Entries[0].BookDeleted)

	count, err := f.service.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
