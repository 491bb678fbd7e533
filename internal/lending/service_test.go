// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lending_test

import (
	"context"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/internal/lending"
	"github.com/taibuivan/librarium/internal/platform/apperr"
	"github.com/taibuivan/librarium/internal/platform/database"
	"github.com/taibuivan/librarium/internal/platform/database/dbtest"
	"github.com/taibuivan/librarium/internal/platform/database/schema"
	"github.com/taibuivan/librarium/pkg/dateonly"
)

type fixture struct {
	db      *database.DB
	books   *catalog.Service
	service *lending.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	return &fixture{
		db:      db,
		books:   catalog.NewService(catalog.NewSQLRepository(db), dbtest.Logger()),
		service: lending.NewService(lending.NewSQLRepository(db), dbtest.Logger()),
	}
}

func (f *fixture) addBook(t *testing.T, title, isbn string) int64 {
	t.Helper()
	book, err := f.books.AddBook(context.Background(), catalog.BookInput{Title: title, Author: "Author", ISBN: isbn})
	require.NoError(t, err)
	return book.ID
}

func (f *fixture) trashBook(t *testing.T, id int64) {
	t.Helper()
	_, err := database.Exec(context.Background(), f.db, f.db.Update(schema.Books.Table).
		Set(goqu.Record{schema.Books.Deleted: true}).
		Where(goqu.C(schema.Books.ID).Eq(id)))
	require.NoError(t, err)
}

func (f *fixture) lend(t *testing.T, bookID int64, borrower, lentDate string) *lending.Lending {
	t.Helper()
	created, err := f.service.CreateLending(context.Background(), bookID, lending.Input{BorrowerName: borrower, LentDate: lentDate})
	require.NoError(t, err)
	return created
}

/*
TestCreateLending_SameBorrowerRelends walks the Alice, Bob, Alice sequence: Bob
is refused while Alice has the book, and Alice borrowing again is recorded with
a note while her first lending stays open.
*/
func TestCreateLending_SameBorrowerRelends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.addBook(t, "Dune", "")

	first := f.lend(t, bookID, "Alice", "2024-01-01")
	assert.Empty(t, first.Notes)

	_, err := f.service.CreateLending(ctx, bookID, lending.Input{BorrowerName: "Bob", LentDate: "2024-01-02"})
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeAlreadyLentToOther))
	assert.Equal(t, "This book is already lent to Alice", err.Error())

	second, err := f.service.CreateLending(ctx, bookID, lending.Input{BorrowerName: "Alice", LentDate: "2024-01-03", Notes: "again"})
	require.NoError(t, err)
	assert.Equal(t, "Re-lent by Alice. again", second.Notes)

	active, err := f.service.ActiveLending(ctx, bookID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)

	open, err := f.service.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestCreateLending_AfterReturnAnyoneMayBorrow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.addBook(t, "Dune", "")

	first := f.lend(t, bookID, "Alice", "2024-01-01")
	_, err := f.service.MarkReturned(ctx, first.ID)
	require.NoError(t, err)

	bob := f.lend(t, bookID, "Bob", "2024-02-01")
	assert.Empty(t, bob.Notes)
}

func TestCreateLending_TrashedOrMissingBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.addBook(t, "Dune", "")
	f.trashBook(t, bookID)

	_, err := f.service.CreateLending(ctx, bookID, lending.Input{BorrowerName: "Alice", LentDate: "2024-01-01"})
	assert.True(t, apperr.HasCode(err, apperr.CodeBookUnavailable))

	_, err = f.service.CreateLending(ctx, 404, lending.Input{BorrowerName: "Alice", LentDate: "2024-01-01"})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	views, total, err := f.service.ListLendings(ctx, lending.Filter{}, 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, views)
}

func TestCreateLending_Validation(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, "Dune", "")

	tests := []struct {
		name  string
		input lending.Input
		field string
	}{
		{"missing borrower", lending.Input{LentDate: "2024-01-01"}, lending.FieldBorrowerName},
		{"missing lent date", lending.Input{BorrowerName: "Alice"}, lending.FieldLentDate},
		{"malformed lent date", lending.Input{BorrowerName: "Alice", LentDate: "01/02/2024"}, lending.FieldLentDate},
		{"malformed return date", lending.Input{BorrowerName: "Alice", LentDate: "2024-01-01", ReturnDate: "soon"}, lending.FieldReturnDate},
		{"due before lent", lending.Input{BorrowerName: "Alice", LentDate: "2024-01-10", DueDate: "2024-01-01"}, lending.FieldDueDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateLending(context.Background(), bookID, tt.input)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, apperr.CodeValidation, appError.Code)
			require.NotEmpty(t, appError.Details)
			assert.Equal(t, tt.field, appError.Details[0].Field)
		})
	}
}

func TestMarkReturned_SetsTodayAndRepeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.addBook(t, "Dune", "")
	created := f.lend(t, bookID, "Alice", "2024-01-01")
	today := dateonly.Today().Format(dateonly.Layout)

	returned, err := f.service.MarkReturned(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, today, returned.ReturnDate.Format(dateonly.Layout))

	again, err := f.service.MarkReturned(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, today, again.ReturnDate.Format(dateonly.Layout))

	active, err := f.service.ActiveLending(ctx, bookID)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = f.service.MarkReturned(ctx, 999)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestDeleteAndRestoreLending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.addBook(t, "Dune", "")
	created := f.lend(t, bookID, "Alice", "2024-01-01")

	require.NoError(t, f.service.DeleteLending(ctx, created.ID))
	assert.True(t, apperr.HasCode(f.service.DeleteLending(ctx, created.ID), apperr.CodeAlreadyInTrash))

	stored, err := f.service.GetLending(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Deleted)
	require.NotNil(t, stored.DeleteBatch)

	// A trashed lending no longer blocks other borrowers
	active, err := f.service.ActiveLending(ctx, bookID)
	require.NoError(t, err)
	assert.Nil(t, active)

	restored, err := f.service.RestoreLending(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, restored.Deleted)
	assert.Nil(t, restored.DeletedAt)
	assert.Nil(t, restored.DeleteBatch)

	_, err = f.service.RestoreLending(ctx, created.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotInTrash))

	assert.True(t, apperr.HasCode(f.service.DeleteLending(ctx, 999), apperr.CodeNotFound))
}

func TestRestoreLending_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.addBook(t, "Dune", "")

	alice := f.lend(t, bookID, "Alice", "2024-01-01")
	require.NoError(t, f.service.DeleteLending(ctx, alice.ID))
	f.lend(t, bookID, "Bob", "2024-01-05")

	_, err := f.service.RestoreLending(ctx, alice.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeAlreadyLentToOther))

	f.trashBook(t, bookID)
	_, err = f.service.RestoreLending(ctx, alice.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeBookUnavailable))
}

func TestListLendings_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dune := f.addBook(t, "Dune", "111")
	duneCopy := f.addBook(t, "Dune", "111")
	emma := f.addBook(t, "Emma", "")

	returned := f.lend(t, dune, "Alice", "2024-01-01")
	_, err := f.service.MarkReturned(ctx, returned.ID)
	require.NoError(t, err)

	yesterday := dateonly.Today().AddDate(0, 0, -1).Format(dateonly.Layout)
	_, err = f.service.CreateLending(ctx, duneCopy, lending.Input{BorrowerName: "Bob", LentDate: "2024-02-01", DueDate: yesterday})
	require.NoError(t, err)
	f.lend(t, emma, "Carol", "2024-03-01")

	all, total, err := f.service.ListLendings(ctx, lending.Filter{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, "Carol", all[0].BorrowerName)
	assert.Equal(t, "Dune (Copy #2)", all[1].DisplayTitle())

	cases := []struct {
		name     string
		filter   lending.Filter
		expected []string
	}{
		{"returned", lending.Filter{Status: lending.StatusReturned}, []string{"Alice"}},
		{"out", lending.Filter{Status: lending.StatusOut}, []string{"Carol", "Bob"}},
		{"overdue", lending.Filter{Status: lending.StatusOverdue}, []string{"Bob"}},
		{"borrower", lending.Filter{Borrower: "ALI"}, []string{"Alice"}},
		{"title", lending.Filter{Title: "emm"}, []string{"Carol"}},
		{"book", lending.Filter{BookID: &dune}, []string{"Alice"}},
		{"date range", lending.Filter{
			DateFrom: ptrDate("2024-01-15"),
			DateTo:   ptrDate("2024-02-15"),
		}, []string{"Bob"}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			views, _, err := f.service.ListLendings(ctx, tt.filter, 20, 0)
			require.NoError(t, err)
			var borrowers []string
			for _, view := range views {
				borrowers = append(borrowers, view.BorrowerName)
			}
			assert.Equal(t, tt.expected, borrowers)
		})
	}

	_, _, err = f.service.ListLendings(ctx, lending.Filter{Status: "lost"}, 20, 0)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func ptrDate(value string) *time.Time {
	parsed, _ := dateonly.Parse(value)
	return &parsed
}
