// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/internal/platform/apperr"
	"github.com/taibuivan/librarium/internal/platform/database"
	"github.com/taibuivan/librarium/internal/platform/database/dbtest"
	"github.com/taibuivan/librarium/internal/platform/database/schema"
	"github.com/taibuivan/librarium/pkg/pointer"
)

func newService(t *testing.T) (*catalog.Service, *database.DB) {
	t.Helper()
	db := dbtest.Open(t)
	return catalog.NewService(catalog.NewSQLRepository(db), dbtest.Logger()), db
}

func addBook(t *testing.T, service *catalog.Service, title, isbn string) *catalog.Book {
	t.Helper()
	book, err := service.AddBook(context.Background(), catalog.BookInput{Title: title, Author: "Author", ISBN: isbn})
	require.NoError(t, err)
	return book
}

// trash marks a book deleted directly, standing in for the trash coordinator.
func trash(t *testing.T, db *database.DB, id int64) {
	t.Helper()
	_, err := database.Exec(context.Background(), db, db.Update(schema.Books.Table).
		Set(goqu.Record{schema.Books.Deleted: true}).
		Where(goqu.C(schema.Books.ID).Eq(id)))
	require.NoError(t, err)
}

func TestAddBook_AssignsCopyNumbers(t *testing.T) {
	service, _ := newService(t)

	first := addBook(t, service, "Dune", "978-0-441-01359-3")
	second := addBook(t, service, "Dune", "9780441013593")
	other := addBook(t, service, "Emma", "0141439580")
	noISBN := addBook(t, service, "Notebook", "")

	assert.Equal(t, 1, first.CopyNumber)
	assert.Equal(t, 2, second.CopyNumber)
	assert.Equal(t, 1, other.CopyNumber)
	assert.Equal(t, 1, noISBN.CopyNumber)

	assert.Equal(t, "9780441013593", first.ISBNValue())
	assert.Equal(t, "Dune (Copy #2)", second.DisplayTitle())
	assert.Equal(t, "Dune", first.DisplayTitle())
}

/*
TestAddBook_DeletedCopyLeavesGap covers the documented gap: with copies 1 and 2
of one ISBN, trashing copy 1 and adding another copy yields number 3.
*/
func TestAddBook_DeletedCopyLeavesGap(t *testing.T) {
	service, db := newService(t)

	a := addBook(t, service, "A", "111")
	b := addBook(t, service, "B", "111")
	require.Equal(t, 1, a.CopyNumber)
	require.Equal(t, 2, b.CopyNumber)

	trash(t, db, a.ID)

	c := addBook(t, service, "C", "111")
	assert.Equal(t, 3, c.CopyNumber)

	next, err := service.NextCopyNumber(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, 4, next)
}

func TestAddBook_Validation(t *testing.T) {
	service, _ := newService(t)

	_, err := service.AddBook(context.Background(), catalog.BookInput{
		Title:           "",
		Author:          "Someone",
		Pages:           pointer.To(-1),
		AcquisitionDate: "31/12/2024",
	})

	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, apperr.CodeValidation, appError.Code)

	fields := map[string]bool{}
	for _, detail := range appError.Details {
		fields[detail.Field] = true
	}
	assert.True(t, fields[catalog.FieldTitle])
	assert.True(t, fields[catalog.FieldPages])
	assert.True(t, fields[catalog.FieldAcquisitionDate])
}

func TestAddBook_NormalizesLabels(t *testing.T) {
	service, _ := newService(t)

	book, err := service.AddBook(context.Background(), catalog.BookInput{
		Title:      "Dune",
		Author:     "Frank Herbert",
		Categories: " Fiction,fiction , Sci-Fi,",
		Tags:       "favorite",
	})
	require.NoError(t, err)
	assert.Equal(t, "Fiction, Sci-Fi", book.Categories)

	_, err = service.AddBook(context.Background(), catalog.BookInput{Title: "Emma", Author: "Jane Austen", Categories: "Classics, FICTION"})
	require.NoError(t, err)

	categories, err := service.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Classics", "Fiction", "Sci-Fi"}, categories)

	tags, err := service.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"favorite"}, tags)
}

func TestEditBook_ISBNChangeTakesNextNumber(t *testing.T) {
	service, _ := newService(t)

	addBook(t, service, "Dune", "111")
	moved := addBook(t, service, "Emma", "222")
	require.Equal(t, 1, moved.CopyNumber)

	edited, err := service.EditBook(context.Background(), moved.ID, catalog.BookInput{Title: "Dune", Author: "Author", ISBN: "111"})
	require.NoError(t, err)
	assert.Equal(t, 2, edited.CopyNumber)

	// Editing other fields keeps the number
	edited, err = service.EditBook(context.Background(), moved.ID, catalog.BookInput{Title: "Dune (paperback)", Author: "Author", ISBN: "111"})
	require.NoError(t, err)
	assert.Equal(t, 2, edited.CopyNumber)

	stored, err := service.GetBook(context.Background(), moved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune (paperback)", stored.Title)
	assert.Equal(t, 2, stored.CopyNumber)
}

func TestEditBook_ISBNMoveKeepsIdOrder(t *testing.T) {
	service, db := newService(t)
	ctx := context.Background()

	first := addBook(t, service, "Dune", "111")
	second := addBook(t, service, "Dune", "111")

	edited, err := service.EditBook(ctx, first.ID, catalog.BookInput{Title: "Dune", Author: "Author", ISBN: "222"})
	require.NoError(t, err)
	assert.Equal(t, 1, edited.CopyNumber)

	stayed, err := service.GetBook(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stayed.CopyNumber)

	// Back home, the older book takes its old place ahead of the newer one
	edited, err = service.EditBook(ctx, first.ID, catalog.BookInput{Title: "Dune", Author: "Author", ISBN: "111"})
	require.NoError(t, err)
	assert.Equal(t, 1, edited.CopyNumber)

	groups := liveGroups(t, db)
	assert.Equal(t, []int{1, 2}, groups["111"])
	assert.Empty(t, groups["222"])
	assertContiguous(t, groups)
}

func TestEditBook_ISBNMoveOfDeletedBookLeavesLiveGroups(t *testing.T) {
	service, db := newService(t)
	ctx := context.Background()

	gone := addBook(t, service, "Dune", "111")
	addBook(t, service, "Dune", "111")
	addBook(t, service, "Emma", "222")
	trash(t, db, gone.ID)

	_, err := service.EditBook(ctx, gone.ID, catalog.BookInput{Title: "Dune", Author: "Author", ISBN: "222"})
	require.NoError(t, err)

	groups := liveGroups(t, db)
	assert.Equal(t, []int{2}, groups["111"])
	assert.Equal(t, []int{1}, groups["222"])
}

func TestEditBook_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	service, _ := newService(t)
	book := addBook(t, service, "Dune", "111")

	_, err := service.EditBook(context.Background(), book.ID, catalog.BookInput{Title: "Dune", Author: "Author", ISBN: "111"})
	require.NoError(t, err)

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Contains(t, names, "catalog.AddBook")
	assert.Contains(t, names, "catalog.EditBook")
}

func TestEditBook_NotFound(t *testing.T) {
	service, _ := newService(t)

	_, err := service.EditBook(context.Background(), 42, catalog.BookInput{Title: "X", Author: "Y"})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestGetBook_DeletedStillAddressable(t *testing.T) {
	service, db := newService(t)
	book := addBook(t, service, "Dune", "111")
	trash(t, db, book.ID)

	stored, err := service.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.True(t, stored.Deleted)

	_, err = service.GetBook(context.Background(), 999)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestListBooks_FiltersAndExcludesDeleted(t *testing.T) {
	service, db := newService(t)
	ctx := context.Background()

	_, err := service.AddBook(ctx, catalog.BookInput{Title: "Emma", Author: "Jane Austen", Categories: "Classics"})
	require.NoError(t, err)
	_, err = service.AddBook(ctx, catalog.BookInput{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", Tags: "space"})
	require.NoError(t, err)
	gone := addBook(t, service, "Anathem", "")
	trash(t, db, gone.ID)

	books, total, err := service.ListBooks(ctx, catalog.Filter{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Emma", books[1].Title)

	books, _, err = service.ListBooks(ctx, catalog.Filter{Query: "AUSTEN"}, 20, 0)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Emma", books[0].Title)

	books, _, err = service.ListBooks(ctx, catalog.Filter{Query: "0441"}, 20, 0)
	require.NoError(t, err)
	require.Len(t, books, 1)

	books, _, err = service.ListBooks(ctx, catalog.Filter{Category: "classics"}, 20, 0)
	require.NoError(t, err)
	require.Len(t, books, 1)

	books, _, err = service.ListBooks(ctx, catalog.Filter{Tag: "space"}, 20, 0)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)

	books, total, err = service.ListBooks(ctx, catalog.Filter{}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, books, 1)
	assert.Equal(t, "Emma", books[0].Title)
}

func TestListBooks_LabelFiltersMatchWholeLabels(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	for _, input := range []catalog.BookInput{
		{Title: "Dune", Author: "Frank Herbert", Categories: "Sci-Fi", Tags: "space"},
		{Title: "Emma", Author: "Jane Austen", Categories: "Classics, Romance", Tags: "100%"},
		{Title: "Ulysses", Author: "James Joyce", Categories: "Fiction", Tags: "to_read"},
	} {
		_, err := service.AddBook(ctx, input)
		require.NoError(t, err)
	}

	titles := func(filter catalog.Filter) []string {
		books, _, err := service.ListBooks(ctx, filter, 20, 0)
		require.NoError(t, err)
		var out []string
		for _, book := range books {
			out = append(out, book.Title)
		}
		return out
	}

	assert.Empty(t, titles(catalog.Filter{Category: "fi"}))
	assert.Equal(t, []string{"Dune"}, titles(catalog.Filter{Category: "sci-fi"}))
	assert.Equal(t, []string{"Emma"}, titles(catalog.Filter{Category: "ROMANCE"}))
	assert.Equal(t, []string{"Emma"}, titles(catalog.Filter{Category: "classics"}))
	assert.Equal(t, []string{"Ulysses"}, titles(catalog.Filter{Category: "Fiction"}))

	// Wildcards in the filter match only themselves
	assert.Empty(t, titles(catalog.Filter{Tag: "%"}))
	assert.Empty(t, titles(catalog.Filter{Tag: "to_rea_"}))
	assert.Equal(t, []string{"Emma"}, titles(catalog.Filter{Tag: "100%"}))
	assert.Equal(t, []string{"Ulysses"}, titles(catalog.Filter{Tag: "to_read"}))
	assert.Empty(t, titles(catalog.Filter{Query: "J_mes"}))
	assert.Equal(t, []string{"Ulysses"}, titles(catalog.Filter{Query: "james"}))
}

func TestFindByISBN_ExactLiveCopies(t *testing.T) {
	service, db := newService(t)

	first := addBook(t, service, "Dune", "111")
	second := addBook(t, service, "Dune", "111")
	addBook(t, service, "Other", "1111")
	trash(t, db, first.ID)

	books, err := service.FindByISBN(context.Background(), "111")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, second.ID, books[0].ID)
}
