// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/taibuivan/librarium/internal/platform/database/schema"
	"github.com/taibuivan/librarium/internal/platform/validate"
	"github.com/taibuivan/librarium/pkg/dateonly"
	"github.com/taibuivan/librarium/pkg/isbn"
	"github.com/taibuivan/librarium/pkg/labels"
	"github.com/taibuivan/librarium/pkg/pointer"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
	tracer trace.Tracer
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("github.com/taibuivan/librarium/internal/catalog"),
	}
}

// AddBook validates input and stores a new copy with the next copy number of its ISBN.
func (service *Service) AddBook(ctx context.Context, input BookInput) (*Book, error) {
	ctx, span := service.tracer.Start(ctx, "catalog.AddBook")
	defer span.End()

	book, err := service.bookFromInput(input)
	if err != nil {
		return nil, err
	}

	if err := service.repo.CreateBook(ctx, book); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("book.id", book.ID), attribute.Int("book.copy_number", book.CopyNumber))
	service.logger.Info("book_created",
		slog.Int64("book_id", book.ID),
		slog.String("isbn", book.ISBNValue()),
		slog.Int("copy_number", book.CopyNumber),
	)
	return book, nil
}

// EditBook replaces the editable fields of a book.
func (service *Service) EditBook(ctx context.Context, id int64, input BookInput) (*Book, error) {
	ctx, span := service.tracer.Start(ctx, "catalog.EditBook")
	defer span.End()
	span.SetAttributes(attribute.Int64("book.id", id))

	book, err := service.bookFromInput(input)
	if err != nil {
		return nil, err
	}
	book.ID = id

	if err := service.repo.UpdateBook(ctx, book); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("book.copy_number", book.CopyNumber))

	service.logger.Info("book_updated", slog.Int64("book_id", id), slog.Int("copy_number", book.CopyNumber))
	return book, nil
}

func (service *Service) GetBook(ctx context.Context, id int64) (*Book, error) {
	return service.repo.GetBook(ctx, id)
}

func (service *Service) ListBooks(ctx context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	return service.repo.ListBooks(ctx, filter, limit, offset)
}

// FindByISBN lists the live copies sharing isbn, ordered by copy number.
func (service *Service) FindByISBN(ctx context.Context, value string) ([]*Book, error) {
	return service.repo.FindByISBN(ctx, isbn.Normalize(value))
}

// NextCopyNumber reports the number the next copy of isbn would receive.
func (service *Service) NextCopyNumber(ctx context.Context, value string) (int, error) {
	return service.repo.NextCopyNumber(ctx, isbn.Normalize(value))
}

// RenumberCopies compacts every ISBN group to 1..N in id order.
func (service *Service) RenumberCopies(ctx context.Context) (RenumberReport, error) {
	ctx, span := service.tracer.Start(ctx, "catalog.RenumberCopies")
	defer span.End()

	report, err := service.repo.RenumberAll(ctx)
	if err != nil {
		return report, err
	}

	span.SetAttributes(attribute.Int("renumber.groups", report.Groups), attribute.Int("renumber.updated", report.Updated))
	service.logger.Info("copy_numbers_renumbered",
		slog.Int("groups", report.Groups),
		slog.Int("updated", report.Updated),
	)
	return report, nil
}

// Categories lists the distinct categories of live books.
func (service *Service) Categories(ctx context.Context) ([]string, error) {
	rows, err := service.repo.LabelColumn(ctx, schema.Books.Categories)
	if err != nil {
		return nil, err
	}
	return labels.Collect(rows), nil
}

// Tags lists the distinct tags of live books.
func (service *Service) Tags(ctx context.Context) ([]string, error) {
	rows, err := service.repo.LabelColumn(ctx, schema.Books.Tags)
	if err != nil {
		return nil, err
	}
	return labels.Collect(rows), nil
}

// bookFromInput validates and normalizes user input.
func (service *Service) bookFromInput(input BookInput) (*Book, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Author = strings.TrimSpace(input.Author)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, maxTitleLen)
	validator.Required(FieldAuthor, input.Author).MaxLen(FieldAuthor, input.Author, maxAuthorLen)
	validator.MaxLen(FieldISBN, input.ISBN, maxISBNLen)
	validator.MaxLen(FieldPublicationDate, input.PublicationDate, maxPubDateLen)
	validator.NonNegative(FieldPages, input.Pages).NonNegative(FieldChapters, input.Chapters)
	validator.Date(FieldAcquisitionDate, input.AcquisitionDate)
	validator.MaxLen(FieldCategories, input.Categories, maxLabelsLen).MaxLen(FieldTags, input.Tags, maxLabelsLen)
	validator.MaxLen("notes", input.Notes, maxNotesLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	acquired, _ := dateonly.ParseOptional(input.AcquisitionDate)

	return &Book{
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            pointer.NonEmpty(isbn.Normalize(input.ISBN)),
		PublicationDate: pointer.NonEmpty(input.PublicationDate),
		Pages:           input.Pages,
		Chapters:        input.Chapters,
		AcquisitionDate: acquired,
		Categories:      labels.Canonical(input.Categories),
		Tags:            labels.Canonical(input.Tags),
		Notes:           strings.TrimSpace(input.Notes),
	}, nil
}
