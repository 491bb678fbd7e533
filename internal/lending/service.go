// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lending

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/taibuivan/librarium/internal/platform/apperr"
	"github.com/taibuivan/librarium/internal/platform/validate"
	"github.com/taibuivan/librarium/pkg/dateonly"
)

// relentPrefix is prepended to the notes of a same-borrower re-lending.
const relentPrefix = "Re-lent by %s. "

type Service struct {
	repo   Repository
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("github.com/taibuivan/librarium/internal/lending"),
		now:    time.Now,
	}
}

// CreateLending records that bookID was lent according to input.
//
// The book must exist and not be trashed. While another borrower has it the
// request fails with ALREADY_LENT_TO_OTHER; the same borrower may borrow it again.
func (service *Service) CreateLending(ctx context.Context, bookID int64, input Input) (*Lending, error) {
	ctx, span := service.tracer.Start(ctx, "lending.CreateLending")
	defer span.End()

	lending, err := lendingFromInput(bookID, input)
	if err != nil {
		return nil, err
	}

	relent := false
	err = service.repo.Create(ctx, lending, func(check Check, lending *Lending) error {
		if check.Book.Deleted {
			return apperr.BookUnavailable(check.Book.ID)
		}
		if check.Active == nil {
			return nil
		}
		if check.Active.BorrowerName != lending.BorrowerName {
			return apperr.AlreadyLentToOther(check.Active.BorrowerName)
		}
		lending.Notes = fmt.Sprintf(relentPrefix, lending.BorrowerName) + lending.Notes
		relent = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("lending.id", lending.ID), attribute.Bool("lending.relent", relent))
	service.logger.Info("lending_created",
		slog.Int64("lending_id", lending.ID),
		slog.Int64("book_id", bookID),
		slog.Bool("relent", relent),
	)
	return lending, nil
}

// MarkReturned sets the return date to today, even when one is already set.
func (service *Service) MarkReturned(ctx context.Context, id int64) (*Lending, error) {
	if err := service.repo.SetReturnDate(ctx, id, dateonly.Of(service.now())); err != nil {
		return nil, err
	}

	service.logger.Info("lending_returned", slog.Int64("lending_id", id))
	return service.repo.Get(ctx, id)
}

// DeleteLending moves a single lending to the trash under its own delete batch,
// so restoring its book later never brings it back.
func (service *Service) DeleteLending(ctx context.Context, id int64) error {
	batch, err := uuid.NewV7()
	if err != nil {
		return apperr.Internal(err)
	}

	trashed, err := service.repo.Trash(ctx, id, service.now().UTC(), batch.String())
	if err != nil {
		return err
	}
	if !trashed {
		return apperr.AlreadyInTrash("Lending")
	}

	service.logger.Info("lending_trashed", slog.Int64("lending_id", id), slog.String("delete_batch", batch.String()))
	return nil
}

// RestoreLending takes a lending out of the trash. It refuses when its book is
// trashed, or when the lending is open and the book is now out with someone else.
func (service *Service) RestoreLending(ctx context.Context, id int64) (*Lending, error) {
	err := service.repo.Restore(ctx, id, func(check Check, target *Lending) error {
		if !target.Deleted {
			return apperr.NotInTrash("Lending")
		}
		if check.Book.Deleted {
			return apperr.BookUnavailable(check.Book.ID)
		}
		if target.IsOpen() && check.Active != nil && check.Active.BorrowerName != target.BorrowerName {
			return apperr.AlreadyLentToOther(check.Active.BorrowerName)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("lending_restored", slog.Int64("lending_id", id))
	return service.repo.Get(ctx, id)
}

// ActiveLending returns the open lending of a book, or nil.
func (service *Service) ActiveLending(ctx context.Context, bookID int64) (*Lending, error) {
	return service.repo.Active(ctx, bookID)
}

func (service *Service) GetLending(ctx context.Context, id int64) (*Lending, error) {
	return service.repo.Get(ctx, id)
}

// ListLendings returns present lendings, newest lent first.
func (service *Service) ListLendings(ctx context.Context, filter Filter, limit, offset int) ([]*View, int, error) {
	if filter.Status != "" {
		validator := &validate.Validator{}
		validator.OneOf("status", filter.Status, StatusReturned, StatusOut, StatusOverdue)
		if err := validator.Err(); err != nil {
			return nil, 0, err
		}
	}
	if filter.Today.IsZero() {
		filter.Today = dateonly.Of(service.now())
	}
	return service.repo.List(ctx, filter, limit, offset)
}

// ListActive returns every book currently out, oldest loan first.
func (service *Service) ListActive(ctx context.Context) ([]*View, error) {
	return service.repo.ListActive(ctx)
}

// lendingFromInput validates and converts user input.
func lendingFromInput(bookID int64, input Input) (*Lending, error) {
	input.BorrowerName = strings.TrimSpace(input.BorrowerName)

	validator := &validate.Validator{}
	validator.Positive("book_id", bookID)
	validator.Required(FieldBorrowerName, input.BorrowerName).MaxLen(FieldBorrowerName, input.BorrowerName, maxBorrowerLen)
	validator.Required(FieldLentDate, input.LentDate).Date(FieldLentDate, input.LentDate)
	validator.Date(FieldDueDate, input.DueDate).Date(FieldReturnDate, input.ReturnDate)
	validator.MaxLen(FieldNotes, input.Notes, maxNotesLen)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	lentDate, _ := dateonly.Parse(input.LentDate)
	dueDate, _ := dateonly.ParseOptional(input.DueDate)
	returnDate, _ := dateonly.ParseOptional(input.ReturnDate)

	if dueDate != nil && dueDate.Before(lentDate) {
		return nil, validate.FieldErr(FieldDueDate, "Must not be before the lent date")
	}

	return &Lending{
		BookID:       bookID,
		BorrowerName: input.BorrowerName,
		LentDate:     lentDate,
		DueDate:      dueDate,
		ReturnDate:   returnDate,
		Notes:        strings.TrimSpace(input.Notes),
	}, nil
}
