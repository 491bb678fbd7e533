// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package trash

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/taibuivan/librarium/internal/platform/apperr"
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
		tracer: otel.Tracer("github.com/taibuivan/librarium/internal/trash"),
	}
}

// DeleteBook trashes a book and its present lendings as one delete event.
// A book already in the trash is refused so its batch is never overwritten.
func (service *Service) DeleteBook(ctx context.Context, id int64) (DeleteReport, error) {
	ctx, span := service.tracer.Start(ctx, "trash.DeleteBook")
	defer span.End()

	batch, err := uuid.NewV7()
	if err != nil {
		return DeleteReport{}, apperr.Internal(err)
	}

	report := DeleteReport{BookID: id, Batch: batch.String()}
	report.Lendings, err = service.repo.TrashBook(ctx, id, time.Now().UTC(), report.Batch)
	if err != nil {
		return DeleteReport{}, err
	}

	span.SetAttributes(attribute.Int64("book.id", id), attribute.Int("trash.lendings", report.Lendings))
	service.logger.Info("book_trashed",
		slog.Int64("book_id", id),
		slog.String("delete_batch", report.Batch),
		slog.Int("lendings", report.Lendings),
	)
	return report, nil
}

// RestoreBook takes a book out of the trash with the lendings of its delete event.
func (service *Service) RestoreBook(ctx context.Context, id int64) (RestoreReport, error) {
	ctx, span := service.tracer.Start(ctx, "trash.RestoreBook")
	defer span.End()

	report, err := service.repo.RestoreBook(ctx, id)
	if err != nil {
		return report, err
	}

	span.SetAttributes(attribute.Int64("book.id", id), attribute.Int("trash.lendings", report.Lendings))
	service.logger.Info("book_restored",
		slog.Int64("book_id", id),
		slog.Int("lendings", report.Lendings),
		slog.Int("copy_number", report.CopyNumber),
		slog.Bool("renumbered", report.Renumbered),
	)
	return report, nil
}

// ListTrash returns the trashed books and lendings.
func (service *Service) ListTrash(ctx context.Context) (*Listing, error) {
	books, err := service.repo.TrashedBooks(ctx)
	if err != nil {
		return nil, err
	}
	lendings, err := service.repo.TrashedLendings(ctx)
	if err != nil {
		return nil, err
	}
	return &Listing{Books: books, Lendings: lendings}, nil
}
