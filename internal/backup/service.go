// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/taibuivan/librarium/internal/platform/apperr"
	"github.com/taibuivan/librarium/internal/platform/constants"
)

type Service struct {
	repo        Repository
	snapshotter Snapshotter
	uploader    Uploader
	dir         string
	logger      *slog.Logger
	now         func() time.Time
}

// NewService stores snapshots under dir. uploader may be nil.
func NewService(repo Repository, snapshotter Snapshotter, uploader Uploader, dir string, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		snapshotter: snapshotter,
		uploader:    uploader,
		dir:         dir,
		logger:      logger,
		now:         time.Now,
	}
}

// Create snapshots the store and records the file. An upload failure leaves
// the local copy in place and is only logged.
func (service *Service) Create(ctx context.Context, notes string, scheduled bool) (*Backup, error) {
	if err := os.MkdirAll(service.dir, 0o755); err != nil {
		return nil, apperr.Internal(fmt.Errorf("backup: create directory: %w", err))
	}

	createdAt := service.now().UTC()
	filename, err := service.freeFilename(createdAt)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(service.dir, filename)

	if err := service.snapshotter.Snapshot(ctx, path); err != nil {
		return nil, apperr.Internal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("backup: stat snapshot: %w", err))
	}

	backup := &Backup{
		Filename:  filename,
		CreatedAt: createdAt,
		Size:      info.Size(),
		Scheduled: scheduled,
		Notes:     strings.TrimSpace(notes),
	}
	backup.ObjectKey = service.upload(ctx, path, filename)

	if err := service.repo.Create(ctx, backup); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	service.logger.Info("backup_created",
		slog.Int64("backup_id", backup.ID),
		slog.String("filename", backup.Filename),
		slog.Int64("size", backup.Size),
		slog.Bool("scheduled", scheduled),
	)
	return backup, nil
}

// freeFilename appends a counter when a snapshot was already taken in the same second.
func (service *Service) freeFilename(at time.Time) (string, error) {
	base := strings.TrimSuffix(Filename(at), ".db")
	for attempt := 1; attempt < 100; attempt++ {
		candidate := base + ".db"
		if attempt > 1 {
			candidate = fmt.Sprintf("%s_%d.db", base, attempt)
		}
		_, err := os.Stat(filepath.Join(service.dir, candidate))
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", apperr.Internal(fmt.Errorf("backup: check %s: %w", candidate, err))
		}
	}
	return "", apperr.Conflict("Too many backups in the same second")
}

func (service *Service) upload(ctx context.Context, path, filename string) string {
	if service.uploader == nil {
		return ""
	}

	file, err := os.Open(path)
	if err != nil {
		service.logger.Warn("backup_upload_failed", slog.String("filename", filename), slog.Any("error", err))
		return ""
	}
	defer file.Close()

	key := constants.BackupObjectPrefix + filename
	if err := service.uploader.Upload(ctx, key, file); err != nil {
		service.logger.Warn("backup_upload_failed", slog.String("filename", filename), slog.Any("error", err))
		return ""
	}
	return key
}

func (service *Service) List(ctx context.Context) ([]*Backup, error) {
	return service.repo.List(ctx)
}

// Delete removes the file, its remote copy and its record.
// A file that is already gone is not an error.
func (service *Service) Delete(ctx context.Context, id int64) error {
	backup, err := service.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := service.remove(ctx, backup); err != nil {
		return err
	}
	service.logger.Info("backup_deleted", slog.Int64("backup_id", id), slog.String("filename", backup.Filename))
	return nil
}

func (service *Service) remove(ctx context.Context, backup *Backup) error {
	if err := os.Remove(service.path(backup)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Internal(fmt.Errorf("backup: remove %s: %w", backup.Filename, err))
	}
	if backup.ObjectKey != "" && service.uploader != nil {
		if err := service.uploader.Delete(ctx, backup.ObjectKey); err != nil {
			service.logger.Warn("backup_remote_delete_failed", slog.String("object_key", backup.ObjectKey), slog.Any("error", err))
		}
	}
	return service.repo.Delete(ctx, backup.ID)
}

// Cleanup deletes every backup older than maxAge and returns how many went.
// A backup that cannot be removed is logged and skipped.
func (service *Service) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	expired, err := service.repo.CreatedBefore(ctx, service.now().UTC().Add(-maxAge))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, backup := range expired {
		if err := service.remove(ctx, backup); err != nil {
			service.logger.Warn("backup_cleanup_skipped", slog.Int64("backup_id", backup.ID), slog.Any("error", err))
			continue
		}
		removed++
	}

	service.logger.Info("backup_cleanup_finished", slog.Int("removed", removed), slog.Int("expired", len(expired)))
	return removed, nil
}

// Open returns the backup with its file opened for reading. The caller closes it.
func (service *Service) Open(ctx context.Context, id int64) (*Backup, *os.File, error) {
	backup, err := service.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(service.path(backup))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, apperr.NotFound("Backup file")
	}
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	return backup, file, nil
}

// path keeps a stored filename inside the backup directory.
func (service *Service) path(backup *Backup) string {
	return filepath.Join(service.dir, filepath.Base(backup.Filename))
}
