// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/taibuivan/librarium/internal/platform/apperr"
)

// exportBatch is how many rows the CSV export reads at a time.
const exportBatch = 500

var csvHeader = []string{"Timestamp", "Method", "Endpoint", "Status", "Response Time", "IP", "User Agent"}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (service *Service) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return service.repo.List(ctx, limit, offset)
}

func (service *Service) Counts(ctx context.Context) (Counts, error) {
	return service.repo.Counts(ctx)
}

// ExportCSV writes every entry, newest first.
func (service *Service) ExportCSV(ctx context.Context, output io.Writer) error {
	writer := csv.NewWriter(output)
	if err := writer.Write(csvHeader); err != nil {
		return apperr.Internal(err)
	}

	for offset := 0; ; offset += exportBatch {
		entries, _, err := service.repo.List(ctx, exportBatch, offset)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			record := []string{
				entry.Timestamp.UTC().Format("2006-01-02 15:04:05"),
				entry.Method,
				entry.Endpoint,
				strconv.Itoa(entry.StatusCode),
				fmt.Sprintf("%.2fs", entry.ResponseTime),
				entry.IPAddress,
				entry.UserAgent,
			}
			if err := writer.Write(record); err != nil {
				return apperr.Internal(err)
			}
		}
		if len(entries) < exportBatch {
			break
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
