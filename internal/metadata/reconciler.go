// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metadata

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/taibuivan/librarium/pkg/isbn"
	"github.com/taibuivan/librarium/pkg/labels"
)

// Reconciler merges the answers of several sources.
type Reconciler struct {
	sources []Source
	logger  *slog.Logger
}

// NewReconciler orders sources by priority. Sources with equal priority keep
// their given order.
func NewReconciler(logger *slog.Logger, sources ...Source) *Reconciler {
	ordered := append([]Source(nil), sources...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})
	return &Reconciler{sources: ordered, logger: logger}
}

// LookupISBN asks every source in parallel and merges the results. A source that
// fails is logged and skipped. The returned record is never nil; it is empty when
// no source knew the ISBN.
func (reconciler *Reconciler) LookupISBN(ctx context.Context, value string) (*Record, error) {
	normalized := isbn.Normalize(value)
	results := make([]*Record, len(reconciler.sources))

	var wg sync.WaitGroup
	for index, source := range reconciler.sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record, err := source.LookupISBN(ctx, normalized)
			if err != nil {
				reconciler.logger.Warn("metadata_source_failed",
					slog.String("source", source.Name()),
					slog.String("isbn", normalized),
					slog.String("error", err.Error()),
				)
				return
			}
			results[index] = record
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := merge(results, reconciler.sources)
	merged.ISBN = normalized
	return merged, nil
}

// Search returns up to limit distinct candidates, higher priority sources first.
func (reconciler *Reconciler) Search(ctx context.Context, title, author string, limit int) ([]Record, error) {
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}

	seen := make(map[string]struct{})
	var out []Record
	for _, source := range reconciler.sources {
		records, err := source.Search(ctx, title, author, limit)
		if err != nil {
			reconciler.logger.Warn("metadata_source_failed",
				slog.String("source", source.Name()),
				slog.String("title", title),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, record := range records {
			key := labels.Key(record.Title) + "|" + labels.Key(record.Author)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			record.ISBN = isbn.Normalize(record.ISBN)
			record.Sources = []string{source.Name()}
			out = append(out, record)
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, ctx.Err()
}

// merge takes each scalar field from the first record that has it and unions the
// categories. results and sources are parallel and already in priority order.
func merge(results []*Record, sources []Source) *Record {
	merged := &Record{}
	var categories []string

	for index, record := range results {
		if record == nil || record.IsEmpty() {
			continue
		}
		merged.Sources = append(merged.Sources, sources[index].Name())

		if merged.Title == "" {
			merged.Title = record.Title
		}
		if merged.Author == "" {
			merged.Author = record.Author
		}
		if merged.PublicationDate == "" {
			merged.PublicationDate = record.PublicationDate
		}
		if merged.Pages == nil {
			merged.Pages = record.Pages
		}
		if merged.Description == "" {
			merged.Description = record.Description
		}
		categories = append(categories, record.Categories...)
	}

	merged.Categories = labels.Dedupe(categories)
	return merged
}
