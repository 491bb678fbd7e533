// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metadata_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librarium/internal/metadata"
	"github.com/taibuivan/librarium/internal/platform/database/dbtest"
	"github.com/taibuivan/librarium/pkg/pointer"
)

type fakeSource struct {
	name     string
	priority int
	record   *metadata.Record
	results  []metadata.Record
	err      error
	calls    int
}

func (source *fakeSource) Name() string  { return source.name }
func (source *fakeSource) Priority() int { return source.priority }

func (source *fakeSource) LookupISBN(ctx context.Context, isbn string) (*metadata.Record, error) {
	source.calls++
	return source.record, source.err
}

func (source *fakeSource) Search(ctx context.Context, title, author string, limit int) ([]metadata.Record, error) {
	return source.results, source.err
}

/*
TestReconciler_MergesByPriority checks that each field comes from the highest
priority source that has it and that categories are unioned.
*/
func TestReconciler_MergesByPriority(t *testing.T) {
	primary := &fakeSource{name: "primary", priority: 10, record: &metadata.Record{
		Title:      "Dune",
		Categories: []string{"Fiction"},
	}}
	secondary := &fakeSource{name: "secondary", priority: 20, record: &metadata.Record{
		Title:           "Dune (Deluxe)",
		Author:          "Frank Herbert",
		PublicationDate: "1965",
		Pages:           pointer.To(412),
		Categories:      []string{"fiction", "Classics"},
	}}

	// Registration order must not matter
	reconciler := metadata.NewReconciler(dbtest.Logger(), secondary, primary)
	record, err := reconciler.LookupISBN(context.Background(), "978-0-441-01359-3")
	require.NoError(t, err)

	assert.Equal(t, "Dune", record.Title)
	assert.Equal(t, "Frank Herbert", record.Author)
	assert.Equal(t, "1965", record.PublicationDate)
	assert.Equal(t, 412, *record.Pages)
	assert.Equal(t, []string{"Fiction", "Classics"}, record.Categories)
	assert.Equal(t, "9780441013593", record.ISBN)
	assert.Equal(t, []string{"primary", "secondary"}, record.Sources)
}

func TestReconciler_SkipsFailingSource(t *testing.T) {
	broken := &fakeSource{name: "broken", priority: 1, err: errors.New("timeout")}
	working := &fakeSource{name: "working", priority: 2, record: &metadata.Record{Title: "Emma", Author: "Jane Austen"}}

	record, err := metadata.NewReconciler(dbtest.Logger(), broken, working).LookupISBN(context.Background(), "0141439580")
	require.NoError(t, err)
	assert.Equal(t, "Emma", record.Title)
	assert.False(t, record.IsEmpty())
}

func TestReconciler_EmptyWhenNobodyKnows(t *testing.T) {
	none := &fakeSource{name: "none", priority: 1}
	broken := &fakeSource{name: "broken", priority: 2, err: errors.New("boom")}

	record, err := metadata.NewReconciler(dbtest.Logger(), none, broken).LookupISBN(context.Background(), "0141439580")
	require.NoError(t, err)
	assert.True(t, record.IsEmpty())
}

func TestReconciler_SearchDeduplicates(t *testing.T) {
	first := &fakeSource{name: "first", priority: 1, results: []metadata.Record{
		{Title: "Dune", Author: "Frank Herbert"},
	}}
	second := &fakeSource{name: "second", priority: 2, results: []metadata.Record{
		{Title: "DUNE", Author: "frank herbert"},
		{Title: "Dune Messiah", Author: "Frank Herbert"},
	}}

	records, err := metadata.NewReconciler(dbtest.Logger(), first, second).Search(context.Background(), "Dune", "", 5)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"first"}, records[0].Sources)
	assert.Equal(t, "Dune Messiah", records[1].Title)
}

type memoryCache struct {
	values map[string][]byte
	err    error
}

func (cache *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if cache.err != nil {
		return nil, false, cache.err
	}
	value, ok := cache.values[key]
	return value, ok, nil
}

func (cache *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if cache.err != nil {
		return cache.err
	}
	cache.values[key] = value
	return nil
}

func TestCachedLookup_HitsCacheOnSecondCall(t *testing.T) {
	source := &fakeSource{name: "s", priority: 1, record: &metadata.Record{Title: "Emma", Author: "Jane Austen"}}
	cache := &memoryCache{values: map[string][]byte{}}
	lookup := metadata.NewCachedLookup(metadata.NewReconciler(dbtest.Logger(), source), cache, time.Hour, dbtest.Logger())

	first, err := lookup.LookupISBN(context.Background(), "0-14-143958-0")
	require.NoError(t, err)
	second, err := lookup.LookupISBN(context.Background(), "0141439580")
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, first.Title, second.Title)
	assert.Contains(t, cache.values, "metadata:isbn:0141439580")
}

func TestCachedLookup_FallsThroughOnCacheFailure(t *testing.T) {
	source := &fakeSource{name: "s", priority: 1, record: &metadata.Record{Title: "Emma"}}
	cache := &memoryCache{values: map[string][]byte{}, err: errors.New("redis down")}
	lookup := metadata.NewCachedLookup(metadata.NewReconciler(dbtest.Logger(), source), cache, time.Hour, dbtest.Logger())

	record, err := lookup.LookupISBN(context.Background(), "0141439580")
	require.NoError(t, err)
	assert.Equal(t, "Emma", record.Title)
}

func TestCachedLookup_DoesNotCacheMisses(t *testing.T) {
	source := &fakeSource{name: "s", priority: 1}
	cache := &memoryCache{values: map[string][]byte{}}
	lookup := metadata.NewCachedLookup(metadata.NewReconciler(dbtest.Logger(), source), cache, time.Hour, dbtest.Logger())

	record, err := lookup.LookupISBN(context.Background(), "0141439580")
	require.NoError(t, err)
	assert.True(t, record.IsEmpty())
	assert.Empty(t, cache.values)
}
