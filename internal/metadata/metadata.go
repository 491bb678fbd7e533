// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metadata looks up bibliographic data for a book from external sources.

Every source implements [Source]. A [Reconciler] asks all of them and merges the
answers field by field, preferring sources with a lower priority value. Any field
may stay absent; an entirely empty record means the lookup failed, which callers
report to the user instead of creating a book.

Lookups never run inside a catalog transaction.
*/
package metadata

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one call to one source.
const DefaultTimeout = 15 * time.Second

// SearchLimit caps the candidates returned by a title/author search.
const SearchLimit = 5

// Record is the merged metadata for one edition.
type Record struct {
	Title           string   `json:"title,omitempty"`
	Author          string   `json:"author,omitempty"`
	ISBN            string   `json:"isbn,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
	Pages           *int     `json:"pages,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	Description     string   `json:"description,omitempty"`
	Sources         []string `json:"sources,omitempty"`
}

// IsEmpty reports whether no bibliographic field is present.
func (r *Record) IsEmpty() bool {
	return r == nil || (r.Title == "" && r.Author == "" && r.PublicationDate == "" &&
		r.Pages == nil && len(r.Categories) == 0)
}

// Source is one external metadata provider.
type Source interface {
	// Name identifies the source in logs and in Record.Sources.
	Name() string

	// Priority orders sources when merging; lower values win.
	Priority() int

	// LookupISBN returns nil, nil when the source does not know the ISBN.
	LookupISBN(ctx context.Context, isbn string) (*Record, error)

	// Search finds up to limit candidate editions by title and optional author.
	Search(ctx context.Context, title, author string, limit int) ([]Record, error)
}

// Lookup is the read side used by the catalog.
type Lookup interface {
	LookupISBN(ctx context.Context, isbn string) (*Record, error)
}

// newHTTPClient returns the client shared by the HTTP sources.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// truncateDescription keeps search results short.
func truncateDescription(description string) string {
	description = strings.TrimSpace(description)
	const max = 200
	if len([]rune(description)) <= max {
		return description
	}
	return string([]rune(description)[:max]) + "..."
}
