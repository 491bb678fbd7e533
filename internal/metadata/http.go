// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metadata

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/librarium/internal/platform/apperr"
	requestutil "github.com/taibuivan/librarium/internal/platform/request"
	"github.com/taibuivan/librarium/internal/platform/respond"
	"github.com/taibuivan/librarium/internal/platform/validate"
)

// Searcher finds candidate editions by title and author.
type Searcher interface {
	Search(ctx context.Context, title, author string, limit int) ([]Record, error)
}

type Handler struct {
	lookup   Lookup
	searcher Searcher
}

func NewHandler(lookup Lookup, searcher Searcher) *Handler {
	return &Handler{lookup: lookup, searcher: searcher}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/metadata/isbn/{isbn}", handler.lookupISBN)
	router.Post("/metadata/search", handler.search)
}

func (handler *Handler) lookupISBN(writer http.ResponseWriter, request *http.Request) {
	value := requestutil.Param(request, "isbn")

	validator := &validate.Validator{}
	validator.Required("isbn", value).ISBN("isbn", value)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.lookup.LookupISBN(request.Context(), value)
	if err != nil {
		respond.Error(writer, request, apperr.ServiceUnavailable("Metadata lookup is unavailable"))
		return
	}
	if record.IsEmpty() {
		respond.Error(writer, request, apperr.NotFound("Book metadata"))
		return
	}
	respond.OK(writer, record)
}

type searchRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	var input searchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input.Title = strings.TrimSpace(input.Title)
	validator := &validate.Validator{}
	validator.Required("title", input.Title)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	records, err := handler.searcher.Search(request.Context(), input.Title, input.Author, SearchLimit)
	if err != nil {
		respond.Error(writer, request, apperr.ServiceUnavailable("Metadata search is unavailable"))
		return
	}
	if records == nil {
		records = []Record{}
	}
	respond.OK(writer, records)
}
