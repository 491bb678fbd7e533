// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package readinglist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/librarium/internal/platform/request"
	"github.com/taibuivan/librarium/internal/platform/respond"
	"github.com/taibuivan/librarium/pkg/dateonly"
	querystring "github.com/taibuivan/librarium/pkg/query"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/reading-list", func(r chi.Router) {
		r.Get("/", handler.list)
		r.Post("/", handler.add)
		r.Get("/years", handler.years)
		r.Get("/available", handler.available)
		r.Post("/reorder", handler.reorder)
		r.Post("/{id}/complete", handler.complete)
		r.Post("/{id}/unmark", handler.unmark)
		r.Patch("/{id}/added-date", handler.editAddedDate)
		r.Patch("/{id}/read-date", handler.editReadDate)
		r.Delete("/{id}", handler.remove)
	})
}

// entryResponse adds the display title to an entry.
type entryResponse struct {
	*Entry
	DisplayTitle string `json:"display_title"`
}

type listingResponse struct {
	*Listing
	Entries []entryResponse `json:"entries"`
}

// yearFromRequest selects the current year when the parameter is absent and all
// years when it is present but not a number.
func yearFromRequest(request *http.Request) *int {
	query := request.URL.Query()
	if !query.Has("year") {
		year := dateonly.Today().Year()
		return &year
	}
	year, err := querystring.OptionalInt(query, "year")
	if err != nil {
		return nil
	}
	return year
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	listing, err := handler.service.List(request.Context(), yearFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries := make([]entryResponse, 0, len(listing.Entries))
	for _, entry := range listing.Entries {
		entries = append(entries, entryResponse{Entry: entry, DisplayTitle: entry.DisplayTitle()})
	}
	respond.OK(writer, listingResponse{Listing: listing, Entries: entries})
}

func (handler *Handler) add(writer http.ResponseWriter, request *http.Request) {
	var input AddInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.Add(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, item)
}

func (handler *Handler) years(writer http.ResponseWriter, request *http.Request) {
	years, err := handler.service.Years(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, years)
}

func (handler *Handler) available(writer http.ResponseWriter, request *http.Request) {
	books, err := handler.service.AvailableBooks(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, books)
}

type reorderRequest struct {
	Items []OrderUpdate `json:"items"`
}

func (handler *Handler) reorder(writer http.ResponseWriter, request *http.Request) {
	var input reorderRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	changed, err := handler.service.Reorder(request.Context(), input.Items)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]int{"changed": changed})
}

// itemAction handles the routes that act on one item and return it.
func (handler *Handler) itemAction(writer http.ResponseWriter, request *http.Request, act func(id int64) (*Item, error)) {
	itemID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := act(itemID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

func (handler *Handler) complete(writer http.ResponseWriter, request *http.Request) {
	handler.itemAction(writer, request, func(id int64) (*Item, error) {
		return handler.service.Complete(request.Context(), id)
	})
}

func (handler *Handler) unmark(writer http.ResponseWriter, request *http.Request) {
	handler.itemAction(writer, request, func(id int64) (*Item, error) {
		return handler.service.Unmark(request.Context(), id)
	})
}

func (handler *Handler) editAddedDate(writer http.ResponseWriter, request *http.Request) {
	var date Date
	if err := requestutil.DecodeJSON(request, &date); err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.itemAction(writer, request, func(id int64) (*Item, error) {
		return handler.service.EditAddedDate(request.Context(), id, date)
	})
}

func (handler *Handler) editReadDate(writer http.ResponseWriter, request *http.Request) {
	var date Date
	if err := requestutil.DecodeJSON(request, &date); err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.itemAction(writer, request, func(id int64) (*Item, error) {
		return handler.service.EditCompletedDate(request.Context(), id, date)
	})
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	itemID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Remove(request.Context(), itemID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
