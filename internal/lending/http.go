// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lending

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/librarium/internal/platform/request"
	"github.com/taibuivan/librarium/internal/platform/respond"
	"github.com/taibuivan/librarium/internal/platform/validate"
	"github.com/taibuivan/librarium/pkg/dateonly"
	"github.com/taibuivan/librarium/pkg/pagination"
	querystring "github.com/taibuivan/librarium/pkg/query"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/books/{id}/lending", handler.bookHistory)
	router.Get("/books/{id}/lending/active", handler.activeForBook)
	router.Post("/books/{id}/lending", handler.createLending)

	router.Get("/lendings", handler.listLendings)
	router.Get("/lendings/active", handler.listActive)
	router.Get("/lendings/{id}", handler.getLending)
	router.Post("/lendings/{id}/return", handler.markReturned)
	router.Delete("/lendings/{id}", handler.deleteLending)
}

// RegisterAdminRoutes mounts the trash routes for lendings on the admin sub-router.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/trash/lendings/{id}/restore", handler.restoreLending)
}

// viewResponse adds the display title to a joined lending.
type viewResponse struct {
	*View
	DisplayTitle string `json:"display_title"`
	Overdue      bool   `json:"overdue"`
}

func presentViews(views []*View) []viewResponse {
	today := dateonly.Today()
	out := make([]viewResponse, 0, len(views))
	for _, view := range views {
		out = append(out, viewResponse{
			View:         view,
			DisplayTitle: view.DisplayTitle(),
			Overdue:      view.IsOverdue(today),
		})
	}
	return out
}

// filterFromRequest reads the listing filters shared by both history routes.
func filterFromRequest(request *http.Request) (Filter, error) {
	query := request.URL.Query()
	filter := Filter{
		Title:    querystring.Text(query, "title"),
		Borrower: querystring.Text(query, "borrower"),
		Status:   querystring.Text(query, "status"),
	}

	validator := &validate.Validator{}
	validator.Date("date_from", query.Get("date_from")).Date("date_to", query.Get("date_to"))
	if err := validator.Err(); err != nil {
		return filter, err
	}

	filter.DateFrom, _ = dateonly.ParseOptional(query.Get("date_from"))
	filter.DateTo, _ = dateonly.ParseOptional(query.Get("date_to"))
	return filter, nil
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request, filter Filter) {
	paginationParams := pagination.FromRequest(request)

	views, total, err := handler.service.ListLendings(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, presentViews(views), pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) listLendings(writer http.ResponseWriter, request *http.Request) {
	filter, err := filterFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.list(writer, request, filter)
}

func (handler *Handler) bookHistory(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter, err := filterFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	filter.BookID = &bookID
	handler.list(writer, request, filter)
}

func (handler *Handler) activeForBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lending, err := handler.service.ActiveLending(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lending)
}

func (handler *Handler) createLending(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	lending, err := handler.service.CreateLending(request.Context(), bookID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, lending)
}

func (handler *Handler) listActive(writer http.ResponseWriter, request *http.Request) {
	views, err := handler.service.ListActive(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, presentViews(views))
}

func (handler *Handler) getLending(writer http.ResponseWriter, request *http.Request) {
	lendingID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lending, err := handler.service.GetLending(request.Context(), lendingID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lending)
}

func (handler *Handler) markReturned(writer http.ResponseWriter, request *http.Request) {
	lendingID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lending, err := handler.service.MarkReturned(request.Context(), lendingID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lending)
}

func (handler *Handler) deleteLending(writer http.ResponseWriter, request *http.Request) {
	lendingID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteLending(request.Context(), lendingID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) restoreLending(writer http.ResponseWriter, request *http.Request) {
	lendingID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lending, err := handler.service.RestoreLending(request.Context(), lendingID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lending)
}
