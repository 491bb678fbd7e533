// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestlog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/librarium/internal/platform/constants"
	"github.com/taibuivan/librarium/internal/platform/ctxutil"
	"github.com/taibuivan/librarium/internal/platform/respond"
	"github.com/taibuivan/librarium/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/logs", handler.list)
	router.Get("/logs/export", handler.export)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	entries, total, err := handler.service.List(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}

// export streams the CSV. Once the header is written an error can only be logged.
func (handler *Handler) export(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set("Content-Type", "text/csv; charset=utf-8")
	writer.Header().Set(constants.HeaderContentDisposition, "attachment; filename=logs.csv")

	if err := handler.service.ExportCSV(request.Context(), writer); err != nil {
		ctxutil.GetLogger(request.Context()).Error("request_log_export_failed", slog.Any("error", err))
	}
}
