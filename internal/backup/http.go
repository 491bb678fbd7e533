// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backup

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/librarium/internal/platform/constants"
	requestutil "github.com/taibuivan/librarium/internal/platform/request"
	"github.com/taibuivan/librarium/internal/platform/respond"
	"github.com/taibuivan/librarium/internal/platform/validate"
	"github.com/taibuivan/librarium/pkg/pointer"
)

type Handler struct {
	service   *Service
	scheduler *Scheduler
}

func NewHandler(service *Service, scheduler *Scheduler) *Handler {
	return &Handler{service: service, scheduler: scheduler}
}

// RegisterAdminRoutes mounts backup management on the admin sub-router.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Route("/backups", func(r chi.Router) {
		r.Get("/", handler.list)
		r.Post("/", handler.create)
		r.Post("/cleanup", handler.cleanup)
		r.Get("/schedule", handler.schedule)
		r.Post("/schedule", handler.setSchedule)
		r.Delete("/schedule", handler.clearSchedule)
		r.Get("/{id}/download", handler.download)
		r.Delete("/{id}", handler.remove)
	})
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	backups, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, backups)
}

type createRequest struct {
	Notes string `json:"notes"`
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if request.ContentLength != 0 {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}
	if input.Notes == "" {
		input.Notes = "Manual backup"
	}

	backup, err := handler.service.Create(request.Context(), input.Notes, false)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, backup)
}

const day = 24 * time.Hour

type cleanupRequest struct {
	Days *int `json:"days"`
}

func (handler *Handler) cleanup(writer http.ResponseWriter, request *http.Request) {
	var input cleanupRequest
	if request.ContentLength != 0 {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	days := pointer.Fallback(input.Days, int(constants.BackupRetention/day))
	if err := (&validate.Validator{}).Range("days", days, 1, 3650).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	removed, err := handler.service.Cleanup(request.Context(), time.Duration(days)*day)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]int{"removed": removed})
}

func (handler *Handler) download(writer http.ResponseWriter, request *http.Request) {
	backupID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	backup, file, err := handler.service.Open(request.Context(), backupID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer file.Close()

	writer.Header().Set("Content-Type", "application/vnd.sqlite3")
	writer.Header().Set(constants.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", backup.Filename))
	http.ServeContent(writer, request, backup.Filename, backup.CreatedAt, file)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	backupID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), backupID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) schedule(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.scheduler.Current())
}

type scheduleRequest struct {
	Kind   string `json:"kind"`
	Day    int    `json:"day"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
}

func (handler *Handler) setSchedule(writer http.ResponseWriter, request *http.Request) {
	var input scheduleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var (
		schedule *Schedule
		err      error
	)
	switch input.Kind {
	case KindDaily:
		schedule, err = handler.scheduler.SetDaily(input.Hour, input.Minute)
	case KindWeekly:
		schedule, err = handler.scheduler.SetWeekly(input.Day, input.Hour, input.Minute)
	default:
		err = (&validate.Validator{}).OneOf("kind", input.Kind, KindDaily, KindWeekly).Err()
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, schedule)
}

func (handler *Handler) clearSchedule(writer http.ResponseWriter, request *http.Request) {
	handler.scheduler.Clear()
	respond.NoContent(writer)
}
