// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/librarian are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/librarium/internal/backup"
	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/internal/lending"
	"github.com/taibuivan/librarium/internal/metadata"
	"github.com/taibuivan/librarium/internal/platform/config"
	"github.com/taibuivan/librarium/internal/platform/constants"
	"github.com/taibuivan/librarium/internal/platform/middleware"
	"github.com/taibuivan/librarium/internal/readinglist"
	"github.com/taibuivan/librarium/internal/requestlog"
	"github.com/taibuivan/librarium/internal/stats"
	"github.com/taibuivan/librarium/internal/trash"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets. A nil field leaves
// its routes unmounted.
type Handlers struct {
	// Liveness is the /health handler.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler.
	Readiness http.HandlerFunc

	Catalog     *catalog.Handler
	Trash       *trash.Handler
	Lending     *lending.Handler
	ReadingList *readinglist.Handler
	Metadata    *metadata.Handler
	Stats       *stats.Handler

	// Backup needs the SQLite store and is nil on postgres.
	Backup *backup.Handler

	RequestLog *requestlog.Handler

	// Recorder persists one entry per request when set.
	Recorder *requestlog.Recorder
}

type routeRegistrar interface {
	RegisterRoutes(chi.Router)
}

type adminRouteRegistrar interface {
	RegisterAdminRoutes(chi.Router)
}

func (handlers Handlers) public() []routeRegistrar {
	var registrars []routeRegistrar
	if handlers.Catalog != nil {
		registrars = append(registrars, handlers.Catalog)
	}
	if handlers.Trash != nil {
		registrars = append(registrars, handlers.Trash)
	}
	if handlers.Lending != nil {
		registrars = append(registrars, handlers.Lending)
	}
	if handlers.ReadingList != nil {
		registrars = append(registrars, handlers.ReadingList)
	}
	if handlers.Metadata != nil {
		registrars = append(registrars, handlers.Metadata)
	}
	if handlers.Stats != nil {
		registrars = append(registrars, handlers.Stats)
	}
	return registrars
}

func (handlers Handlers) admin() []adminRouteRegistrar {
	var registrars []adminRouteRegistrar
	if handlers.Catalog != nil {
		registrars = append(registrars, handlers.Catalog)
	}
	if handlers.Trash != nil {
		registrars = append(registrars, handlers.Trash)
	}
	if handlers.Lending != nil {
		registrars = append(registrars, handlers.Lending)
	}
	if handlers.Backup != nil {
		registrars = append(registrars, handlers.Backup)
	}
	if handlers.RequestLog != nil {
		registrars = append(registrars, handlers.RequestLog)
	}
	return registrars
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. ctx bounds the rate limiter's cleanup routine.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, verifier middleware.TokenVerifier, handlers Handlers) *Server {
	router := chi.NewRouter()

	// # Middleware Chain
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.NewRateLimiter(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst).Middleware)
	router.Use(middleware.PanicRecovery)
	router.Use(middleware.CORS(cfg))
	if handlers.Recorder != nil {
		router.Use(handlers.Recorder.Middleware)
	}
	router.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	if handlers.Liveness != nil {
		router.Get("/health", handlers.Liveness)
	}
	if handlers.Readiness != nil {
		router.Get("/ready", handlers.Readiness)
	}

	// # Application API
	router.Route("/api/v1", func(api chi.Router) {
		for _, registrar := range handlers.public() {
			registrar.RegisterRoutes(api)
		}

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireAdmin(verifier))
			for _, registrar := range handlers.admin() {
				registrar.RegisterAdminRoutes(admin)
			}
		})
	})

	return &Server{
		router: router,
		logger: logger,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the routed middleware chain.
func (server *Server) Handler() http.Handler {
	return server.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (server *Server) ListenAndServe() error {
	server.logger.Info("server_starting", slog.String("addr", server.httpServer.Addr))
	return server.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (server *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.httpServer.Shutdown(ctx)
}
