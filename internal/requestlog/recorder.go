// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestlog

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/librarium/internal/platform/constants"
	"github.com/taibuivan/librarium/internal/platform/middleware"
)

// skippedPaths are probes that would otherwise dominate the log.
var skippedPaths = []string{"/health", "/ready"}

// Recorder persists entries on a background goroutine.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
	queue  chan *Entry
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewRecorder starts the writer goroutine. Close stops it.
func NewRecorder(repo Repository, logger *slog.Logger, queueSize int) *Recorder {
	recorder := &Recorder{
		repo:   repo,
		logger: logger,
		queue:  make(chan *Entry, queueSize),
		done:   make(chan struct{}),
	}
	go recorder.run()
	return recorder
}

// Record queues entry without blocking. It is dropped when the queue is full
// or the recorder is closed.
func (recorder *Recorder) Record(entry *Entry) {
	recorder.mu.RLock()
	defer recorder.mu.RUnlock()

	if recorder.closed {
		return
	}
	select {
	case recorder.queue <- entry:
	default:
		recorder.logger.Warn("request_log_dropped", slog.String("path", entry.Path))
	}
}

// Close writes the queued entries and stops the writer.
func (recorder *Recorder) Close() {
	recorder.mu.Lock()
	if !recorder.closed {
		recorder.closed = true
		close(recorder.queue)
	}
	recorder.mu.Unlock()
	<-recorder.done
}

func (recorder *Recorder) run() {
	defer close(recorder.done)

	for entry := range recorder.queue {
		ctx, cancel := context.WithTimeout(context.Background(), constants.RequestLogWriteTimeout)
		if err := recorder.repo.Insert(ctx, entry); err != nil {
			recorder.logger.Warn("request_log_write_failed", slog.Any("error", err))
		}
		cancel()
	}
}

// Middleware records every request except health probes after it is served.
func (recorder *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		for _, path := range skippedPaths {
			if request.URL.Path == path {
				next.ServeHTTP(writer, request)
				return
			}
		}

		startTime := time.Now()
		wrapped := chimw.NewWrapResponseWriter(writer, request.ProtoMajor)
		next.ServeHTTP(wrapped, request)

		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}

		recorder.Record(&Entry{
			Timestamp:    startTime.UTC(),
			Method:       request.Method,
			Path:         request.URL.Path,
			Endpoint:     routePattern(request),
			StatusCode:   status,
			IPAddress:    middleware.RealIP(request),
			UserAgent:    request.UserAgent(),
			ResponseTime: time.Since(startTime).Seconds(),
		})
	})
}

// routePattern is the matched chi pattern, such as /api/v1/books/{id}.
func routePattern(request *http.Request) string {
	routeContext := chi.RouteContext(request.Context())
	if routeContext == nil {
		return ""
	}
	return strings.TrimSuffix(routeContext.RoutePattern(), "/*")
}
