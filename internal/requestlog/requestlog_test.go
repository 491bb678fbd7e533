// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestlog_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librarium/internal/platform/database/dbtest"
	"github.com/taibuivan/librarium/internal/requestlog"
)

func newRepository(t *testing.T) *requestlog.SQLRepository {
	t.Helper()
	return requestlog.NewSQLRepository(dbtest.Open(t))
}

func seed(t *testing.T, repo *requestlog.SQLRepository, method string, status int, at time.Time) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), &requestlog.Entry{
		Timestamp:    at,
		Method:       method,
		Path:         "/api/v1/books/1",
		Endpoint:     "/api/v1/books/{id}",
		StatusCode:   status,
		IPAddress:    "127.0.0.1",
		UserAgent:    "curl/8.0",
		ResponseTime: 0.25,
	}))
}

/*
TestMiddleware_RecordsRoutePattern serves requests through a chi router and
checks that the recorder persists them once closed.
*/
func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	repo := newRepository(t)
	recorder := requestlog.NewRecorder(repo, dbtest.Logger(), 16)

	router := chi.NewRouter()
	router.Use(recorder.Middleware)
	router.Get("/health", func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusOK) })
	router.Get("/books/{id}", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	})
	router.Post("/books", func(writer http.ResponseWriter, _ *http.Request) { _, _ = writer.Write([]byte("{}")) })

	for _, request := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/health", nil),
		httptest.NewRequest(http.MethodGet, "/books/42", nil),
		httptest.NewRequest(http.MethodPost, "/books", strings.NewReader("{}")),
	} {
		request.Header.Set("User-Agent", "librarium-test")
		router.ServeHTTP(httptest.NewRecorder(), request)
	}
	recorder.Close()

	// Recording after close is a no-op
	recorder.Record(&requestlog.Entry{Method: http.MethodGet, Path: "/late"})

	entries, total, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Equal(t, 2, total)

	byPath := map[string]*requestlog.Entry{}
	for _, entry := range entries {
		byPath[entry.Path] = entry
	}
	require.Contains(t, byPath, "/books/42")
	assert.Equal(t, "/books/{id}", byPath["/books/42"].Endpoint)
	assert.Equal(t, http.StatusNotFound, byPath["/books/42"].StatusCode)
	assert.Equal(t, "librarium-test", byPath["/books/42"].UserAgent)
	assert.Equal(t, http.StatusOK, byPath["/books"].StatusCode)
	assert.NotContains(t, byPath, "/health")
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	repo := newRepository(t)
	recorder := requestlog.NewRecorder(repo, dbtest.Logger(), 1)

	for range 50 {
		recorder.Record(&requestlog.Entry{Timestamp: time.Now().UTC(), Method: http.MethodGet, Path: "/", StatusCode: 200})
	}
	recorder.Close()

	_, total, err := repo.List(context.Background(), 100, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 1)
	assert.LessOrEqual(t, total, 50)
}

func TestCounts(t *testing.T) {
	repo := newRepository(t)
	now := time.Now().UTC()
	seed(t, repo, http.MethodGet, 200, now)
	seed(t, repo, http.MethodGet, 404, now)
	seed(t, repo, http.MethodPost, 201, now)
	seed(t, repo, http.MethodDelete, 500, now)

	counts, err := requestlog.NewService(repo).Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, requestlog.Counts{Total: 4, Get: 2, Post: 1, Success: 2, Errors: 2}, counts)
}

func TestExportCSV_NewestFirst(t *testing.T) {
	repo := newRepository(t)
	seed(t, repo, http.MethodGet, 200, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	seed(t, repo, http.MethodPost, 201, time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC))

	var buffer bytes.Buffer
	require.NoError(t, requestlog.NewService(repo).ExportCSV(context.Background(), &buffer))

	rows, err := csv.NewReader(&buffer).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Timestamp", "Method", "Endpoint", "Status", "Response Time", "IP", "User Agent"}, rows[0])
	assert.Equal(t, []string{"2024-05-02 09:30:00", "POST", "/api/v1/books/{id}", "201", "0.25s", "127.0.0.1", "curl/8.0"}, rows[1])
	assert.Equal(t, "GET", rows[2][1])
}

func TestHandler_Logs(t *testing.T) {
	repo := newRepository(t)
	seed(t, repo, http.MethodGet, 200, time.Now().UTC())

	router := chi.NewRouter()
	router.Route("/admin", requestlog.NewHandler(requestlog.NewService(repo)).RegisterAdminRoutes)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin/logs?page=1&limit=10", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"total":1`)
	assert.Contains(t, recorder.Body.String(), `"endpoint":"/api/v1/books/{id}"`)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin/logs/export", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "attachment; filename=logs.csv", recorder.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(recorder.Body.String(), "Timestamp,Method,Endpoint"))
}
