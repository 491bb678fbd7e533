// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package readinglist_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librarium/internal/readinglist"
)

func TestHandler_ReadingList(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "Dune")
	f.addBook(t, "Emma")

	router := chi.NewRouter()
	readinglist.NewHandler(f.service).RegisterRoutes(router)

	send := func(method, path, body string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(method, path, strings.NewReader(body)))
		return recorder
	}

	require.Equal(t, http.StatusCreated, send(http.MethodPost, "/reading-list", `{"book_id":1,"date":"2023-04-01"}`).Code)
	require.Equal(t, http.StatusCreated, send(http.MethodPost, "/reading-list", `{"book_id":2,"year":2024}`).Code)

	recorder := send(http.MethodGet, "/reading-list?year=2023", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"book_title":"Dune"`)
	assert.NotContains(t, recorder.Body.String(), `"book_title":"Emma"`)

	recorder = send(http.MethodGet, "/reading-list?year=all", "")
	assert.Contains(t, recorder.Body.String(), `"year":null`)
	assert.Contains(t, recorder.Body.String(), `"display_title":"Emma"`)

	recorder = send(http.MethodGet, "/reading-list/years", "")
	assert.JSONEq(t, `{"data":[2024,2023]}`, recorder.Body.String())

	assert.Equal(t, http.StatusOK, send(http.MethodPost, "/reading-list/reorder", `{"items":[{"id":1,"order":5}]}`).Code)
	assert.Equal(t, http.StatusOK, send(http.MethodPost, "/reading-list/1/complete", "").Code)
	assert.Equal(t, http.StatusOK, send(http.MethodPatch, "/reading-list/1/read-date", `{"date":"2024-01-01"}`).Code)
	assert.Equal(t, http.StatusOK, send(http.MethodPost, "/reading-list/1/unmark", "").Code)
	assert.Equal(t, http.StatusOK, send(http.MethodPatch, "/reading-list/1/added-date", `{"year":2022,"month":1,"day":2}`).Code)
	assert.Equal(t, http.StatusNoContent, send(http.MethodDelete, "/reading-list/2", "").Code)
	assert.Equal(t, http.StatusNotFound, send(http.MethodDelete, "/reading-list/2", "").Code)
}
