// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metadata_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/librarium/internal/metadata"
	"github.com/taibuivan/librarium/internal/platform/database/dbtest"
)

func newMetadataRouter(sources ...metadata.Source) http.Handler {
	reconciler := metadata.NewReconciler(dbtest.Logger(), sources...)
	router := chi.NewRouter()
	metadata.NewHandler(reconciler, reconciler).RegisterRoutes(router)
	return router
}

func TestHandler_LookupISBN(t *testing.T) {
	router := newMetadataRouter(&fakeSource{name: "s", priority: 1, record: &metadata.Record{Title: "Emma"}})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metadata/isbn/0141439580", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"title":"Emma"`)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metadata/isbn/not-an-isbn", nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_LookupISBNNotFound(t *testing.T) {
	router := newMetadataRouter(&fakeSource{name: "s", priority: 1})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metadata/isbn/0141439580", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandler_SearchRequiresTitle(t *testing.T) {
	router := newMetadataRouter(&fakeSource{name: "s", priority: 1})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/metadata/search", strings.NewReader(`{"author":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/metadata/search", strings.NewReader(`{"title":"Dune"}`)))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":[]}`, recorder.Body.String())
}
