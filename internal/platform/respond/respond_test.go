// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librarium/internal/platform/apperr"
	"github.com/taibuivan/librarium/internal/platform/respond"
	"github.com/taibuivan/librarium/pkg/pagination"
)

func TestError_AppError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/books/1/lending", nil)

	respond.Error(recorder, request, apperr.AlreadyLentToOther("Bob"))

	assert.Equal(t, http.StatusConflict, recorder.Code)

	var body respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeAlreadyLentToOther, body.Code)
	assert.Equal(t, "This book is already lent to Bob", body.Error)
}

func TestError_PlainErrorBecomesInternal(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, errors.New("secret sql detail"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "secret")
}

func TestPaginated_Envelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Paginated(recorder, []string{"a"}, pagination.NewMeta(1, 20, 1))

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Contains(t, body, "data")
	assert.Contains(t, body, "meta")
	assert.Equal(t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"))
}
