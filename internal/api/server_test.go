// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librarium/internal/api"
	"github.com/taibuivan/librarium/internal/platform/config"
	"github.com/taibuivan/librarium/internal/platform/constants"
	"github.com/taibuivan/librarium/internal/platform/database/dbtest"
	"github.com/taibuivan/librarium/internal/platform/sec"
	"github.com/taibuivan/librarium/internal/requestlog"
	"github.com/taibuivan/librarium/internal/stats"
)

type fixture struct {
	handler  http.Handler
	tokens   *sec.TokenService
	recorder *requestlog.Recorder
	logs     *requestlog.SQLRepository
}

func newFixture(t *testing.T, dependencies api.HealthDependencies) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	logger := dbtest.Logger()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := sec.NewTokenServiceFromKeys(key, &key.PublicKey, constants.AuthIssuer)

	logs := requestlog.NewSQLRepository(db)
	recorder := requestlog.NewRecorder(logs, logger, 16)
	t.Cleanup(recorder.Close)

	liveness, readiness := api.NewHealthHandlers(dependencies, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := api.NewServer(ctx, &config.Config{ServerPort: "0", Environment: "development"}, logger, tokens, api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Stats:      stats.NewHandler(stats.NewService(stats.NewSQLRepository(db), requestlog.NewService(logs))),
		RequestLog: requestlog.NewHandler(requestlog.NewService(logs)),
		Recorder:   recorder,
	})

	return &fixture{handler: server.Handler(), tokens: tokens, recorder: recorder, logs: logs}
}

func (f *fixture) serve(request *http.Request) *httptest.ResponseRecorder {
	response := httptest.NewRecorder()
	f.handler.ServeHTTP(response, request)
	return response
}

func TestHealth(t *testing.T) {
	f := newFixture(t, api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
	})

	response := f.serve(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"}}`, response.Body.String())
	assert.NotEmpty(t, response.Header().Get(constants.HeaderXRequestID))

	response = f.serve(httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"data":{"status":"ready","checks":[{"name":"database","ok":true}]}}`, response.Body.String())
}

func TestReady_Degraded(t *testing.T) {
	f := newFixture(t, api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
		CheckCache:    func(context.Context) error { return errors.New("connection refused") },
	})

	response := f.serve(httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, response.Code)
	assert.JSONEq(t, `{"data":{"status":"degraded","checks":[
		{"name":"database","ok":true},
		{"name":"redis","ok":false,"error":"connection refused"}
	]}}`, response.Body.String())
}

/*
TestAdminRoutes_RequireToken checks that admin routes reject anonymous callers
once a verification key is configured, and that unmounted handlers stay 404.
*/
func TestAdminRoutes_RequireToken(t *testing.T) {
	f := newFixture(t, api.HealthDependencies{})

	response := f.serve(httptest.NewRequest(http.MethodGet, "/api/v1/admin/logs", nil))
	assert.Equal(t, http.StatusUnauthorized, response.Code)

	token, err := f.tokens.GenerateAdminToken("owner", constants.AdminRole, time.Hour)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/admin/logs", nil)
	request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	response = f.serve(request)
	assert.Equal(t, http.StatusOK, response.Code)

	request = httptest.NewRequest(http.MethodGet, "/api/v1/admin/backups", nil)
	request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	assert.Equal(t, http.StatusNotFound, f.serve(request).Code)
}

func TestRequestsAreRecorded(t *testing.T) {
	f := newFixture(t, api.HealthDependencies{})

	assert.Equal(t, http.StatusOK, f.serve(httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)).Code)
	assert.Equal(t, http.StatusOK, f.serve(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	f.recorder.Close()

	entries, total, err := f.logs.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "/api/v1/stats", entries[0].Endpoint)
	assert.Equal(t, http.StatusOK, entries[0].StatusCode)
}
