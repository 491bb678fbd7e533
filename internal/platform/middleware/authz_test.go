// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librarium/internal/platform/ctxutil"
	"github.com/taibuivan/librarium/internal/platform/middleware"
	"github.com/taibuivan/librarium/internal/platform/sec"
)

func TestRequireAdmin(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "librarium.test")

	adminToken, err := tokens.GenerateAdminToken("owner", "admin", time.Hour)
	require.NoError(t, err)
	readerToken, err := tokens.GenerateAdminToken("guest", "reader", time.Hour)
	require.NoError(t, err)

	var subject string
	handler := middleware.RequireAdmin(tokens)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if claims := ctxutil.GetAdmin(request.Context()); claims != nil {
			subject = claims.Subject
		}
		writer.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"wrong role", "Bearer " + readerToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/admin/trash", nil)
			if test.header != "" {
				request.Header.Set("Authorization", test.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)
			assert.Equal(t, test.status, recorder.Code)
		})
	}
	assert.Equal(t, "owner", subject)
}

func TestRequireAdmin_OpenWithoutPublicKey(t *testing.T) {
	tokens := sec.NewTokenServiceFromKeys(nil, nil, "librarium.test")

	recorder := httptest.NewRecorder()
	middleware.RequireAdmin(tokens)(okHandler).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin/trash", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}
