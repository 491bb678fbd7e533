// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package telemetry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/taibuivan/librarium/internal/platform/database/dbtest"
	"github.com/taibuivan/librarium/internal/platform/telemetry"
)

func TestSetup_ExportsOnShutdown(t *testing.T) {
	var exported atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method == http.MethodPost && request.URL.Path == "/v1/traces" {
			exported.Add(1)
		}
		writer.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, collector.URL+"/", dbtest.Logger())
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry_test").Start(ctx, "shelve")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, shutdown(ctx))
	assert.Equal(t, int32(1), exported.Load())
}

func TestSetup_InProcessOnly(t *testing.T) {
	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, "", dbtest.Logger())
	require.NoError(t, err)
	defer func() { _ = shutdown(ctx) }()

	_, span := otel.Tracer("telemetry_test").Start(ctx, "shelve")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid())
}
