// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package telemetry installs the global OpenTelemetry tracer provider.
//
// Services obtain tracers through otel.Tracer, so they work unchanged whether
// spans are exported over OTLP/HTTP or only kept in-process.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/taibuivan/librarium/internal/platform/constants"
)

// tracesPath is appended to the collector base URL, as OTLP/HTTP expects.
const tracesPath = "/v1/traces"

// Shutdown flushes pending spans and releases the exporter.
type Shutdown func(ctx context.Context) error

// Setup installs a tracer provider. An empty endpoint records spans without
// exporting them.
func Setup(ctx context.Context, endpoint string, logger *slog.Logger) (Shutdown, error) {
	options := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", constants.AppName),
			attribute.String("service.version", constants.AppVersion),
		)),
	}

	if endpoint != "" {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpointURL(strings.TrimSuffix(endpoint, "/")+tracesPath),
		)
		if err != nil {
			return nil, fmt.Errorf("telemetry: create otlp exporter: %w", err)
		}
		options = append(options, sdktrace.WithBatcher(exporter))
		logger.Info("tracing_exporter_enabled", slog.String("endpoint", endpoint))
	}

	provider := sdktrace.NewTracerProvider(options...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return provider.Shutdown, nil
}
