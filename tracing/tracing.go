/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package tracing installs the OpenTelemetry tracer provider for the process.
package tracing

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/suparena/entityregistry/config"
)

// Shutdown flushes and stops the provider.
type Shutdown func(ctx context.Context) error

// Init returns a no-op provider when tracing is disabled. Otherwise spans are
// written by the stdout exporter to cfg.OutputFile, or os.Stdout when empty,
// and the provider becomes the global one.
func Init(cfg config.TracingConfig, serviceVersion string) (trace.TracerProvider, Shutdown, error) {
	if !cfg.Enabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}

	var w io.Writer = os.Stdout
	var closer io.Closer
	if cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return nil, nil, err
		}
		w, closer = f, f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, nil, err
	}
	tp, err := NewProvider(cfg.ServiceName, serviceVersion, sdktrace.NewBatchSpanProcessor(exporter))
	if err != nil {
		return nil, nil, err
	}
	otel.SetTracerProvider(tp)

	return tp, func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closer != nil {
			if cerr := closer.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}, nil
}

// NewProvider builds a provider tagged with the service name and version.
func NewProvider(serviceName, serviceVersion string, processor sdktrace.SpanProcessor) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
	), nil
}
