// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/trace/noop"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	tracerExportTimeout = 10 * time.Second
	// Longer than [tracerExportTimeout] so in-flight exports can finish
	// before the provider shuts down.
	tracerProviderShutdownTimeout = 15 * time.Second

	defaultEndpoint = "http://localhost:9411/api/v2/spans"
)

type Config struct {
	// Used to flag if tracing should be performed
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Zipkin collector URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// The fraction of traces to sample.
	// If >= 1 always samples.
	// If <= 0 never samples.
	TraceSampleRate float64 `json:"traceSampleRate" yaml:"traceSampleRate"`

	AppName string `json:"appName" yaml:"appName"`
	Agent   string `json:"agent" yaml:"agent"`
	Version string `json:"version" yaml:"version"`
}

func NewConfig() *Config {
	return &Config{
		Endpoint:        defaultEndpoint,
		TraceSampleRate: 1,
		AppName:         "incrementer",
		Agent:           "incrementer",
		Version:         "v0.0.1",
	}
}

var _ trace.Tracer = (*noOpTracer)(nil)

type noOpTracer struct {
	oteltrace.Tracer
}

func (noOpTracer) Close() error {
	return nil
}

// Noop returns a tracer that records nothing.
func Noop() trace.Tracer {
	return noOpTracer{Tracer: noop.NewTracerProvider().Tracer("")}
}

type tracer struct {
	oteltrace.Tracer

	tp *sdktrace.TracerProvider
}

func (t *tracer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), tracerProviderShutdownTimeout)
	defer cancel()
	return t.tp.Shutdown(ctx)
}

func New(config *Config) (trace.Tracer, error) {
	if !config.Enabled {
		return noOpTracer{Tracer: noop.NewTracerProvider().Tracer(config.AppName)}, nil
	}

	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	exporter, err := zipkin.New(endpoint)
	if err != nil {
		return nil, err
	}

	tracerProviderOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithBatcher(exporter, sdktrace.WithExportTimeout(tracerExportTimeout)),
		sdktrace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				attribute.String("version", config.Version),
				semconv.ServiceNameKey.String(config.Agent),
			),
		),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(config.TraceSampleRate)),
	}

	tracerProvider := sdktrace.NewTracerProvider(tracerProviderOpts...)
	return &tracer{
		Tracer: tracerProvider.Tracer(config.AppName),
		tp:     tracerProvider,
	}, nil
}
