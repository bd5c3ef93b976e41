// Package tracing configures the OpenTelemetry tracer provider used by the
// individual service.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/vitality/internal/log"
)

// Exporter names accepted in Config.Exporter.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// DefaultServiceName is reported as service.name when none is configured.
const DefaultServiceName = "vitality"

// Config selects where spans go.
type Config struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	ServiceName string  `mapstructure:"service_name"`
}

// UnknownExporterError is returned for an exporter name Setup does not know.
type UnknownExporterError struct {
	Name string
}

func (e *UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown trace exporter: %q", e.Name)
}

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(ctx context.Context) error

// Setup builds a tracer provider from cfg and installs it globally. Spans
// from the stdout exporter are written to w, or stderr when w is nil. When
// tracing is disabled a no-op provider is returned.
func Setup(ctx context.Context, cfg Config, w io.Writer) (trace.TracerProvider, ShutdownFunc, error) {
	if !cfg.Enabled {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, func(context.Context) error { return nil }, nil
	}

	var processor sdktrace.SpanProcessor
	switch cfg.Exporter {
	case ExporterStdout, "":
		if w == nil {
			w = os.Stderr
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		// Commands are short lived, so export synchronously.
		processor = sdktrace.NewSimpleSpanProcessor(exporter)
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
		}
		exporter, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		processor = sdktrace.NewBatchSpanProcessor(exporter)
	default:
		return nil, nil, &UnknownExporterError{Name: cfg.Exporter}
	}

	name := cfg.ServiceName
	if name == "" {
		name = DefaultServiceName
	}
	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", name))),
	)
	otel.SetTracerProvider(tp)

	log.Debug(log.CatTrace, "Tracing enabled", "exporter", cfg.Exporter, "endpoint", cfg.Endpoint, "ratio", ratio)
	return tp, tp.Shutdown, nil
}
