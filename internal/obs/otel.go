// Package obs installs the OpenTelemetry tracer provider.
package obs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

var ErrUnknownExporter = errors.New("unknown trace exporter")

type Conf struct {
	ServiceName    string
	ServiceVersion string
	// Exporter is none, stdout or otlp. With none spans are still recorded,
	// so trace ids reach the access log, but nothing leaves the process.
	Exporter string
	// Endpoint is the OTLP gRPC collector address, e.g. localhost:4317.
	Endpoint string
	// Out receives stdout exporter output. Defaults to os.Stdout.
	Out io.Writer
}

// InitTracer builds a tracer provider, makes it global together with W3C trace
// context propagation and returns it. The caller stops it with Shutdown.
func InitTracer(ctx context.Context, conf Conf) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{}

	switch conf.Exporter {
	case "", ExporterNone:
	case ExporterStdout:
		out := conf.Out
		if out == nil {
			out = os.Stdout
		}

		exp, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("stdout exporter: %w", err)
		}

		opts = append(opts, sdktrace.WithSyncer(exp))
	case ExporterOTLP:
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(conf.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("otlp exporter: %w", err)
		}

		opts = append(opts, sdktrace.WithBatcher(exp))
	default:
		return nil, fmt.Errorf("tracing.exporter %q: %w", conf.Exporter, ErrUnknownExporter)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(conf.ServiceName),
			semconv.ServiceVersion(conf.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(append(opts, sdktrace.WithResource(res))...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp, nil
}
