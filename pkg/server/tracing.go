package server

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/odvcencio/textgrid/pkg/server"

// Attribute keys recorded on request spans.
var (
	AttrRequestID = attribute.Key("textgrid.request.id")
	AttrKind      = attribute.Key("textgrid.render.kind")
	AttrFormat    = attribute.Key("textgrid.render.format")
	AttrWidth     = attribute.Key("textgrid.render.width")
	AttrLines     = attribute.Key("textgrid.render.lines")
)

// newTracerProvider exports spans as JSON to out. With out nil, spans are
// not recorded.
func newTracerProvider(out io.Writer, version string) (trace.TracerProvider, func(context.Context) error, error) {
	if out == nil {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(out),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", "textgrid"),
		attribute.String("service.version", version),
	)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return provider, provider.Shutdown, nil
}
