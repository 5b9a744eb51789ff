package ddsreader

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the package-level otel tracer. It is a no-op until the host
// process installs a real TracerProvider via otel.SetTracerProvider,
// exactly like leaving the default global provider in place in any
// otel-instrumented Go service.
var tracer = otel.Tracer("github.com/nimbusdds/ddsreader")

// startTakeSpan opens the span wrapping one TryTakeOne/TryTakeOneSeed
// call. TryTakeOne takes no caller-supplied context, so the span is
// rooted here and is not a child of any caller span. It carries the
// topic name and reliability as attributes.
func startTakeSpan(topicName string, reliability Reliability) (context.Context, trace.Span) {
	return tracer.Start(context.Background(), "ddsreader.try_take_one",
		trace.WithAttributes(
			attribute.String("dds.topic", topicName),
			attribute.String("dds.reliability", reliability.String()),
		),
	)
}
