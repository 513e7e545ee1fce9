package tracing

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ShutdownFunc flushes and stops the installed provider.
type ShutdownFunc func(context.Context) error

// InitFromEnv installs a global TracerProvider when TRACING_ENABLED is true.
// Finished spans are written to the default slog logger at debug level.
// TRACING_SAMPLE_RATIO (0..1, default 1) controls root sampling.
func InitFromEnv(_ context.Context, serviceName string) (ShutdownFunc, error) {
	enabled, _ := strconv.ParseBool(os.Getenv("TRACING_ENABLED"))
	if !enabled {
		return func(context.Context) error { return nil }, nil
	}

	ratio := 1.0
	if raw := os.Getenv("TRACING_SAMPLE_RATIO"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			slog.Warn("invalid TRACING_SAMPLE_RATIO, using 1.0", slog.String("value", raw))
		} else {
			ratio = v
		}
	}

	tp := NewProvider(serviceName, ratio, NewLogExporter(slog.Default()))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// NewProvider builds a batching provider around exporter.
func NewProvider(serviceName string, ratio float64, exporter sdktrace.SpanExporter) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithBatcher(exporter),
	)
}

// LogExporter writes finished spans as structured log lines.
type LogExporter struct {
	logger *slog.Logger
}

func NewLogExporter(logger *slog.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		attrs := []slog.Attr{
			slog.String("span", s.Name()),
			slog.String("trace_id", s.SpanContext().TraceID().String()),
			slog.String("span_id", s.SpanContext().SpanID().String()),
			slog.Duration("duration", s.EndTime().Sub(s.StartTime())),
			slog.String("status", s.Status().Code.String()),
		}
		if s.Parent().IsValid() {
			attrs = append(attrs, slog.String("parent_id", s.Parent().SpanID().String()))
		}
		if d := s.Status().Description; d != "" {
			attrs = append(attrs, slog.String("status_description", d))
		}
		e.logger.LogAttrs(ctx, slog.LevelDebug, "span finished", attrs...)
	}
	return nil
}

func (e *LogExporter) Shutdown(context.Context) error { return nil }
