package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumen-ui/lumen/pkg/driver"
)

const defaultTracerName = "lumen"

// OTelConfig configures the OpenTelemetry tracing option.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "lumen").
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: the global provider at mount time.
	TracerProvider trace.TracerProvider

	// Filter determines which queries to trace. Return true to trace.
	// If nil, all queries are traced.
	Filter func(query any) bool

	// AttributeExtractor extracts custom attributes from each traced query.
	AttributeExtractor func(query any) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry tracing option.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithQueryFilter sets a filter function for queries.
func WithQueryFilter(filter func(query any) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(query any) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry returns a driver option that opens a span around every query
// dispatch, named "lumen.query" with the query's Go type as an attribute.
//
// A query whose program halts never returns through the middleware, so its
// span is never ended; exporters see it only if they flush live spans.
//
// The tracer comes from the global provider unless WithTracerProvider is
// given. Configure the global provider in main() before mounting:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) driver.Option {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return driver.WithMiddleware(func(next driver.QueryFunc) driver.QueryFunc {
		return func(query any) any {
			if config.Filter != nil && !config.Filter(query) {
				return next(query)
			}

			attrs := []attribute.KeyValue{
				attribute.String("lumen.query_type", fmt.Sprintf("%T", query)),
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(query)...)
			}

			_, span := tracer.Start(
				context.Background(),
				"lumen.query",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			res := next(query)
			span.SetStatus(codes.Ok, "")
			return res
		}
	})
}
