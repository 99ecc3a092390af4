package driver

import (
	"log/slog"
	"time"
)

// QueryFunc dispatches one query and returns its result.
type QueryFunc func(query any) any

// Middleware wraps query dispatch, for metrics and tracing. A halted query
// never returns through the chain; middleware must tolerate that.
type Middleware func(next QueryFunc) QueryFunc

// RenderStats describes one completed render pass, as seen by render
// observers.
type RenderStats struct {
	Patches int
	Elapsed time.Duration
}

type options struct {
	logger     *slog.Logger
	middleware []Middleware
	observers  []func(RenderStats)
}

func defaultOptions() options {
	return options{logger: slog.Default()}
}

// Option configures a driver at mount.
type Option func(*options)

// Options combines several options into one, applied in order. Packages that
// contribute both middleware and observers return a single combined Option.
func Options(opts ...Option) Option {
	return func(o *options) {
		for _, opt := range opts {
			opt(o)
		}
	}
}

// WithLogger sets the driver's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMiddleware appends query middleware, applied in the order given with
// the first middleware outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(o *options) {
		o.middleware = append(o.middleware, mw...)
	}
}

// WithRenderObserver registers a callback invoked after every render pass.
// Observers run on the rendering goroutine and must be fast.
func WithRenderObserver(fn func(RenderStats)) Option {
	return func(o *options) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}
