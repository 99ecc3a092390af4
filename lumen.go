// Package lumen is the application entry point for the framework: it wires a
// component, the WebSocket server, and asset serving into one App, and
// re-exports the types applications touch so most programs import only this
// package and pkg/vdom.
//
// A minimal application:
//
//	app, err := lumen.New(lumen.Config{Address: ":8080"},
//	    func(engine lumen.Engine) lumen.Handle {
//	        return lumen.RunUI[int](counterComponent{}, 0, engine)
//	    })
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(app.Run())
package lumen

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumen-ui/lumen/pkg/assets"
	"github.com/lumen-ui/lumen/pkg/driver"
	"github.com/lumen-ui/lumen/pkg/server"
)

// Config configures an App. Zero values get defaults.
type Config struct {
	// Address to listen on. Default: ":8080".
	Address string

	// Session overrides per-session settings. Default: server defaults.
	Session *server.SessionConfig

	// Assets serves static files under /assets/ when set.
	Assets assets.Store

	// Logger is installed as slog's default when set.
	Logger *slog.Logger

	// ShutdownTimeout bounds graceful shutdown. Default: 30 seconds.
	ShutdownTimeout time.Duration
}

// App bundles the server and its configuration.
type App struct {
	server *server.Server
	config Config
	logger *slog.Logger
}

// New creates an App that mounts components with mount on every connection.
func New(cfg Config, mount server.MountFunc) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	} else {
		slog.SetDefault(logger)
	}

	serverCfg := &server.ServerConfig{
		Address:         cfg.Address,
		SessionConfig:   cfg.Session,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
	if cfg.Assets != nil {
		serverCfg.Assets = assets.Handler(cfg.Assets)
	}

	srv, err := server.New(serverCfg, mount)
	if err != nil {
		return nil, err
	}

	return &App{server: srv, config: cfg, logger: logger}, nil
}

// Handler returns the App's HTTP handler for embedding in another mux.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (a *App) ListenAndServe(ctx context.Context) error {
	return a.server.ListenAndServe(ctx)
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.ListenAndServe(ctx)
}

// Re-exports. Applications use these instead of importing pkg/driver.

type (
	// Op is one instruction of an effect program.
	Op = driver.Op

	Get       = driver.Get
	Modify    = driver.Modify
	Subscribe = driver.Subscribe
	Render    = driver.Render
	Peek      = driver.Peek
	Child     = driver.Child
	Done      = driver.Done
	Halt      = driver.Halt

	// Hook is a lifecycle hook attached to a render.
	Hook = driver.Hook

	// Pending is the per-query render decision.
	Pending = driver.Pending

	// Engine is the render engine a component mounts onto.
	Engine = driver.Engine

	// Handle is a mounted component.
	Handle = driver.Handle

	// Option configures a mount.
	Option = driver.Option
)

const (
	PendingNone     = driver.PendingNone
	PendingMutated  = driver.PendingMutated
	PendingDeferred = driver.PendingDeferred
)

// RunUI mounts a component onto an engine. See driver.RunUI.
func RunUI[S any](comp driver.Component[S], initial S, engine Engine, opts ...Option) *driver.Driver[S] {
	return driver.RunUI(comp, initial, engine, opts...)
}

// Initialize builds a mount hook dispatching query. See driver.Initialize.
func Initialize(query any) Hook {
	return driver.Initialize(query)
}

// Finalize builds an unmount hook running program over a private copy of
// state. See driver.Finalize.
func Finalize(state any, program Op) Hook {
	return driver.Finalize(state, program)
}

// Hold returns the render decision that defers rendering for batching.
func Hold() *Pending {
	return driver.Hold()
}
