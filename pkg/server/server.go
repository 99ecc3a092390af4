package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumen-ui/lumen/pkg/driver"
)

// MountFunc mounts a component onto a freshly upgraded session. The session
// is handed in as the render engine; implementations typically call
// driver.RunUI with it and return the resulting handle.
type MountFunc func(engine driver.Engine) driver.Handle

// Server is the HTTP/WebSocket front end. Each WebSocket connection on /live
// becomes a session with its own mounted component tree.
type Server struct {
	config   *ServerConfig
	mount    MountFunc
	upgrader websocket.Upgrader
	router   chi.Router

	httpServer *http.Server

	sessions   map[string]*Session
	sessionsMu sync.Mutex

	logger *slog.Logger
}

// New creates a server that mounts components with mount. A nil config gets
// DefaultServerConfig; a partial config has its zero fields filled in.
func New(config *ServerConfig, mount MountFunc) (*Server, error) {
	if config == nil {
		config = DefaultServerConfig()
	} else {
		config = config.Clone()
		defaults := DefaultServerConfig()
		if config.Address == "" {
			config.Address = defaults.Address
		}
		if config.ReadBufferSize == 0 {
			config.ReadBufferSize = defaults.ReadBufferSize
		}
		if config.WriteBufferSize == 0 {
			config.WriteBufferSize = defaults.WriteBufferSize
		}
		if config.CheckOrigin == nil {
			config.CheckOrigin = defaults.CheckOrigin
		}
		if config.SessionConfig == nil {
			config.SessionConfig = defaults.SessionConfig
		}
		if config.ShutdownTimeout == 0 {
			config.ShutdownTimeout = defaults.ShutdownTimeout
		}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config: config,
		mount:  mount,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		sessions: make(map[string]*Session),
		logger:   slog.Default().With("component", "server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/live", s.handleLive)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	if config.Assets != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets/", config.Assets))
	}
	s.router = r

	return s, nil
}

// Handler returns the server's HTTP handler, for embedding in another mux or
// an httptest server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully within ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.config.Address,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)

	s.sessionsMu.Lock()
	for _, sess := range s.sessions {
		sess.Close(websocket.CloseGoingAway, "server shutting down")
	}
	s.sessionsMu.Unlock()

	s.logger.Info("server stopped")
	return err
}

// SessionCount reports the number of live sessions.
func (s *Server) SessionCount() int {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	return len(s.sessions)
}

// handleLive upgrades the connection, mounts the component, and services the
// session until it ends.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	sess := newSession(conn, s.config.SessionConfig, s.logger)
	s.addSession(sess)
	defer s.removeSession(sess)

	// Mounting streams the initial snapshot through the session.
	sess.handle = s.mount(sess)

	s.logger.Info("session started", "session_id", sess.ID, "remote", r.RemoteAddr)
	sess.Run()
}

func (s *Server) addSession(sess *Session) {
	s.sessionsMu.Lock()
	s.sessions[sess.ID] = sess
	s.sessionsMu.Unlock()
	metrics.sessionsActive.Inc()
}

func (s *Server) removeSession(sess *Session) {
	s.sessionsMu.Lock()
	delete(s.sessions, sess.ID)
	s.sessionsMu.Unlock()
	metrics.sessionsActive.Dec()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
