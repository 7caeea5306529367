// Package httpapi exposes the lamp controller and profile manager over
// HTTP. Every endpoint answers with a JSON envelope:
//
//	{"ok": true, "data": ...}
//	{"ok": false, "error": {"kind": "NotConnected", "message": "..."}}
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chaz8081/lampctl/internal/ble"
	"github.com/chaz8081/lampctl/internal/lamp"
	"github.com/chaz8081/lampctl/internal/profile"
)

//go:generate mockgen -source=server.go -destination=mock_lamp_test.go -package=httpapi

// Lamp is the controller surface the HTTP layer calls.
type Lamp interface {
	Scan(ctx context.Context) ([]ble.Device, error)
	Connect(ctx context.Context, address string) error
	EnsureConnected(ctx context.Context) error
	Disconnect()
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	SetColor(ctx context.Context, r, g, b int) error
	SetBrightness(ctx context.Context, pct int) error
	GetState(ctx context.Context) lamp.State
	Status() lamp.Status
}

// Profiles is the profile manager surface the HTTP layer calls.
type Profiles interface {
	List(ctx context.Context) ([]profile.Profile, error)
	SaveCurrent(ctx context.Context, name string) (profile.Profile, error)
	ApplyNamed(ctx context.Context, name string) (profile.Profile, error)
}

const shutdownTimeout = 5 * time.Second

// Server serves the HTTP API.
type Server struct {
	lamp     Lamp
	profiles Profiles
	limiter  *limiter
	logger   *slog.Logger
	router   chi.Router
}

// New builds the router. A zero RateLimitConfig disables rate limiting.
func New(l Lamp, p Profiles, rl RateLimitConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		lamp:     l,
		profiles: p,
		limiter:  newLimiter(rl),
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/state", s.handleState)
	r.Get("/profiles", s.handleListProfiles)

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)

		r.Get("/scan", s.handleScan)
		r.Get("/connect", s.handleConnect)
		r.Post("/connect", s.handleConnect)
		r.Get("/disconnect", s.handleDisconnect)
		r.Post("/disconnect", s.handleDisconnect)
		r.Get("/on", s.handleOn)
		r.Post("/on", s.handleOn)
		r.Get("/off", s.handleOff)
		r.Post("/off", s.handleOff)
		r.Get("/color", s.handleColor)
		r.Post("/color", s.handleColor)
		r.Get("/brightness", s.handleBrightness)
		r.Post("/brightness", s.handleBrightness)
		r.Post("/profiles/{name}", s.handleSaveProfile)
		r.Post("/profiles/{name}/apply", s.handleApplyProfile)
	})
	return r
}

// Serve answers requests on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("[HTTP] listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("[HTTP] stopped")
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("[HTTP] request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
