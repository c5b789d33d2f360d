// Package server exposes the classification engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/crimson-sun/phishlens/internal/engine"
	"github.com/crimson-sun/phishlens/internal/engine/assembler"
	"github.com/crimson-sun/phishlens/internal/model"
)

// maxBodyBytes bounds a /predict request body.
const maxBodyBytes = 64 << 10

// Predictor is the engine surface the server needs. *engine.Engine
// satisfies it.
type Predictor interface {
	Process(ctx context.Context, url string) (model.Prediction, error)
	Schema() assembler.Schema
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRateLimit allows rps requests per second per client IP on /predict,
// with the given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) { s.limiter = NewLimiter(rps, burst) }
}

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// Server serves predictions over HTTP.
type Server struct {
	predictor Predictor
	logger    *slog.Logger
	limiter   *Limiter
	version   string
	inflight  singleflight.Group
}

// New creates a Server over p.
func New(p Predictor, opts ...Option) *Server {
	s := &Server{
		predictor: p,
		logger:    slog.Default(),
		limiter:   NewLimiter(0, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		jsonError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		jsonError(w, "Invalid request method", http.StatusMethodNotAllowed)
	})

	r.With(s.rateLimit).Post("/predict", s.handlePredict)
	r.Get("/healthz", s.handleHealth)
	r.Get("/schema", s.handleSchema)
	return r
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
// for up to shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go s.limiter.RunCleanup(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

type predictRequest struct {
	URL string `json:"url"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	pred, err := s.predict(r.Context(), req.URL)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, pred)
	case errors.Is(err, engine.ErrEmptyURL):
		jsonError(w, "URL is required", http.StatusBadRequest)
	default:
		s.logger.Error("prediction failed",
			"url", req.URL,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		jsonError(w, "classification failed", http.StatusInternalServerError)
	}
}

// predict coalesces concurrent requests for the same URL into one pipeline
// run. Each caller receives its own copy of the feature map.
func (s *Server) predict(ctx context.Context, url string) (model.Prediction, error) {
	// The shared run outlives any single caller's cancellation; the probe
	// timeout still bounds it.
	runCtx := context.WithoutCancel(ctx)
	v, err, shared := s.inflight.Do(url, func() (any, error) {
		return s.predictor.Process(runCtx, url)
	})
	if err != nil {
		return model.Prediction{}, err
	}
	pred := v.(model.Prediction)
	if shared {
		pred.Features = pred.Features.Clone()
	}
	return pred, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"features": len(s.predictor.Schema()),
		"version":  s.version,
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"features": s.predictor.Schema(),
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(s.limiter.RetryAfter()))
			jsonError(w, "Rate limited", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// clientIP returns the host part of RemoteAddr, which RealIP has already
// replaced with a forwarded address when one is present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
