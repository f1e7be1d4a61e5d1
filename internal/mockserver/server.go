// Package mockserver is a stand-in analysis backend for development and
// tests. It serves a fixed body for the run endpoint and performs no analysis.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/yildizm/TenderScope/internal/logger"
)

// RootMessage is returned by the health endpoint
const RootMessage = "Tender Intelligence Backend is running!"

// Options configures the mock backend
type Options struct {
	Addr       string
	RunPath    string
	HealthPath string

	// Body is served verbatim for the run endpoint; nil serves the
	// completed scenario
	Body []byte

	// Delay holds each run response back
	Delay time.Duration

	// FailStatus, when non-zero, is returned instead of Body
	FailStatus int

	Logger *logger.Logger
}

// Server is the mock analysis backend
type Server struct {
	opts Options
	log  *logger.Logger
}

// New validates options and returns a server
func New(opts Options) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = ":8000"
	}
	if opts.RunPath == "" {
		opts.RunPath = "/analyze/run"
	}
	if opts.HealthPath == "" {
		opts.HealthPath = "/"
	}
	if opts.FailStatus != 0 && (opts.FailStatus < 400 || opts.FailStatus > 599) {
		return nil, fmt.Errorf("fail status must be between 400 and 599, got %d", opts.FailStatus)
	}
	if opts.Delay < 0 {
		return nil, fmt.Errorf("delay cannot be negative")
	}
	if opts.Body == nil {
		body, err := ScenarioBody(ScenarioCompleted)
		if err != nil {
			return nil, err
		}
		opts.Body = body
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Server{opts: opts, log: log.WithComponent("mock")}, nil
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.requestLogger,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}),
	)

	r.Get(s.opts.HealthPath, s.handleRoot)
	r.Post(s.opts.RunPath, s.handleRun)

	return r
}

// Serve listens on Addr until ctx is cancelled
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on an existing listener until ctx is cancelled
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("mock backend listening on http://%s%s", ln.Addr().String(), s.opts.RunPath)

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.log.Debug("shutting down mock backend...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": RootMessage})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.opts.Delay > 0 {
		timer := time.NewTimer(s.opts.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-r.Context().Done():
			return
		}
	}

	if s.opts.FailStatus != 0 {
		http.Error(w, http.StatusText(s.opts.FailStatus), s.opts.FailStatus)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.opts.Body)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.InfoWithFields("request served", []logger.Field{
			logger.F("method", r.Method),
			logger.F("path", r.URL.Path),
			logger.F("status", ww.Status()),
			logger.F("request_id", r.Header.Get("X-Request-ID")),
			logger.Duration(time.Since(start)),
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
