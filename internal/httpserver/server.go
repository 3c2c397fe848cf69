// Package httpserver hosts a service's routes behind logging, metrics and
// panic recovery middleware, plus /healthz and an optional /metrics endpoint.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// DefaultAddress is used when Options.Addr is empty.
const DefaultAddress = "127.0.0.1:8000"

// Options configures the HTTP server.
type Options struct {
	Name              string
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	Logger            zerolog.Logger
	// Registry enables request metrics and the metrics endpoint when set.
	Registry    *prometheus.Registry
	MetricsPath string
	Namespace   string
}

// Server hosts one service.
type Server struct {
	http    *http.Server
	logger  zerolog.Logger
	opts    Options
	handler http.Handler

	mu   sync.Mutex
	ln   net.Listener
	done chan error
}

// New wraps routes with the standard middleware. The server does not listen
// until Start is called.
func New(routes http.Handler, opts Options) *Server {
	if routes == nil {
		panic("httpserver.New: routes is nil")
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddress
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.ReadHeaderTimeout == 0 {
		opts.ReadHeaderTimeout = 2 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	logger := opts.Logger.With().Str("server", opts.Name).Logger()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	var metrics *httpMetrics
	if opts.Registry != nil {
		metrics = newHTTPMetrics(opts.Registry, opts.Namespace)
		mux.Handle("GET "+opts.MetricsPath, promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{Registry: opts.Registry}))
	}
	mux.Handle("/", routes)

	var handler http.Handler = mux
	handler = withRecovery(handler, logger)
	handler = withMetrics(handler, metrics)
	handler = withRequestLog(handler, logger)

	return &Server{
		logger:  logger,
		opts:    opts,
		handler: handler,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       opts.IdleTimeout,
			BaseContext: func(net.Listener) context.Context {
				return context.Background()
			},
		},
	}
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Start binds the listener and serves in a background goroutine. Bind
// errors are returned directly.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.done = make(chan error, 1)
	done := s.done
	s.mu.Unlock()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("listening")
	go func() {
		err := s.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		} else if err != nil {
			s.logger.Error().Err(err).Msg("serve failed")
		}
		done <- err
	}()
	return nil
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.opts.Addr
}

// Done delivers the serve loop's terminal error; nil after a clean Stop.
func (s *Server) Done() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Stop gracefully shuts down the server, waiting up to ShutdownTimeout.
func (s *Server) Stop(ctx context.Context) error {
	if s.opts.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ShutdownTimeout)
		defer cancel()
	}
	err := s.http.Shutdown(ctx)
	s.logger.Info().Msg("stopped")
	return err
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
