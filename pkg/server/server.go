// Package server exposes rendering and export over HTTP. Requests carry a
// document and a width; responses carry plain, ANSI or HTML output.
package server

import (
	"context"
	stdliberrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/odvcencio/textgrid/pkg/config"
	"github.com/odvcencio/textgrid/pkg/logging"
	"github.com/odvcencio/textgrid/pkg/markdown"
	"github.com/odvcencio/textgrid/pkg/telemetry"
	"github.com/odvcencio/textgrid/pkg/theme"
)

const shutdownTimeout = 10 * time.Second

// Options carries the server's collaborators. All fields are optional.
type Options struct {
	Logger *logging.Logger
	Hub    *telemetry.Hub
	// TraceOutput receives exported spans when server.trace is enabled.
	TraceOutput io.Writer
	Version     string
}

// Server hosts the render API.
type Server struct {
	cfg      *config.Config
	theme    *theme.Theme
	markdown *markdown.Renderer
	logger   *logging.Logger
	hub      *telemetry.Hub
	limiter  *rate.Limiter

	tracer        trace.Tracer
	traceShutdown func(context.Context) error

	handler    http.Handler
	httpServer *http.Server
}

// New validates cfg and prepares the routes.
func New(cfg *config.Config, opts Options) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t, err := cfg.Theme()
	if err != nil {
		return nil, err
	}
	md, err := markdown.NewRenderer(t, cfg.MarkdownOptions()...)
	if err != nil {
		return nil, err
	}

	var traceOut io.Writer
	if cfg.Server.Trace {
		traceOut = opts.TraceOutput
	}
	provider, shutdown, err := newTracerProvider(traceOut, opts.Version)
	if err != nil {
		return nil, err
	}

	limit := rate.Limit(cfg.Server.RateLimit)
	if cfg.Server.RateLimit == 0 {
		limit = rate.Inf
	}
	burst := max(cfg.Server.RateBurst, 1)

	hub := opts.Hub
	if hub == nil {
		hub = telemetry.NewHub()
	}

	s := &Server{
		cfg:           cfg,
		theme:         t,
		markdown:      md,
		logger:        opts.Logger,
		hub:           hub,
		limiter:       rate.NewLimiter(limit, burst),
		tracer:        provider.Tracer(tracerName),
		traceShutdown: shutdown,
	}
	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestIDMiddleware)
	router.Use(securityHeadersMiddleware)
	router.Use(s.observe)

	router.Get("/healthz", s.handleHealthz)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/debug/events", s.handleRecentEvents)

	router.Route("/v1", func(r chi.Router) {
		r.Get("/events", s.handleEventStream)
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit)
			r.Post("/render/text", s.handleRenderText)
			r.Post("/render/markdown", s.handleRenderMarkdown)
			r.Post("/render/table", s.handleRenderTable)
			r.Post("/export/csv", s.handleExportCSV)
			r.Post("/export/xlsx", s.handleExportXLSX)
		})
	})
	return router
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// Start serves on server.bind until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Bind)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Server.Bind, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    1 << 20,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info(logging.CategoryServer, "listening", "serving on "+ln.Addr().String(),
			map[string]any{"addr": ln.Addr().String()})
		if err := s.httpServer.Serve(ln); err != nil && !stdliberrors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	}
	return s.Shutdown()
}

// Shutdown stops accepting requests, waits for in-flight ones, closes
// event streams and flushes spans.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if s.httpServer != nil {
		s.hub.Close()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down http server: %w", err))
		}
	}
	if err := s.traceShutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flushing traces: %w", err))
	}
	s.logger.Info(logging.CategoryServer, "stopped", "server stopped", nil)
	return stdliberrors.Join(errs...)
}
