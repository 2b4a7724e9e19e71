// Package server exposes the layout engine and the page store over HTTP.
//
// All endpoints speak JSON:
//
//	GET    /healthz                       liveness
//	POST   /v1/layout/{op}                settle, compact, move, place, mirror
//	POST   /v1/drag/position              one pointer move of a drag
//	POST   /v1/render/svg                 draw a layout as SVG
//	GET    /v1/pages/{handle}             list saved pages
//	GET    /v1/pages/{handle}/{page}      load a normalized page
//	PUT    /v1/pages/{handle}/{page}      save a page
//	DELETE /v1/pages/{handle}/{page}      delete a page
//
// Layout and drag endpoints are stateless: the client sends the full item set
// with every request and gets the settled result back. Errors are reported as
// {"error": {"code": ..., "message": ...}} with a status derived from the
// error code.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/bentogrid/pkg/drag"
	"github.com/matzehuels/bentogrid/pkg/pipeline"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// shutdownTimeout bounds how long in-flight requests may take after the
// serve context is cancelled.
const shutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Metrics are the pixel constants used by the drag and render endpoints.
	Metrics drag.Metrics
}

// Server is the HTTP API. It is safe for concurrent use.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server backed by runner. A nil logger uses log.Default().
func New(runner *pipeline.Runner, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Metrics == (drag.Metrics{}) {
		cfg.Metrics = drag.DefaultMetrics()
	}
	s := &Server{cfg: cfg, runner: runner, logger: logger}
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
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout/{op}", s.handleLayout)
		r.Post("/drag/position", s.handleDrag)
		r.Post("/render/svg", s.handleRenderSVG)

		r.Get("/pages/{handle}", s.handleListPages)
		r.Get("/pages/{handle}/{page}", s.handleGetPage)
		r.Put("/pages/{handle}/{page}", s.handlePutPage)
		r.Delete("/pages/{handle}/{page}", s.handleDeletePage)
	})
	return r
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
