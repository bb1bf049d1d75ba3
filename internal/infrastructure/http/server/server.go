// Package server provides the REST API HTTP server
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nutriplan/core/internal/infrastructure/config"
	"github.com/nutriplan/core/internal/infrastructure/http/handlers"
	"github.com/nutriplan/core/internal/infrastructure/http/middleware"
	"github.com/nutriplan/core/internal/infrastructure/http/render"
	"github.com/nutriplan/core/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Server represents the REST API server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	router  *chi.Mux
	handler http.Handler
	server  *http.Server
}

// NewServer creates the API server. recorder may be nil.
func NewServer(cfg *config.Config, h *handlers.Handlers, recorder middleware.Recorder, logger *zap.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: logger.Named("api-server"),
	}
	s.router = s.setupRoutes(h, recorder)
	s.handler = otelhttp.NewHandler(s.router, "nutriplan-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}
	return s
}

func (s *Server) setupRoutes(h *handlers.Handlers, recorder middleware.Recorder) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger, recorder))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	r.Use(middleware.NewRateLimiter(s.config.RateLimit).Handler(s.logger))
	if s.config.Server.WriteTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.config.Server.WriteTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, r, s.logger, errors.NewNotFoundError("Route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusMethodNotAllowed, errors.ToErrorResponse(
			errors.NewBadRequestError("method not allowed"), chimiddleware.GetReqID(r.Context()),
		))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Owner(s.logger))
		h.Routes(r)
	})

	return r
}

// Handler returns the instrumented root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
