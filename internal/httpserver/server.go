package httpserver

import (
	"context"
	"io"
	"net/http"
	"strings"

	"productos/backend/internal/config"
	domain "productos/backend/internal/domain/product"
	"productos/backend/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ProductService is the set of product use cases served over HTTP.
type ProductService interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Product, error)
	Create(ctx context.Context, fields domain.Fields) (*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, id int64, fields domain.Fields) (*domain.Product, error)
	Delete(ctx context.Context, id int64) (*domain.Product, error)
	Search(ctx context.Context, term string) ([]domain.Product, error)
	Export(ctx context.Context, w io.Writer) error
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups the collaborators of the HTTP server.
type Dependencies struct {
	Products ProductService
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	// Database is optional; when set, /health also checks the store.
	Database Pinger
	// TracerProvider starts the per-request spans; nil uses the global one.
	TracerProvider trace.TracerProvider
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	products   ProductService
	logger     *zap.Logger
	metrics    *observability.Metrics
	database   Pinger
	addr       string
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, deps Dependencies) *Server {
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tp := deps.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	router := chi.NewRouter()
	srv := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		router:   router,
		products: deps.Products,
		logger:   logger.Named("http"),
		metrics:  deps.Metrics,
		database: deps.Database,
		addr:     addr,
	}
	router.Use(middlewareStack(cfg, srv.logger, srv.metrics, tp)...)
	srv.registerRoutes()
	return srv
}

// Start bootstraps the HTTP server on the provided address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
