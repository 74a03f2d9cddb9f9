package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/inventory/internal/config"
	"github.com/tuanvumaihuynh/inventory/internal/http/apierr"
	"github.com/tuanvumaihuynh/inventory/internal/http/metric"
	"github.com/tuanvumaihuynh/inventory/internal/http/middleware"
	"github.com/tuanvumaihuynh/inventory/internal/http/swagger"
	"github.com/tuanvumaihuynh/inventory/internal/service"
	"github.com/tuanvumaihuynh/inventory/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Services groups the application services exposed over HTTP.
type Services struct {
	Product service.ProductService
	Search  service.SearchService
	Report  service.ReportService
	Health  db.HealthChecker
}

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	svcs Services
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	svcs Services,
) *Service {
	return &Service{
		cfg:     cfg,
		logger:  log.With(slog.String("service", "http")),
		metrics: metric.New(),
		svcs:    svcs,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Handler())
}

// Handler builds the router with every middleware and route registered.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return r
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	products := newProductHandler(s.svcs.Product, s.svcs.Search, s.handleError)
	reports := newReportHandler(s.svcs.Report, s.handleError)

	r.Get("/health", s.handleHealth)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", products.ListProducts)
		r.Post("/", products.CreateProduct)
		r.Delete("/{id}", products.DeleteProduct)
	})
	r.Get("/reports/summary", reports.GetSummary)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]string{"status": "ok"}

	if s.svcs.Health != nil {
		ok, err := s.svcs.Health.IsHealthy(r.Context())
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
			s.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		}
	}

	writeJSON(w, status, body)
}

// handleError writes err as an API error response, logging by severity.
func (s *Service) handleError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := apierr.Write(w, res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(v)
}
