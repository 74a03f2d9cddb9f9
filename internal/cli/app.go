package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuanvumaihuynh/inventory/internal/config"
	"github.com/tuanvumaihuynh/inventory/internal/log"
	"github.com/tuanvumaihuynh/inventory/internal/repository"
	"github.com/tuanvumaihuynh/inventory/internal/service"
	"github.com/tuanvumaihuynh/inventory/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory/internal/telemetry"
	"github.com/tuanvumaihuynh/inventory/pkg/validator"
)

// baseConfig is loaded for every command.
type baseConfig struct {
	Log  config.Log
	Otel config.Otel
}

// storeConfig is loaded by commands that open the record store.
type storeConfig struct {
	Postgres config.Postgres
	Outbox   config.Outbox
	Report   config.Report
}

type cleanupFunc func(ctx context.Context) error

// app carries the state shared by one CLI invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	dbURL   string
	verbose bool

	logger   *slog.Logger
	cleanups []cleanupFunc
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.New[baseConfig]()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.verbose {
		cfg.Log.Level = slog.LevelDebug
	}

	a.logger = log.NewSlogLogger(cfg.Log, a.stderr)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	a.onClose(cleanupFunc(cleanupTracer))

	return nil
}

func (a *app) onClose(fn cleanupFunc) {
	a.cleanups = append(a.cleanups, fn)
}

// close runs the registered cleanups in reverse order.
func (a *app) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](ctx); err != nil && a.logger != nil {
			a.logger.ErrorContext(ctx, "error during cleanup", slog.Any("error", err))
		}
	}
	a.cleanups = nil
}

func (a *app) loadStoreConfig() (storeConfig, error) {
	cfg, err := config.New[storeConfig]()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if a.dbURL != "" {
		cfg.Postgres.URL = a.dbURL
	}
	return cfg, nil
}

// openStore initializes the record store and closes it with the app.
func (a *app) openStore(ctx context.Context, cfg config.Postgres) (*pgxpool.Pool, error) {
	pool, err := db.Initialize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	a.onClose(func(context.Context) error {
		pool.Close()
		return nil
	})
	return pool, nil
}

type services struct {
	cfg      storeConfig
	db       *db.Client
	product  service.ProductService
	importer service.ImportService
	search   service.SearchService
	report   service.ReportService
}

// services opens the store and wires every application service on it.
func (a *app) services(ctx context.Context) (*services, error) {
	cfg, err := a.loadStoreConfig()
	if err != nil {
		return nil, err
	}

	pool, err := a.openStore(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	dbClient := db.NewClient(pool)
	productRepository := repository.NewProductRepository(dbClient)

	var outboxMsgRepository repository.OutboxMsgRepository
	if cfg.Outbox.Enabled {
		outboxMsgRepository = repository.NewOutboxMsgRepository(dbClient)
	}

	return &services{
		cfg:      cfg,
		db:       dbClient,
		product:  service.NewProductService(dbClient, v, productRepository, outboxMsgRepository),
		importer: service.NewImportService(a.logger, dbClient, v, productRepository, outboxMsgRepository),
		search:   service.NewSearchService(a.logger, productRepository),
		report:   service.NewReportService(a.logger, productRepository),
	}, nil
}
