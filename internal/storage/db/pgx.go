package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuanvumaihuynh/inventory/internal/config"
)

var ErrNoLocation = errors.New("no database location configured")

// NewPgxPool creates a new pgx pool with the given configuration.
func NewPgxPool(ctx context.Context, cfg config.Postgres) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, ErrNoLocation
	}

	pgConf, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	pgConf.ConnConfig.Tracer = otelpgx.NewTracer()

	// zero values keep the pgxpool defaults
	if cfg.MaxConns > 0 {
		pgConf.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pgConf.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pgConf.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pgConf.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgConf)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := otelpgx.RecordStats(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("record database stats: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Initialize opens the store at cfg.URL and brings its schema up to date.
// It is safe to call against an existing store; no data is touched.
func Initialize(ctx context.Context, cfg config.Postgres) (*pgxpool.Pool, error) {
	pool, err := NewPgxPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return pool, nil
}
