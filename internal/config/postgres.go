package config

import "time"

// Postgres locates the record store. URL is a libpq style connection string or URL.
type Postgres struct {
	URL string `env:"DATABASE_URL"`

	MaxConns        int32         `env:"POSTGRES_MAX_CONNS" envDefault:"4"`
	MinConns        int32         `env:"POSTGRES_MIN_CONNS" envDefault:"0"`
	MaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"30m"`
}
