package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Option tunes the connection pool through functional options.
type Option func(cfg *pgxpool.Config)

// WithPoolConfig exposes the raw pool config for anything without a
// dedicated option.
func WithPoolConfig(fn func(cfg *pgxpool.Config)) Option {
	return func(cfg *pgxpool.Config) { fn(cfg) }
}

// WithMaxConns caps the pool size.
func WithMaxConns(n int32) Option {
	return func(cfg *pgxpool.Config) { cfg.MaxConns = n }
}

// WithMinConns sets the number of idle connections kept open.
func WithMinConns(n int32) Option {
	return func(cfg *pgxpool.Config) { cfg.MinConns = n }
}

// WithMaxConnLifetime bounds the lifetime of a pooled connection.
func WithMaxConnLifetime(d time.Duration) Option {
	return func(cfg *pgxpool.Config) { cfg.MaxConnLifetime = d }
}

// WithMaxConnIdleTime bounds how long a connection may sit idle.
func WithMaxConnIdleTime(d time.Duration) Option {
	return func(cfg *pgxpool.Config) { cfg.MaxConnIdleTime = d }
}

// WithHealthCheckPeriod sets the pool health check interval.
func WithHealthCheckPeriod(d time.Duration) Option {
	return func(cfg *pgxpool.Config) { cfg.HealthCheckPeriod = d }
}
