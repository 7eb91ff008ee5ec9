package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a pgx connection pool.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	// LISTEN holds one connection for the lifetime of the daemon.
	if config.MaxConns < 4 {
		config.MaxConns = 4
	}
	return pgxpool.NewWithConfig(ctx, config)
}
