package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool and pings it, retrying with exponential backoff up to
// attempts times while the database comes up.
func Connect(ctx context.Context, databaseURL string, attempts uint) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	try := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		try++
		if err := pool.Ping(ctx); err != nil {
			slog.Warn("database not ready", "attempt", try, "err", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(attempts))
	if err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
