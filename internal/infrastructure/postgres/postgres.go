package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"
)

// PoolOptions tunes the connection pool.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	// TracerProvider receives the query spans; nil uses the global provider.
	TracerProvider trace.TracerProvider
}

// Database wraps the pgx connection pool.
type Database struct {
	Pool *pgxpool.Pool
	dsn  string
}

// New establishes a new connection pool against the provided DSN.
func New(ctx context.Context, dsn string, opts PoolOptions) (*Database, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	cfg.MaxConnLifetime = time.Hour
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	cfg.MaxConnIdleTime = 30 * time.Minute
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}
	var tracerOpts []otelpgx.Option
	if opts.TracerProvider != nil {
		tracerOpts = append(tracerOpts, otelpgx.WithTracerProvider(opts.TracerProvider))
	}
	cfg.ConnConfig.Tracer = otelpgx.NewTracer(tracerOpts...)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &Database{Pool: pool, dsn: dsn}, nil
}

// Ping checks that the store is reachable.
func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Stats snapshots the pool counters.
func (db *Database) Stats() PoolStats {
	st := db.Pool.Stat()
	return PoolStats{
		MaxConns:             st.MaxConns(),
		TotalConns:           st.TotalConns(),
		IdleConns:            st.IdleConns(),
		AcquiredConns:        st.AcquiredConns(),
		AcquireCount:         st.AcquireCount(),
		EmptyAcquireCount:    st.EmptyAcquireCount(),
		CanceledAcquireCount: st.CanceledAcquireCount(),
		AcquireDuration:      st.AcquireDuration(),
	}
}

// Close drains the connection pool.
func (db *Database) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
	}
}
