package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QueryExecutor runs a query template with positional ($1, $2, ...) parameters
// and returns the result rows. *pgxpool.Pool, *pgx.Conn and pgx.Tx all satisfy
// it, so repositories work the same inside or outside a transaction.
type QueryExecutor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var (
	_ QueryExecutor = (*pgxpool.Pool)(nil)
	_ QueryExecutor = (*pgx.Conn)(nil)
	_ QueryExecutor = (pgx.Tx)(nil)
)
