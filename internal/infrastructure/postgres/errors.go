package postgres

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	domain "productos/backend/internal/domain/product"

	"github.com/jackc/pgx/v5/pgconn"
)

// classifyError maps driver faults onto the product error taxonomy. Errors it
// does not recognise are returned unmodified.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case isConstraintClass(pgErr.Code):
			return &domain.ConstraintViolationError{
				Code:       pgErr.Code,
				Constraint: pgErr.ConstraintName,
				Table:      pgErr.TableName,
				Column:     pgErr.ColumnName,
				Message:    pgErr.Message,
				Err:        err,
			}
		case isConnectionClass(pgErr.Code):
			return &domain.ConnectionError{Err: err}
		default:
			return err
		}
	}

	if isConnectionFault(err) {
		return &domain.ConnectionError{Err: err}
	}
	return err
}

// Class 23 is integrity constraint violation, class 22 is data exception
// (invalid text representation, numeric out of range and friends).
func isConstraintClass(code string) bool {
	return strings.HasPrefix(code, "23") || strings.HasPrefix(code, "22")
}

// Class 08 is connection exception; 57P01-57P03 are server shutdown and
// cannot-connect-now.
func isConnectionClass(code string) bool {
	switch code {
	case "57P01", "57P02", "57P03":
		return true
	}
	return strings.HasPrefix(code, "08")
}

func isConnectionFault(err error) bool {
	// Cancellation belongs to the caller, not to the store.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
