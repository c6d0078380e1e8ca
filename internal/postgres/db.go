// Package postgres opens the Postgres store and owns its schema
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/lib/pq"

	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

// Options configures the connection pool
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to Postgres through lib/pq and verifies the connection
func Open(ctx context.Context, dsn string, opts *Options) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.InvalidArgument("postgres: dsn is required")
	}

	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "postgres: invalid dsn")
	}
	db := sql.OpenDB(connector)

	if opts != nil {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxIdleConns)
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "postgres: ping failed")
	}
	return db, nil
}

// SQLSTATE codes the repositories translate
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// IsUniqueViolation reports a duplicate key error
func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsConflict reports errors that mean another transaction won: lock
// timeouts, deadlocks and serialization failures
func IsConflict(err error) bool {
	return hasCode(err, codeLockNotAvailable) ||
		hasCode(err, codeDeadlockDetected) ||
		hasCode(err, codeSerializationFailure)
}

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == code
}
