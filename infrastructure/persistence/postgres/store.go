// Package postgres implements the relational store for the history graph:
// document revisions, the parent/child event edges between them, user
// records and raw snapshot ingestion.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	apperrors "graphdoc/pkg/errors"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New connects to the database and verifies the connection.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// HistRow is one document_hist row. Tstamp is nil for rows created through
// the document endpoint: the column is nullable with no default, so only
// imported revisions carry a content timestamp.
type HistRow struct {
	Hid       uuid.UUID
	Pid       string
	Title     string
	Metadata  json.RawMessage
	Published bool
	Deleted   bool
	Tstamp    *time.Time
}

// EventRow is one document_event row. Parent is nil for a root event.
type EventRow struct {
	Parent  *uuid.UUID
	Hist    uuid.UUID
	UID     string
	Reason  string
	Comment *string
	Tstamp  time.Time
}

// integrityCodes maps Postgres class-23 SQLSTATE codes to the snake-cased
// error names clients match on.
var integrityCodes = map[string]string{
	"23000": "integrity_constraint_violation",
	"23502": "not_null_violation",
	"23503": "foreign_key_violation",
	"23505": "unique_violation",
	"23514": "check_violation",
}

// mapError translates database failures into the application taxonomy:
// integrity violations become conflicts carrying constraint metadata,
// server-raised errors and datatype errors become validation failures.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("not_found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.Code
		switch {
		case len(code) >= 2 && code[:2] == "23":
			name, ok := integrityCodes[code]
			if !ok {
				name = integrityCodes["23000"]
			}
			return apperrors.NewConflict(name,
				pgErr.ConstraintName, pgErr.TableName, pgErr.ColumnName, err)
		case code == "P0001": // raise_exception from a database function
			return apperrors.NewValidation(pgErr.Message)
		case len(code) >= 2 && code[:2] == "22":
			return apperrors.NewValidation("invalid_datatype")
		}
	}
	return apperrors.NewInternal("internal_database_error", err)
}
