package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "graphdoc/pkg/errors"
)

// EdgeFields is the writable subset of a document_event row beyond its
// (parent, hist) key.
type EdgeFields struct {
	UID     *string `json:"uid"`
	Reason  *string `json:"reason" validate:"omitempty,oneof=insert update"`
	Comment *string `json:"comment"`
}

func (f EdgeFields) columns() ([]string, []interface{}) {
	var cols []string
	var args []interface{}
	if f.UID != nil {
		cols, args = append(cols, "uid"), append(args, *f.UID)
	}
	if f.Reason != nil {
		cols, args = append(cols, "reason"), append(args, *f.Reason)
	}
	if f.Comment != nil {
		cols, args = append(cols, "comment"), append(args, *f.Comment)
	}
	return cols, args
}

// edgeWhere builds the key predicate; a nil parent matches the root event
// for hist.
func edgeWhere(parent *uuid.UUID, hist uuid.UUID, firstArg int) (string, []interface{}) {
	if parent == nil {
		return fmt.Sprintf("parent IS NULL AND hist = $%d", firstArg), []interface{}{hist}
	}
	return fmt.Sprintf("parent = $%d AND hist = $%d", firstArg, firstArg+1),
		[]interface{}{*parent, hist}
}

// GetEdge fetches one event by its (parent, hist) key.
func (s *Store) GetEdge(ctx context.Context, parent *uuid.UUID, hist uuid.UUID) (EventRow, error) {
	where, args := edgeWhere(parent, hist, 1)
	row := s.pool.QueryRow(ctx,
		`SELECT parent, hist, uid, reason, comment, tstamp FROM document_event WHERE `+where,
		args...)
	var e EventRow
	if err := row.Scan(&e.Parent, &e.Hist, &e.UID, &e.Reason, &e.Comment, &e.Tstamp); err != nil {
		return EventRow{}, mapError(err)
	}
	return e, nil
}

// ListEdges returns every event's (parent, hist) pair.
func (s *Store) ListEdges(ctx context.Context) ([]EventRow, error) {
	rows, err := s.pool.Query(ctx, `SELECT parent, hist FROM document_event`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	var edges []EventRow
	for rows.Next() {
		var e EventRow
		if err := rows.Scan(&e.Parent, &e.Hist); err != nil {
			return nil, mapError(err)
		}
		edges = append(edges, e)
	}
	return edges, mapError(rows.Err())
}

// InsertEdge creates an event row for the given key.
func (s *Store) InsertEdge(ctx context.Context, parent *uuid.UUID, hist uuid.UUID, fields EdgeFields) error {
	cols, args := fields.columns()
	cols = append([]string{"parent", "hist"}, cols...)
	args = append([]interface{}{parent, hist}, args...)
	query := fmt.Sprintf(`INSERT INTO document_event (%s) VALUES (%s)`,
		joinColumns(cols), placeholders(len(cols)))
	_, err := s.pool.Exec(ctx, query, args...)
	return mapError(err)
}

// UpdateEdge applies a partial update to an event row.
func (s *Store) UpdateEdge(ctx context.Context, parent *uuid.UUID, hist uuid.UUID, fields EdgeFields) error {
	cols, args := fields.columns()
	if len(cols) == 0 {
		return apperrors.NewValidation("empty_update")
	}
	where, whereArgs := edgeWhere(parent, hist, len(args)+1)
	query := fmt.Sprintf(`UPDATE document_event SET %s WHERE %s`, assignments(cols), where)
	_, err := s.pool.Exec(ctx, query, append(args, whereArgs...)...)
	return mapError(err)
}

// ReplaceEdge deletes any event under the key and inserts a fresh one in a
// single transaction.
func (s *Store) ReplaceEdge(ctx context.Context, parent *uuid.UUID, hist uuid.UUID, fields EdgeFields) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback(ctx)

	where, whereArgs := edgeWhere(parent, hist, 1)
	if _, err := tx.Exec(ctx, `DELETE FROM document_event WHERE `+where, whereArgs...); err != nil {
		return mapError(err)
	}
	cols, args := fields.columns()
	cols = append([]string{"parent", "hist"}, cols...)
	args = append([]interface{}{parent, hist}, args...)
	query := fmt.Sprintf(`INSERT INTO document_event (%s) VALUES (%s)`,
		joinColumns(cols), placeholders(len(cols)))
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return mapError(err)
	}
	return mapError(tx.Commit(ctx))
}

// DeleteEdge removes an event row by key.
func (s *Store) DeleteEdge(ctx context.Context, parent *uuid.UUID, hist uuid.UUID) error {
	where, args := edgeWhere(parent, hist, 1)
	tag, err := s.pool.Exec(ctx, `DELETE FROM document_event WHERE `+where, args...)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFound("not_found")
	}
	return nil
}
