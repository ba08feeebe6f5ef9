package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "graphdoc/pkg/errors"
)

// NodeFields is the writable subset of a document_hist row. Nil pointers
// are omitted from inserts (taking column defaults) and from patches.
type NodeFields struct {
	Pid       *string         `json:"pid" validate:"omitempty"`
	Title     *string         `json:"title" validate:"omitempty"`
	Metadata  json.RawMessage `json:"metadata" validate:"omitempty,json"`
	Published *bool           `json:"published"`
	Deleted   *bool           `json:"deleted"`
}

func (f NodeFields) columns() ([]string, []interface{}) {
	var cols []string
	var args []interface{}
	if f.Pid != nil {
		cols, args = append(cols, "pid"), append(args, *f.Pid)
	}
	if f.Title != nil {
		cols, args = append(cols, "title"), append(args, *f.Title)
	}
	if f.Metadata != nil {
		cols, args = append(cols, "metadata"), append(args, f.Metadata)
	}
	if f.Published != nil {
		cols, args = append(cols, "published"), append(args, *f.Published)
	}
	if f.Deleted != nil {
		cols, args = append(cols, "deleted"), append(args, *f.Deleted)
	}
	return cols, args
}

// GetNode fetches a single revision. A revision flagged deleted reports
// gone rather than returning the row.
func (s *Store) GetNode(ctx context.Context, hid uuid.UUID) (HistRow, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT hid, pid, title, metadata, published, deleted, tstamp
		 FROM document_hist WHERE hid = $1`, hid)
	var n HistRow
	err := row.Scan(&n.Hid, &n.Pid, &n.Title, &n.Metadata, &n.Published, &n.Deleted, &n.Tstamp)
	if err != nil {
		return HistRow{}, mapError(err)
	}
	if n.Deleted {
		return HistRow{}, apperrors.NewGone("gone")
	}
	return n, nil
}

// ListNodes returns every revision id.
func (s *Store) ListNodes(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `SELECT hid FROM document_hist`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	var hids []uuid.UUID
	for rows.Next() {
		var hid uuid.UUID
		if err := rows.Scan(&hid); err != nil {
			return nil, mapError(err)
		}
		hids = append(hids, hid)
	}
	return hids, mapError(rows.Err())
}

// InsertNode creates a revision row and returns its generated id.
func (s *Store) InsertNode(ctx context.Context, fields NodeFields) (uuid.UUID, error) {
	cols, args := fields.columns()
	query := `INSERT INTO document_hist DEFAULT VALUES RETURNING hid`
	if len(cols) > 0 {
		query = fmt.Sprintf(`INSERT INTO document_hist (%s) VALUES (%s) RETURNING hid`,
			joinColumns(cols), placeholders(len(cols)))
	}
	var hid uuid.UUID
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&hid); err != nil {
		return uuid.Nil, mapError(err)
	}
	return hid, nil
}

// UpdateNode applies a partial update to a revision row.
func (s *Store) UpdateNode(ctx context.Context, hid uuid.UUID, fields NodeFields) error {
	cols, args := fields.columns()
	if len(cols) == 0 {
		return apperrors.NewValidation("empty_update")
	}
	args = append(args, hid)
	query := fmt.Sprintf(`UPDATE document_hist SET %s WHERE hid = $%d`,
		assignments(cols), len(args))
	_, err := s.pool.Exec(ctx, query, args...)
	return mapError(err)
}

// ReplaceNode deletes any existing row for hid and inserts a new one in a
// single transaction, returning the new row's id.
func (s *Store) ReplaceNode(ctx context.Context, hid uuid.UUID, fields NodeFields) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, mapError(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM document_hist WHERE hid = $1`, hid); err != nil {
		return uuid.Nil, mapError(err)
	}
	cols, args := fields.columns()
	query := `INSERT INTO document_hist DEFAULT VALUES RETURNING hid`
	if len(cols) > 0 {
		query = fmt.Sprintf(`INSERT INTO document_hist (%s) VALUES (%s) RETURNING hid`,
			joinColumns(cols), placeholders(len(cols)))
	}
	var newHid uuid.UUID
	if err := tx.QueryRow(ctx, query, args...).Scan(&newHid); err != nil {
		return uuid.Nil, mapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, mapError(err)
	}
	return newHid, nil
}

// DeleteNode removes a revision row outright.
func (s *Store) DeleteNode(ctx context.Context, hid uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM document_hist WHERE hid = $1`, hid)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFound("not_found")
	}
	return nil
}

// CreateDocument inserts a revision and its history event in one
// transaction. A nil parent records an insert event; otherwise an update.
// The revision's content timestamp stays NULL (the column has no default),
// so the returned pointer is nil in practice and the caller serializes it
// as JSON null.
func (s *Store) CreateDocument(ctx context.Context, parent *uuid.UUID, pid, title string, published bool, uid string) (uuid.UUID, *time.Time, time.Time, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, nil, time.Time{}, mapError(err)
	}
	defer tx.Rollback(ctx)

	var hid uuid.UUID
	var contentTs *time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO document_hist (pid, title, published)
		 VALUES ($1, $2, $3) RETURNING hid, tstamp`,
		pid, title, published).Scan(&hid, &contentTs)
	if err != nil {
		return uuid.Nil, nil, time.Time{}, mapError(err)
	}

	reason := "update"
	if parent == nil {
		reason = "insert"
	}
	var actionTs time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO document_event (parent, hist, uid, reason)
		 VALUES ($1, $2, $3, $4) RETURNING tstamp`,
		parent, hid, uid, reason).Scan(&actionTs)
	if err != nil {
		return uuid.Nil, nil, time.Time{}, mapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, nil, time.Time{}, mapError(err)
	}
	return hid, contentTs, actionTs, nil
}

func joinColumns(cols []string) string {
	out := cols[0]
	for _, c := range cols[1:] {
		out += ", " + c
	}
	return out
}

func placeholders(n int) string {
	out := "$1"
	for i := 2; i <= n; i++ {
		out += fmt.Sprintf(", $%d", i)
	}
	return out
}

func assignments(cols []string) string {
	out := fmt.Sprintf("%s = $1", cols[0])
	for i, c := range cols[1:] {
		out += fmt.Sprintf(", %s = $%d", c, i+2)
	}
	return out
}
