package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// graphEventsQuery walks the connected component of the history DAG that
// contains the given revision, following edges downward (parent of a known
// revision) and upward (child of a known parent) until fixpoint.
const graphEventsQuery = `
WITH RECURSIVE all_events AS (
    SELECT parent, hist, uid, reason, comment, tstamp
    FROM document_event
    WHERE hist = $1
  UNION
    SELECT evt.parent, evt.hist, evt.uid, evt.reason, evt.comment, evt.tstamp
    FROM all_events ref, document_event evt
    WHERE evt.parent = ref.hist OR evt.hist = ref.parent
)
SELECT parent, hist, uid, reason, comment, tstamp
FROM all_events
ORDER BY tstamp`

const graphNodesQuery = `
SELECT hid, pid, title, metadata, published, deleted, tstamp
FROM document_hist
WHERE hid = ANY($1)
ORDER BY tstamp`

// GetGraph returns the full history graph reachable from hid: every event
// edge in its connected component and the revision rows those edges
// reference. Both reads run in one repeatable-read transaction so the edge
// and node sets are mutually consistent.
func (s *Store) GetGraph(ctx context.Context, hid uuid.UUID) ([]HistRow, []EventRow, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, nil, mapError(err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, graphEventsQuery, hid)
	if err != nil {
		return nil, nil, mapError(err)
	}
	edges, err := scanEvents(rows)
	if err != nil {
		return nil, nil, mapError(err)
	}

	hids := make([]uuid.UUID, len(edges))
	for i, e := range edges {
		hids[i] = e.Hist
	}

	rows, err = tx.Query(ctx, graphNodesQuery, hids)
	if err != nil {
		return nil, nil, mapError(err)
	}
	nodes, err := scanHists(rows)
	if err != nil {
		return nil, nil, mapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, mapError(err)
	}
	return nodes, edges, nil
}

func scanEvents(rows pgx.Rows) ([]EventRow, error) {
	defer rows.Close()
	var edges []EventRow
	for rows.Next() {
		var e EventRow
		if err := rows.Scan(&e.Parent, &e.Hist, &e.UID, &e.Reason, &e.Comment, &e.Tstamp); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func scanHists(rows pgx.Rows) ([]HistRow, error) {
	defer rows.Close()
	var nodes []HistRow
	for rows.Next() {
		var n HistRow
		if err := rows.Scan(&n.Hid, &n.Pid, &n.Title, &n.Metadata, &n.Published, &n.Deleted, &n.Tstamp); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}
