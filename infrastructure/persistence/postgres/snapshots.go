package postgres

import (
	"context"
	"encoding/json"
	"time"

	apperrors "graphdoc/pkg/errors"
)

// Snapshot is one client-side measurement row. The uid is always assigned
// by the server from the authenticated session.
type Snapshot struct {
	Data   json.RawMessage
	Source string
	Tstamp *time.Time
}

// InsertSnapshot stores one snapshot and returns the stored timestamp.
func (s *Store) InsertSnapshot(ctx context.Context, snap Snapshot, uid string) (time.Time, error) {
	var tstamp time.Time
	var err error
	if snap.Tstamp != nil {
		err = s.pool.QueryRow(ctx,
			`INSERT INTO snapshot (data, source, tstamp, uid)
			 VALUES ($1, $2, $3, $4) RETURNING tstamp`,
			snap.Data, snap.Source, *snap.Tstamp, uid).Scan(&tstamp)
	} else {
		err = s.pool.QueryRow(ctx,
			`INSERT INTO snapshot (data, source, uid)
			 VALUES ($1, $2, $3) RETURNING tstamp`,
			snap.Data, snap.Source, uid).Scan(&tstamp)
	}
	if err != nil {
		return time.Time{}, mapError(err)
	}
	return tstamp, nil
}

// InsertSnapshotBatch stores many snapshots at once, skipping duplicates,
// and returns how many rows were actually inserted.
func (s *Store) InsertSnapshotBatch(ctx context.Context, snaps []Snapshot, uid string) (int, error) {
	if len(snaps) == 0 {
		return 0, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, mapError(err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, snap := range snaps {
		var tag string
		if snap.Tstamp != nil {
			err = tx.QueryRow(ctx,
				`INSERT INTO snapshot (data, source, tstamp, uid)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT DO NOTHING RETURNING '1'`,
				snap.Data, snap.Source, *snap.Tstamp, uid).Scan(&tag)
		} else {
			err = tx.QueryRow(ctx,
				`INSERT INTO snapshot (data, source, uid)
				 VALUES ($1, $2, $3)
				 ON CONFLICT DO NOTHING RETURNING '1'`,
				snap.Data, snap.Source, uid).Scan(&tag)
		}
		switch mapped := mapError(err); {
		case err == nil:
			inserted++
		case apperrors.IsNotFound(mapped):
			// Conflict skipped; nothing returned.
		default:
			return 0, mapped
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, mapError(err)
	}
	return inserted, nil
}
