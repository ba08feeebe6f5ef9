// Package ports declares the narrow store interfaces the HTTP layer
// depends on, implemented by the postgres package and by test fakes.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"graphdoc/infrastructure/persistence/postgres"
)

// GraphStore serves whole-graph reads.
type GraphStore interface {
	GetGraph(ctx context.Context, hid uuid.UUID) ([]postgres.HistRow, []postgres.EventRow, error)
}

// NodeStore serves revision CRUD.
type NodeStore interface {
	GetNode(ctx context.Context, hid uuid.UUID) (postgres.HistRow, error)
	ListNodes(ctx context.Context) ([]uuid.UUID, error)
	InsertNode(ctx context.Context, fields postgres.NodeFields) (uuid.UUID, error)
	UpdateNode(ctx context.Context, hid uuid.UUID, fields postgres.NodeFields) error
	ReplaceNode(ctx context.Context, hid uuid.UUID, fields postgres.NodeFields) (uuid.UUID, error)
	DeleteNode(ctx context.Context, hid uuid.UUID) error
}

// EdgeStore serves history-event CRUD.
type EdgeStore interface {
	GetEdge(ctx context.Context, parent *uuid.UUID, hist uuid.UUID) (postgres.EventRow, error)
	ListEdges(ctx context.Context) ([]postgres.EventRow, error)
	InsertEdge(ctx context.Context, parent *uuid.UUID, hist uuid.UUID, fields postgres.EdgeFields) error
	UpdateEdge(ctx context.Context, parent *uuid.UUID, hist uuid.UUID, fields postgres.EdgeFields) error
	ReplaceEdge(ctx context.Context, parent *uuid.UUID, hist uuid.UUID, fields postgres.EdgeFields) error
	DeleteEdge(ctx context.Context, parent *uuid.UUID, hist uuid.UUID) error
}

// DocumentStore serves the combined revision-plus-event write.
type DocumentStore interface {
	CreateDocument(ctx context.Context, parent *uuid.UUID, pid, title string, published bool, uid string) (uuid.UUID, *time.Time, time.Time, error)
}

// SnapshotStore serves snapshot ingestion.
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, snap postgres.Snapshot, uid string) (time.Time, error)
	InsertSnapshotBatch(ctx context.Context, snaps []postgres.Snapshot, uid string) (int, error)
}

// UserStore records authentications.
type UserStore interface {
	UpsertUser(ctx context.Context, uid string) error
}
