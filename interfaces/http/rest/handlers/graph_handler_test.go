package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphdoc/infrastructure/persistence/postgres"
	apperrors "graphdoc/pkg/errors"
	"graphdoc/pkg/observability"
)

type fakeGraphStore struct {
	nodes []postgres.HistRow
	edges []postgres.EventRow
	err   error
}

func (f *fakeGraphStore) GetGraph(ctx context.Context, hid uuid.UUID) ([]postgres.HistRow, []postgres.EventRow, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.nodes, f.edges, nil
}

func newGraphRequest(t *testing.T, hid string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/graph/"+hid, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("hid", hid)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGraphHandler_GetGraph(t *testing.T) {
	root := uuid.New()
	child := uuid.New()
	when := time.Date(2024, 5, 1, 12, 0, 0, 123456000, time.UTC)

	store := &fakeGraphStore{
		nodes: []postgres.HistRow{
			{Hid: root, Pid: "1", Title: "first", Tstamp: &when},
			{Hid: child, Pid: "2", Title: "second", Tstamp: &when},
		},
		edges: []postgres.EventRow{
			{Parent: nil, Hist: root, Reason: "insert", Tstamp: when},
			{Parent: &root, Hist: child, Reason: "update", Tstamp: when},
		},
	}
	h := NewGraphHandler(store, observability.NewCollector("test"), zap.NewNop())

	rec := httptest.NewRecorder()
	h.GetGraph(rec, newGraphRequest(t, root.String()))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Nodes []map[string]interface{} `json:"nodes"`
		Edges []map[string]interface{} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Nodes, 2)
	require.Len(t, payload.Edges, 2)

	assert.Equal(t, root.String(), payload.Nodes[0]["hid"])
	assert.Equal(t, "2024-05-01T12:00:00.123456Z", payload.Nodes[0]["tstamp"])
	assert.Nil(t, payload.Edges[0]["parent"])
	assert.Equal(t, "insert", payload.Edges[0]["reason"])
	assert.Equal(t, root.String(), payload.Edges[1]["parent"])
}

func TestGraphHandler_NullContentTimestamp(t *testing.T) {
	// Revisions written through the document endpoint never get a content
	// timestamp; they must serialize as null, not fail.
	root := uuid.New()
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeGraphStore{
		nodes: []postgres.HistRow{{Hid: root, Pid: "1", Title: "first"}},
		edges: []postgres.EventRow{{Hist: root, Reason: "insert", Tstamp: when}},
	}
	h := NewGraphHandler(store, observability.NewCollector("test"), zap.NewNop())

	rec := httptest.NewRecorder()
	h.GetGraph(rec, newGraphRequest(t, root.String()))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Nodes []map[string]interface{} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Nodes, 1)
	tstamp, ok := payload.Nodes[0]["tstamp"]
	require.True(t, ok)
	assert.Nil(t, tstamp)
}

func TestGraphHandler_InvalidHid(t *testing.T) {
	h := NewGraphHandler(&fakeGraphStore{}, observability.NewCollector("test"), zap.NewNop())

	rec := httptest.NewRecorder()
	h.GetGraph(rec, newGraphRequest(t, "not-a-uuid"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_hid"}`, rec.Body.String())
}

func TestGraphHandler_StoreFailure(t *testing.T) {
	store := &fakeGraphStore{err: apperrors.NewInternal("internal_database_error", nil)}
	h := NewGraphHandler(store, observability.NewCollector("test"), zap.NewNop())

	rec := httptest.NewRecorder()
	h.GetGraph(rec, newGraphRequest(t, uuid.NewString()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
