package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphdoc/application/services"
	"graphdoc/interfaces/http/rest/middleware"
	"graphdoc/pkg/observability"
)

type fakeDocumentStore struct {
	parent    *uuid.UUID
	pid       string
	title     string
	published bool
	uid       string

	hid       uuid.UUID
	contentTs *time.Time
	err       error
}

func (f *fakeDocumentStore) CreateDocument(ctx context.Context, parent *uuid.UUID, pid, title string, published bool, uid string) (uuid.UUID, *time.Time, time.Time, error) {
	f.parent, f.pid, f.title, f.published, f.uid = parent, pid, title, published, uid
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return f.hid, f.contentTs, when, f.err
}

func newDocumentRequest(t *testing.T, parent, body string) *http.Request {
	t.Helper()
	target := "/document"
	if parent != "" {
		target += "/" + parent
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	if parent != "" {
		rctx.URLParams.Add("parent", parent)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	return req.WithContext(middleware.SetSession(req.Context(), services.Session{UID: "alice"}))
}

func TestDocumentHandler_CreateRoot(t *testing.T) {
	store := &fakeDocumentStore{hid: uuid.New()}
	h := NewDocumentHandler(store, observability.NewCollector("test"), zap.NewNop())

	rec := httptest.NewRecorder()
	h.CreateDocument(rec, newDocumentRequest(t, "", `{"pid":"42","title":"fix"}`))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, store.hid.String(), resp["hid"])
	// New revision rows carry no content timestamp of their own.
	tstamp, ok := resp["content_tstamp"]
	require.True(t, ok)
	assert.Nil(t, tstamp)
	assert.Equal(t, "2024-05-01T12:00:00.000000Z", resp["action_tstamp"])

	assert.Nil(t, store.parent)
	assert.Equal(t, "42", store.pid)
	assert.Equal(t, "fix", store.title)
	assert.False(t, store.published)
	assert.Equal(t, "alice", store.uid)
}

func TestDocumentHandler_CreateChild(t *testing.T) {
	parent := uuid.New()
	store := &fakeDocumentStore{hid: uuid.New()}
	h := NewDocumentHandler(store, observability.NewCollector("test"), zap.NewNop())

	rec := httptest.NewRecorder()
	h.CreateDocument(rec, newDocumentRequest(t, parent.String(),
		`{"pid":"42","title":"fix","published":true}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.parent)
	assert.Equal(t, parent, *store.parent)
	assert.True(t, store.published)
}

func TestDocumentHandler_FieldValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing pid", `{"title":"fix"}`, "need_pid_string"},
		{"pid wrong type", `{"pid":42,"title":"fix"}`, "need_pid_string"},
		{"missing title", `{"pid":"42"}`, "need_title_string"},
		{"title wrong type", `{"pid":"42","title":[]}`, "need_title_string"},
		{"published wrong type", `{"pid":"42","title":"fix","published":"yes"}`, "invalid_published_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeDocumentStore{}
			h := NewDocumentHandler(store, observability.NewCollector("test"), zap.NewNop())

			rec := httptest.NewRecorder()
			h.CreateDocument(rec, newDocumentRequest(t, "", tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.code+`"}`, rec.Body.String())
		})
	}
}

func TestDocumentHandler_InvalidParent(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentStore{}, observability.NewCollector("test"), zap.NewNop())

	rec := httptest.NewRecorder()
	h.CreateDocument(rec, newDocumentRequest(t, "not-a-uuid", `{"pid":"42","title":"fix"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_parent"}`, rec.Body.String())
}
