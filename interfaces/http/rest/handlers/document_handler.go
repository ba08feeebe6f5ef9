package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphdoc/application/ports"
	"graphdoc/interfaces/http/rest/middleware"
	"graphdoc/pkg/common"
	"graphdoc/pkg/observability"
)

// DocumentHandler serves the combined write: one revision row plus the
// event edge linking it to its parent, in a single transaction.
type DocumentHandler struct {
	store   ports.DocumentStore
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(store ports.DocumentStore, metrics *observability.Collector, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{store: store, metrics: metrics, logger: logger}
}

// CreateDocument handles POST /document and POST /document/{parent}.
// Field types are checked individually so clients get a specific error
// code for each mistake instead of a generic validation failure.
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var parent *uuid.UUID
	if raw := chi.URLParam(r, "parent"); raw != "" {
		p, err := uuid.Parse(raw)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "invalid_parent", nil)
			return
		}
		parent = &p
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	var pid string
	if raw, ok := payload["pid"]; !ok || json.Unmarshal(raw, &pid) != nil {
		common.RespondError(w, http.StatusBadRequest, "need_pid_string", nil)
		return
	}
	var title string
	if raw, ok := payload["title"]; !ok || json.Unmarshal(raw, &title) != nil {
		common.RespondError(w, http.StatusBadRequest, "need_title_string", nil)
		return
	}
	published := false
	if raw, ok := payload["published"]; ok {
		if json.Unmarshal(raw, &published) != nil {
			common.RespondError(w, http.StatusBadRequest, "invalid_published_type", nil)
			return
		}
	}

	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	hid, contentTstamp, actionTstamp, err := h.store.CreateDocument(
		r.Context(), parent, pid, title, published, session.UID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}

	h.metrics.DocumentsCreated.Inc()
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"hid":            hid.String(),
		"content_tstamp": common.FormatTimestampPtr(contentTstamp),
		"action_tstamp":  common.FormatTimestamp(actionTstamp),
	})
}
