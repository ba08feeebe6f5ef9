package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphdoc/application/ports"
	"graphdoc/infrastructure/persistence/postgres"
	"graphdoc/pkg/common"
)

// EdgeHandler serves history-event CRUD. Routes come in two flavors:
// /edge/{parent}/{hist} and /edge/null/{hist} for root events.
type EdgeHandler struct {
	store    ports.EdgeStore
	validate *validator.Validate
	logger   *zap.Logger
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(store ports.EdgeStore, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

// parseEdgeKey reads the (parent, hist) key from the URL; the parent param
// is absent on the /edge/null/{hist} routes.
func parseEdgeKey(r *http.Request) (*uuid.UUID, uuid.UUID, bool) {
	hist, err := uuid.Parse(chi.URLParam(r, "hist"))
	if err != nil {
		return nil, uuid.Nil, false
	}
	raw := chi.URLParam(r, "parent")
	if raw == "" {
		return nil, hist, true
	}
	parent, err := uuid.Parse(raw)
	if err != nil {
		return nil, uuid.Nil, false
	}
	return &parent, hist, true
}

func (h *EdgeHandler) decodeFields(w http.ResponseWriter, r *http.Request) (postgres.EdgeFields, bool) {
	var fields postgres.EdgeFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid_json", nil)
		return fields, false
	}
	if err := h.validate.Struct(fields); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid_fields", nil)
		return fields, false
	}
	return fields, true
}

// GetEdge handles GET /edge/{parent}/{hist} and GET /edge/null/{hist}
func (h *EdgeHandler) GetEdge(w http.ResponseWriter, r *http.Request) {
	parent, hist, ok := parseEdgeKey(r)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "invalid_edge_key", nil)
		return
	}
	edge, err := h.store.GetEdge(r.Context(), parent, hist)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	var parentStr *string
	if edge.Parent != nil {
		s := edge.Parent.String()
		parentStr = &s
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"parent":  parentStr,
		"hist":    edge.Hist.String(),
		"uid":     edge.UID,
		"reason":  edge.Reason,
		"comment": edge.Comment,
		"tstamp":  common.FormatTimestamp(edge.Tstamp),
	})
}

// ListEdges handles GET /edge
func (h *EdgeHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	edges, err := h.store.ListEdges(r.Context())
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	out := make([]map[string]interface{}, 0, len(edges))
	for _, e := range edges {
		var parentStr *string
		if e.Parent != nil {
			s := e.Parent.String()
			parentStr = &s
		}
		out = append(out, map[string]interface{}{
			"parent": parentStr,
			"hist":   e.Hist.String(),
		})
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"edges": out})
}

// CreateEdge handles POST /edge/{parent}/{hist} and POST /edge/null/{hist}
func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	parent, hist, ok := parseEdgeKey(r)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "invalid_edge_key", nil)
		return
	}
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	if err := h.store.InsertEdge(r.Context(), parent, hist, fields); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"status": "inserted"})
}

// UpdateEdge handles PATCH on both edge routes.
func (h *EdgeHandler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	parent, hist, ok := parseEdgeKey(r)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "invalid_edge_key", nil)
		return
	}
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	if err := h.store.UpdateEdge(r.Context(), parent, hist, fields); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"status": "updated"})
}

// ReplaceEdge handles PUT on both edge routes.
func (h *EdgeHandler) ReplaceEdge(w http.ResponseWriter, r *http.Request) {
	parent, hist, ok := parseEdgeKey(r)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "invalid_edge_key", nil)
		return
	}
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	if err := h.store.ReplaceEdge(r.Context(), parent, hist, fields); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"status": "replaced"})
}

// DeleteEdge handles DELETE on both edge routes.
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	parent, hist, ok := parseEdgeKey(r)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "invalid_edge_key", nil)
		return
	}
	if err := h.store.DeleteEdge(r.Context(), parent, hist); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}
