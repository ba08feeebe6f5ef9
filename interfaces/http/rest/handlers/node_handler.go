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

// NodeHandler serves revision CRUD.
type NodeHandler struct {
	store    ports.NodeStore
	validate *validator.Validate
	logger   *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(store ports.NodeStore, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

func parseHid(r *http.Request) (uuid.UUID, bool) {
	hid, err := uuid.Parse(chi.URLParam(r, "hid"))
	return hid, err == nil
}

func (h *NodeHandler) decodeFields(w http.ResponseWriter, r *http.Request) (postgres.NodeFields, bool) {
	var fields postgres.NodeFields
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

// GetNode handles GET /node/{hid}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	hid, ok := parseHid(r)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "invalid_hid", nil)
		return
	}
	node, err := h.store.GetNode(r.Context(), hid)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"hid":       node.Hid.String(),
		"pid":       node.Pid,
		"title":     node.Title,
		"metadata":  json.RawMessage(node.Metadata),
		"published": node.Published,
		"tstamp":    common.FormatTimestampPtr(node.Tstamp),
	})
}

// ListNodes handles GET /node
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	hids, err := h.store.ListNodes(r.Context())
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	out := make([]string, 0, len(hids))
	for _, hid := range hids {
		out = append(out, hid.String())
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"nodes": out})
}

// CreateNode handles POST /node
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	hid, err := h.store.InsertNode(r.Context(), fields)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "inserted",
		"hid":    hid.String(),
	})
}

// UpdateNode handles PATCH /node/{hid}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	hid, ok := parseHid(r)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "invalid_hid", nil)
		return
	}
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	if err := h.store.UpdateNode(r.Context(), hid, fields); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"status": "updated"})
}

// ReplaceNode handles PUT /node/{hid}
func (h *NodeHandler) ReplaceNode(w http.ResponseWriter, r *http.Request) {
	hid, ok := parseHid(r)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "invalid_hid", nil)
		return
	}
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	newHid, err := h.store.ReplaceNode(r.Context(), hid, fields)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "replaced",
		"hid":    newHid.String(),
	})
}

// DeleteNode handles DELETE /node/{hid}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	hid, ok := parseHid(r)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "invalid_hid", nil)
		return
	}
	if err := h.store.DeleteNode(r.Context(), hid); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}
