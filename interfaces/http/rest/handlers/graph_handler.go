package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphdoc/application/ports"
	"graphdoc/pkg/common"
	"graphdoc/pkg/observability"
)

// GraphHandler serves whole-graph reads for the visualization client.
type GraphHandler struct {
	store   ports.GraphStore
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(store ports.GraphStore, metrics *observability.Collector, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{store: store, metrics: metrics, logger: logger}
}

type graphNodePayload struct {
	Hid    string  `json:"hid"`
	Pid    string  `json:"pid"`
	Title  string  `json:"title"`
	Tstamp *string `json:"tstamp"`
}

type graphEdgePayload struct {
	Parent  *string `json:"parent"`
	Hist    string  `json:"hist"`
	Reason  string  `json:"reason"`
	Comment *string `json:"comment"`
	Tstamp  *string `json:"tstamp"`
}

type graphPayload struct {
	Nodes []graphNodePayload `json:"nodes"`
	Edges []graphEdgePayload `json:"edges"`
}

// GetGraph handles GET /graph/{hid}: the full connected component of the
// history DAG containing that revision, in one response.
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	hid, err := uuid.Parse(chi.URLParam(r, "hid"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid_hid", nil)
		return
	}

	nodes, edges, err := h.store.GetGraph(r.Context(), hid)
	if err != nil {
		h.logger.Error("Failed to load graph",
			zap.String("hid", hid.String()),
			zap.Error(err),
		)
		respondAppError(w, h.logger, err)
		return
	}

	payload := graphPayload{
		Nodes: make([]graphNodePayload, 0, len(nodes)),
		Edges: make([]graphEdgePayload, 0, len(edges)),
	}
	for _, n := range nodes {
		payload.Nodes = append(payload.Nodes, graphNodePayload{
			Hid:    n.Hid.String(),
			Pid:    n.Pid,
			Title:  n.Title,
			Tstamp: common.FormatTimestampPtr(n.Tstamp),
		})
	}
	for _, e := range edges {
		ep := graphEdgePayload{
			Hist:    e.Hist.String(),
			Reason:  e.Reason,
			Comment: e.Comment,
			Tstamp:  common.FormatTimestamp(e.Tstamp),
		}
		if e.Parent != nil {
			parent := e.Parent.String()
			ep.Parent = &parent
		}
		payload.Edges = append(payload.Edges, ep)
	}

	h.metrics.GraphsServed.Inc()
	common.RespondJSON(w, http.StatusOK, payload)
}
