package handlers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"graphdoc/application/ports"
	"graphdoc/infrastructure/persistence/postgres"
	"graphdoc/interfaces/http/rest/middleware"
	"graphdoc/pkg/common"
	"graphdoc/pkg/observability"
)

// SnapshotHandler ingests client-side measurement snapshots, one at a time
// or as an NDJSON batch.
type SnapshotHandler struct {
	store   ports.SnapshotStore
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(store ports.SnapshotStore, metrics *observability.Collector, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{store: store, metrics: metrics, logger: logger}
}

// parseSnapshot reads one snapshot object. A client-supplied uid is
// rejected: the uid column always comes from the authenticated session.
// The tstamp field, when present, is a unix timestamp in seconds.
func parseSnapshot(raw []byte) (postgres.Snapshot, bool) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload) == 0 {
		return postgres.Snapshot{}, false
	}
	if _, ok := payload["uid"]; ok {
		return postgres.Snapshot{}, false
	}

	var snap postgres.Snapshot
	for key, value := range payload {
		switch key {
		case "data":
			snap.Data = value
		case "source":
			if json.Unmarshal(value, &snap.Source) != nil {
				return postgres.Snapshot{}, false
			}
		case "tstamp":
			var epoch float64
			if json.Unmarshal(value, &epoch) != nil {
				return postgres.Snapshot{}, false
			}
			sec, frac := math.Modf(epoch)
			t := time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
			snap.Tstamp = &t
		default:
			return postgres.Snapshot{}, false
		}
	}
	return snap, true
}

// CreateSnapshot handles POST /snapshot
func (h *SnapshotHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid_snapshot", nil)
		return
	}
	snap, ok := parseSnapshot(body)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "invalid_snapshot", nil)
		return
	}

	tstamp, err := h.store.InsertSnapshot(r.Context(), snap, session.UID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}

	h.metrics.SnapshotsStored.Inc()
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "inserted",
		"tstamp": common.FormatTimestamp(tstamp),
	})
}

// CreateSnapshotBatch handles POST /snapshot/batch: one JSON object per
// line, blank lines skipped. Duplicates are silently dropped and the
// response counts the rows actually stored.
func (h *SnapshotHandler) CreateSnapshotBatch(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var snaps []postgres.Snapshot
	scanner := bufio.NewScanner(r.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		snap, ok := parseSnapshot(line)
		if !ok {
			common.RespondError(w, http.StatusBadRequest, "invalid_snapshot", nil)
			return
		}
		snaps = append(snaps, snap)
	}
	if err := scanner.Err(); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid_snapshot", nil)
		return
	}

	count, err := h.store.InsertSnapshotBatch(r.Context(), snaps, session.UID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}

	h.metrics.SnapshotsStored.Add(float64(count))
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "inserted",
		"count":  count,
	})
}
