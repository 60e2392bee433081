package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/abrank/internal/shared"
	"github.com/desertthunder/abrank/internal/stats"
	"github.com/desertthunder/abrank/internal/vote"
)

// TrackHandler accepts vote submissions and serves aggregate results.
type TrackHandler struct {
	service *stats.Service
	logger  *log.Logger
}

func NewTrackHandler(service *stats.Service, logger *log.Logger) *TrackHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &TrackHandler{service: service, logger: logger}
}

func (h *TrackHandler) Routes() []string {
	return []string{"/track"}
}

func (h *TrackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		h.handleVote(w, r)
	case http.MethodGet:
		h.handleStats(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
			"error": "method not allowed",
		})
	}
}

// handleVote records one vote. Submissions without a session identifier
// are rejected, and submissions that arrive while the aggregate store is
// unconfigured are acknowledged with a warning so the client can keep
// its local copy.
func (h *TrackHandler) handleVote(w http.ResponseWriter, r *http.Request) {
	var record vote.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
		return
	}

	if record.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "missing testId",
		})
		return
	}

	if err := h.service.RecordVote(r.Context(), record); err != nil {
		if errors.Is(err, shared.ErrStoreDisabled) {
			h.logger.Warn("vote received without a configured store", "session", record.SessionID)
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"warning": "results storage not configured",
			})
			return
		}

		h.logger.Error("failed to record vote", "session", record.SessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to record vote",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"testId":  record.SessionID,
	})
}

func (h *TrackHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	agg, err := h.service.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to load stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load stats",
		})
		return
	}

	writeJSON(w, http.StatusOK, agg)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to encode response", "error", err)
	}
}
