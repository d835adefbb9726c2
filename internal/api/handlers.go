package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/wonny/edge10/backend/internal/artifacts"
	"github.com/wonny/edge10/backend/pkg/logger"
)

const defaultCandidateLimit = 100

type handlers struct {
	store Store
	log   *logger.Logger
}

func newHandlers(store Store, log *logger.Logger) *handlers {
	return &handlers{store: store, log: log}
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) latestRun(w http.ResponseWriter, r *http.Request) {
	run, ok, err := h.store.LatestRun(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no runs recorded")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *handlers) latestCandidates(w http.ResponseWriter, r *http.Request) {
	run, ok, err := h.store.LatestRun(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no runs recorded")
		return
	}

	limit := defaultCandidateLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	candidates, err := h.store.Candidates(r.Context(), run.ID, limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	if candidates == nil {
		candidates = []artifacts.StoredCandidate{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":     run.ID,
		"candidates": candidates,
	})
}

func (h *handlers) latestExclusions(w http.ResponseWriter, r *http.Request) {
	run, ok, err := h.store.LatestRun(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no runs recorded")
		return
	}

	exclusions, err := h.store.Exclusions(r.Context(), run.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":     run.ID,
		"exclusions": exclusions,
	})
}

func (h *handlers) fail(w http.ResponseWriter, err error) {
	h.log.WithError(err).Error("Request failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
