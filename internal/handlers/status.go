package handlers

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/nikhil/tsview/internal/logger"
	"github.com/nikhil/tsview/internal/models"
)

// StatusProvider is the cache surface the handler depends on.
type StatusProvider interface {
	GetOrRefresh(ctx context.Context) (*models.ServerInfo, error)
}

// StatusHandler serves the topology endpoint and the liveness probe.
type StatusHandler struct {
	cache StatusProvider
	log   *logger.Logger
}

// NewStatusHandler initializes a new status handler around the shared cache.
func NewStatusHandler(cache StatusProvider) *StatusHandler {
	return &StatusHandler{
		cache: cache,
		log:   logger.NewLogger("status-handler"),
	}
}

// GetStatus handles GET /. The HTTP status is 200 no matter what happened
// upstream; the envelope's success flag and error string carry the outcome.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	info, err := h.cache.GetOrRefresh(r.Context())

	resp := models.StatusResponse{
		Success:    err == nil,
		ServerInfo: info,
	}
	if err != nil {
		h.log.Error("status request failed", "error", err)
		msg := err.Error()
		resp.Error = &msg
		resp.ServerInfo = nil
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// GetHealth handles GET /healthz. It reports process liveness only and
// never touches the remote server.
func (h *StatusHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
