package handlers

import (
	"net/http"
)

// HealthHandler handles liveness requests.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HandleRoot handles GET / requests
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Session replay events API"})
}

// HandleHealth handles GET /health requests. It reports process liveness
// only; backend reachability is intentionally not checked.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
