package api

import (
	"net/http"
	"time"

	respond "github.com/lorettarehm/audhd.ai/internal/api/respond"
)

// ServiceHealth is the view of health.ServiceHealthChecker the handler needs.
type ServiceHealth interface {
	IsHealthy() bool
	Down() []string
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	health ServiceHealth
}

// NewHealthHandler creates a new health handler. A nil checker reports unhealthy.
func NewHealthHandler(h ServiceHealth) *HealthHandler { return &HealthHandler{health: h} }

// CheckHealth handles GET /api/health
// Always returns 200; body reports UP/DOWN. 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "DOWN"
	down := []string{}
	if h.health != nil {
		if h.health.IsHealthy() {
			status = "UP"
		}
		if d := h.health.Down(); d != nil {
			down = d
		}
	}
	response := map[string]interface{}{
		"status":    status,
		"down":      down,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	respond.WriteJSON(w, http.StatusOK, response)
}
