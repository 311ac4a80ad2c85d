package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/swingscan/pkg/database"
	"github.com/wonny/swingscan/pkg/redis"
)

// HealthHandler reports process and dependency health
type HealthHandler struct {
	db    *database.DB  // optional
	redis *redis.Client // optional
}

// NewHealthHandler creates a new health handler; both dependencies may be nil
func NewHealthHandler(db *database.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb}
}

// HealthResponse is the /health body
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Database  *database.HealthStatus `json:"database,omitempty"`
	Redis     string                 `json:"redis,omitempty"`
}

// Check returns {status: "OK", timestamp}; "DEGRADED" when a configured dependency is down
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
	}

	if h.db != nil {
		status := h.db.HealthCheck(ctx)
		resp.Database = &status
		if !status.Healthy {
			resp.Status = "DEGRADED"
		}
	}

	if h.redis != nil && h.redis.Enabled() {
		resp.Redis = "ok"
		if err := h.redis.Ping(ctx); err != nil {
			resp.Redis = err.Error()
			resp.Status = "DEGRADED"
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
