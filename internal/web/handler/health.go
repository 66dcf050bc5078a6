package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger checks that the backend answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and whether the backend is reachable
type HealthHandler struct {
	backend Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(backend Pinger) *HealthHandler {
	return &HealthHandler{backend: backend}
}

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// Health always answers 200 while the frontend is up
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Backend: "ok"}
	if err := h.backend.Ping(ctx); err != nil {
		resp.Backend = "unreachable"
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
