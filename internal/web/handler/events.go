package handler

import (
	"net/http"

	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/sse"
)

// EventsHandler streams the scope's updates
type EventsHandler struct {
	hubManager *sse.HubManager
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(hubManager *sse.HubManager) *EventsHandler {
	return &EventsHandler{hubManager: hubManager}
}

// Events handles the SSE connection of one tab
func (h *EventsHandler) Events(w http.ResponseWriter, r *http.Request) {
	hub := h.hubManager.GetOrCreateHub(middleware.GetScope(r.Context()))
	sse.ServeSSE(w, r, hub)
}
