package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/tablefolk/api/internal/middleware"
	"github.com/tablefolk/api/internal/model"
	"github.com/tablefolk/api/internal/service"
)

// UpdatesHandler handles SSE live update streaming
type UpdatesHandler struct {
	updateHub *service.UpdateHub
}

// NewUpdatesHandler creates a new updates handler
func NewUpdatesHandler(updateHub *service.UpdateHub) *UpdatesHandler {
	return &UpdatesHandler{
		updateHub: updateHub,
	}
}

// Stream handles GET /v1/updates
// This endpoint streams SSE updates for the authenticated account
func (h *UpdatesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	// Check if the client supports SSE
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, model.NewInternalError("streaming not supported"))
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Generate subscriber ID
	subscriberID := uuid.New().String()

	// Subscribe to updates
	sub := h.updateHub.Subscribe(accountID, subscriberID)
	defer h.updateHub.Unsubscribe(accountID, subscriberID)

	// Send initial connection event
	fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":\"%s\"}\n\n", subscriberID)
	flusher.Flush()

	// Stream updates
	for {
		select {
		case update, ok := <-sub.Updates:
			if !ok {
				return
			}
			fmt.Fprint(w, update.Format())
			flusher.Flush()

		case <-sub.Done:
			return

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}
