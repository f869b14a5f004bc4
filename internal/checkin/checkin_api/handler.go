package checkin_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"campus-events/internal/auth"
	checkin "campus-events/internal/checkin/service"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/sse"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	CheckinService *checkin.CheckinService
	Emitter        *sse.CheckinEventEmitter
	Logger         *logger.Logger
	Heartbeat      time.Duration
}

func NewHandler(svc *checkin.CheckinService, emitter *sse.CheckinEventEmitter, log *logger.Logger) *Handler {
	return &Handler{CheckinService: svc, Emitter: emitter, Logger: log, Heartbeat: 25 * time.Second}
}

// RegisterRoutes mounts scanner routes. Callers apply the scanner/admin role check.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/checkin", h.CheckIn)
	r.Get("/checkin/events/{eventId}/stream", h.StreamEventCheckins)
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req models.CheckinRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid check-in request", err)
		return
	}

	result, err := h.CheckinService.CheckIn(r.Context(), req, auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, "Check-in failed", err)
		return
	}

	message := "Checked in"
	if result.AlreadyCheckedIn {
		message = "Already checked in"
	}
	utils.WriteSuccess(w, http.StatusOK, message, result)
}

// StreamEventCheckins pushes each successful check-in for the event as an SSE message.
func (h *Handler) StreamEventCheckins(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ctx := r.Context()
	eventChan := h.Emitter.SubscribeToEvent(ctx, eventID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"event_id\":%q}\n\n", eventID)
	flusher.Flush()
	h.Logger.Info("SSE", fmt.Sprintf("Client %s connected to check-in stream for event %s", auth.UserID(ctx), eventID))

	heartbeat := time.NewTicker(h.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case evt, ok := <-eventChan:
			if !ok {
				return
			}
			jsonData, err := json.Marshal(evt)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize check-in event: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: checkin\ndata: %s\n\n", jsonData)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from check-in stream for event %s", eventID))
			return
		}
	}
}
