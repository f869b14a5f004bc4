package event_api

import (
	"fmt"
	"net/http"
	"strconv"

	"campus-events/internal/auth"
	events "campus-events/internal/events/service"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
}

func NewHandler(svc *events.EventService, log *logger.Logger) *Handler {
	return &Handler{EventService: svc, Logger: log}
}

// RegisterPublicRoutes mounts read-only event routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/events", h.ListEvents)
	r.Get("/events/{eventId}", h.GetEvent)
}

// RegisterAdminRoutes mounts event management routes. Callers apply the admin role check.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Put("/{eventId}", h.UpdateEvent)
		r.Delete("/{eventId}", h.DeleteEvent)
	})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.EventFilter{
		Upcoming: q.Get("upcoming") == "true",
		Past:     q.Get("past") == "true",
		Category: q.Get("category"),
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		filter.Limit = n
	}

	list, err := h.EventService.ListEvents(r.Context(), filter)
	if err != nil {
		h.Logger.Error("EVENTS", fmt.Sprintf("Failed to list events: %v", err))
		utils.WriteError(w, "Failed to list events", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Events retrieved", list)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	event, err := h.EventService.GetEvent(r.Context(), eventID)
	if err != nil {
		utils.WriteError(w, "Failed to get event", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Event retrieved", event)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input models.EventInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, "Invalid event payload", err)
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), input, auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Warn("EVENTS", fmt.Sprintf("Create event rejected: %v", err))
		utils.WriteError(w, "Failed to create event", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Event created", event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var input models.EventInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, "Invalid event payload", err)
		return
	}

	event, err := h.EventService.UpdateEvent(r.Context(), eventID, input)
	if err != nil {
		utils.WriteError(w, "Failed to update event", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Event updated", event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if err := h.EventService.DeleteEvent(r.Context(), eventID); err != nil {
		utils.WriteError(w, "Failed to delete event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
