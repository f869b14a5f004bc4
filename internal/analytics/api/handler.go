package analytics_api

import (
	"fmt"
	"net/http"

	"campus-events/internal/analytics"
	"campus-events/internal/apperror"
	"campus-events/internal/logger"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Handler handles analytics HTTP endpoints
type Handler struct {
	Service *analytics.Service
	Logger  *logger.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, logger *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

// RegisterAdminRoutes registers the stats routes. Callers apply the admin role check.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/", h.GetDashboardStats)
		r.Get("/attendance", h.GetAttendance)
		r.Get("/events/{eventId}", h.GetEventReport)
		r.Post("/events/batch", h.GetBatchAttendance)
	})
}

// GetDashboardStats handles the dashboard counters request
func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetDashboardStats(r.Context())
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("Failed to compute dashboard stats: %v", err))
		utils.WriteError(w, "Failed to get stats", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Stats retrieved", stats)
}

// GetAttendance handles the per-event attendance request
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.GetAttendance(r.Context())
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("Failed to compute attendance: %v", err))
		utils.WriteError(w, "Failed to get attendance", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Attendance retrieved", rows)
}

// GetEventReport handles the attendance report for a single event
func (h *Handler) GetEventReport(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	report, err := h.Service.GetEventReport(r.Context(), eventID)
	if err != nil {
		utils.WriteError(w, "Failed to get event report", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Event report retrieved", report)
}

type batchRequest struct {
	EventIDs []string `json:"event_ids"`
}

// GetBatchAttendance handles attendance for a list of events
func (h *Handler) GetBatchAttendance(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid request body", err)
		return
	}
	if len(req.EventIDs) > 100 {
		utils.WriteError(w, "Too many events", apperror.ValidationFailed("event_ids", "at most 100 events per request"))
		return
	}

	rows, err := h.Service.GetBatchAttendance(r.Context(), req.EventIDs)
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("Failed to compute batch attendance: %v", err))
		utils.WriteError(w, "Failed to get attendance", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Attendance retrieved", rows)
}
