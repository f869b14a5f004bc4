package jobsync_api

import (
	"net/http"

	"campus-events/internal/jobsync"
	"campus-events/internal/logger"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Syncer *jobsync.Syncer
	Logger *logger.Logger
}

func NewHandler(syncer *jobsync.Syncer, log *logger.Logger) *Handler {
	return &Handler{Syncer: syncer, Logger: log}
}

// RegisterAdminRoutes mounts the on-demand sync trigger.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/internships/sync", h.SyncInternships)
}

func (h *Handler) SyncInternships(w http.ResponseWriter, r *http.Request) {
	report := h.Syncer.Run(r.Context())
	if report.Failed() {
		resp := utils.ErrorResponse("Internship sync failed", "all sources failed")
		resp.Data = report
		utils.WriteJSON(w, http.StatusBadGateway, resp)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Internship sync completed", report)
}
