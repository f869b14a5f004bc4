package registration_api

import (
	"fmt"
	"net/http"

	"campus-events/internal/apperror"
	"campus-events/internal/auth"
	"campus-events/internal/logger"
	registrations "campus-events/internal/registrations/service"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	RegistrationService *registrations.RegistrationService
	Logger              *logger.Logger
}

func NewHandler(svc *registrations.RegistrationService, log *logger.Logger) *Handler {
	return &Handler{RegistrationService: svc, Logger: log}
}

// RegisterRoutes mounts the caller-scoped RSVP routes. Requires auth.Middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/events/{eventId}/registration", h.Register)
	r.Delete("/events/{eventId}/registration", h.Cancel)
	r.Route("/me/registrations", func(r chi.Router) {
		r.Get("/", h.ListMine)
		r.Get("/{registrationId}", h.GetMine)
		r.Get("/{registrationId}/qr", h.TicketQR)
		r.Get("/{registrationId}/ticket", h.TicketPDF)
	})
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/events/{eventId}/registrations", h.ListByEvent)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())
	if claims == nil {
		utils.WriteError(w, "Authentication required", apperror.Unauthorized("missing identity"))
		return
	}
	eventID := chi.URLParam(r, "eventId")

	reg, err := h.RegistrationService.Register(r.Context(), eventID, claims)
	if err != nil {
		h.Logger.Warn("RSVP", fmt.Sprintf("Registration of %s for %s failed: %v", claims.Subject, eventID, err))
		utils.WriteError(w, "Failed to register", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Registered", reg)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	reg, err := h.RegistrationService.Cancel(r.Context(), eventID, auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, "Failed to cancel registration", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Registration cancelled", reg)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	regs, err := h.RegistrationService.ListMine(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("RSVP", fmt.Sprintf("Failed to list registrations: %v", err))
		utils.WriteError(w, "Failed to list registrations", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Registrations retrieved", regs)
}

func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	reg, err := h.RegistrationService.GetOwned(r.Context(), chi.URLParam(r, "registrationId"), auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, "Failed to get registration", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Registration retrieved", reg)
}

func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	registrationID := chi.URLParam(r, "registrationId")
	png, err := h.RegistrationService.TicketQR(r.Context(), registrationID, auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, "Failed to generate QR code", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) TicketPDF(w http.ResponseWriter, r *http.Request) {
	registrationID := chi.URLParam(r, "registrationId")
	pdf, err := h.RegistrationService.TicketPDF(r.Context(), registrationID, auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("RSVP", fmt.Sprintf("Ticket PDF for %s failed: %v", registrationID, err))
		utils.WriteError(w, "Failed to generate ticket", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ticket-%s.pdf"`, registrationID))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (h *Handler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	regs, err := h.RegistrationService.ListByEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		utils.WriteError(w, "Failed to list registrations", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Registrations retrieved", regs)
}
