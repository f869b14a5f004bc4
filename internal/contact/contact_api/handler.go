package contact_api

import (
	"fmt"
	"net/http"

	contact "campus-events/internal/contact/service"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	ContactService *contact.ContactService
	Logger         *logger.Logger
}

func NewHandler(svc *contact.ContactService, log *logger.Logger) *Handler {
	return &Handler{ContactService: svc, Logger: log}
}

func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/contact", h.Submit)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/contact-messages", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/unread-count", h.UnreadCount)
		r.Patch("/{messageId}", h.SetRead)
		r.Delete("/{messageId}", h.Delete)
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var input models.ContactInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, "Invalid contact payload", err)
		return
	}
	msg, err := h.ContactService.Submit(r.Context(), input)
	if err != nil {
		h.Logger.Warn("CONTACT", fmt.Sprintf("Contact form rejected: %v", err))
		utils.WriteError(w, "Failed to send message", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Message received", map[string]string{"id": msg.ID})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.ContactService.List(r.Context(), r.URL.Query().Get("unread") == "true")
	if err != nil {
		utils.WriteError(w, "Failed to list messages", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Messages retrieved", messages)
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.ContactService.UnreadCount(r.Context())
	if err != nil {
		utils.WriteError(w, "Failed to count messages", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Unread count retrieved", map[string]int{"unread": n})
}

type readRequest struct {
	Read *bool `json:"read"`
}

// SetRead marks a message read, or unread with {"read": false}.
func (h *Handler) SetRead(w http.ResponseWriter, r *http.Request) {
	req := readRequest{}
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.WriteError(w, "Invalid payload", err)
			return
		}
	}
	read := true
	if req.Read != nil {
		read = *req.Read
	}

	msg, err := h.ContactService.SetRead(r.Context(), chi.URLParam(r, "messageId"), read)
	if err != nil {
		utils.WriteError(w, "Failed to update message", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Message updated", msg)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ContactService.Delete(r.Context(), chi.URLParam(r, "messageId")); err != nil {
		utils.WriteError(w, "Failed to delete message", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
