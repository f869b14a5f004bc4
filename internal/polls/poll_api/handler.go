package poll_api

import (
	"fmt"
	"net/http"

	"campus-events/internal/auth"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	polls "campus-events/internal/polls/service"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	PollService *polls.PollService
	Logger      *logger.Logger
}

func NewHandler(svc *polls.PollService, log *logger.Logger) *Handler {
	return &Handler{PollService: svc, Logger: log}
}

func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/polls", h.ListActive)
	r.Get("/polls/{pollId}", h.GetPoll)
}

// RegisterRoutes mounts routes that need a signed-in caller.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/polls/{pollId}/vote", h.MyVote)
	r.Post("/polls/{pollId}/vote", h.Vote)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/polls", func(r chi.Router) {
		r.Get("/", h.ListAll)
		r.Post("/", h.CreatePoll)
		r.Patch("/{pollId}", h.UpdatePoll)
		r.Put("/{pollId}", h.UpdatePoll)
		r.Delete("/{pollId}", h.DeletePoll)
	})
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	list, err := h.PollService.ListActive(r.Context())
	if err != nil {
		h.Logger.Error("POLLS", fmt.Sprintf("Failed to list polls: %v", err))
		utils.WriteError(w, "Failed to list polls", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Polls retrieved", list)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.PollService.ListAll(r.Context())
	if err != nil {
		utils.WriteError(w, "Failed to list polls", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Polls retrieved", list)
}

func (h *Handler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.PollService.GetPoll(r.Context(), chi.URLParam(r, "pollId"))
	if err != nil {
		utils.WriteError(w, "Failed to get poll", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Poll retrieved", poll)
}

func (h *Handler) MyVote(w http.ResponseWriter, r *http.Request) {
	vote, err := h.PollService.MyVote(r.Context(), chi.URLParam(r, "pollId"), auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, "Failed to get vote", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Vote retrieved", vote)
}

func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid vote payload", err)
		return
	}
	poll, err := h.PollService.Vote(r.Context(), chi.URLParam(r, "pollId"), auth.UserID(r.Context()), req.OptionID)
	if err != nil {
		utils.WriteError(w, "Failed to record vote", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Vote recorded", poll)
}

func (h *Handler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var input models.PollInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, "Invalid poll payload", err)
		return
	}
	poll, err := h.PollService.CreatePoll(r.Context(), input, auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, "Failed to create poll", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Poll created", poll)
}

func (h *Handler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	var update models.PollUpdate
	if err := utils.DecodeJSON(r, &update); err != nil {
		utils.WriteError(w, "Invalid poll payload", err)
		return
	}
	poll, err := h.PollService.UpdatePoll(r.Context(), chi.URLParam(r, "pollId"), update)
	if err != nil {
		utils.WriteError(w, "Failed to update poll", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Poll updated", poll)
}

func (h *Handler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	if err := h.PollService.DeletePoll(r.Context(), chi.URLParam(r, "pollId")); err != nil {
		utils.WriteError(w, "Failed to delete poll", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
