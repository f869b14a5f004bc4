package profile_api

import (
	"net/http"

	"campus-events/internal/auth"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	profiles "campus-events/internal/profiles/service"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	ProfileService *profiles.ProfileService
	RoleService    *profiles.RoleService
	Logger         *logger.Logger
}

func NewHandler(profileSvc *profiles.ProfileService, roleSvc *profiles.RoleService, log *logger.Logger) *Handler {
	return &Handler{ProfileService: profileSvc, RoleService: roleSvc, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me/profile", h.GetProfile)
	r.Put("/me/profile", h.UpdateProfile)
	r.Get("/me/roles", h.GetMyRoles)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.ListGrants)
		r.Post("/", h.GrantRole)
		r.Delete("/", h.RevokeRole)
	})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.ProfileService.GetOrCreate(r.Context(), auth.ClaimsFrom(r.Context()))
	if err != nil {
		utils.WriteError(w, "Failed to get profile", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Profile retrieved", profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := utils.DecodeJSON(r, &update); err != nil {
		utils.WriteError(w, "Invalid profile payload", err)
		return
	}
	profile, err := h.ProfileService.Update(r.Context(), auth.ClaimsFrom(r.Context()), update)
	if err != nil {
		utils.WriteError(w, "Failed to update profile", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Profile updated", profile)
}

func (h *Handler) GetMyRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RoleService.Roles(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, "Failed to get roles", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Roles retrieved", map[string]interface{}{"roles": roles})
}

func (h *Handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	grants, err := h.RoleService.ListGrants(r.Context())
	if err != nil {
		utils.WriteError(w, "Failed to list roles", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Roles retrieved", grants)
}

func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	var grant models.RoleGrant
	if err := utils.DecodeJSON(r, &grant); err != nil {
		utils.WriteError(w, "Invalid role payload", err)
		return
	}
	if err := h.RoleService.Grant(r.Context(), grant, auth.UserID(r.Context())); err != nil {
		utils.WriteError(w, "Failed to grant role", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Role granted", grant)
}

func (h *Handler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	var grant models.RoleGrant
	if err := utils.DecodeJSON(r, &grant); err != nil {
		utils.WriteError(w, "Invalid role payload", err)
		return
	}
	if err := h.RoleService.Revoke(r.Context(), grant, auth.UserID(r.Context())); err != nil {
		utils.WriteError(w, "Failed to revoke role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
