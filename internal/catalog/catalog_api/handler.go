package catalog_api

import (
	"fmt"
	"net/http"
	"strconv"

	catalog "campus-events/internal/catalog/service"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	CatalogService *catalog.CatalogService
	Logger         *logger.Logger
}

func NewHandler(svc *catalog.CatalogService, log *logger.Logger) *Handler {
	return &Handler{CatalogService: svc, Logger: log}
}

func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/projects", h.ListProjects)
	r.Get("/projects/{projectId}", h.GetProject)
	r.Get("/internships", h.ListInternships)
	r.Get("/internships/{internshipId}", h.GetInternship)
	r.Get("/social-links", h.ListSocialLinks)
}

// RegisterAdminRoutes mounts catalog management routes. Callers apply the admin role check.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Post("/", h.CreateProject)
		r.Put("/{projectId}", h.UpdateProject)
		r.Delete("/{projectId}", h.DeleteProject)
	})
	r.Route("/internships", func(r chi.Router) {
		r.Post("/", h.CreateInternship)
		r.Put("/{internshipId}", h.UpdateInternship)
		r.Delete("/{internshipId}", h.DeleteInternship)
	})
	r.Route("/social-links", func(r chi.Router) {
		r.Post("/", h.CreateSocialLink)
		r.Put("/{linkId}", h.UpdateSocialLink)
		r.Delete("/{linkId}", h.DeleteSocialLink)
	})
}

// Projects

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.CatalogService.ListProjects(r.Context())
	if err != nil {
		h.Logger.Error("CATALOG", fmt.Sprintf("Failed to list projects: %v", err))
		utils.WriteError(w, "Failed to list projects", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Projects retrieved", projects)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.CatalogService.GetProject(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		utils.WriteError(w, "Failed to get project", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Project retrieved", project)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var input models.ProjectInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, "Invalid project payload", err)
		return
	}
	project, err := h.CatalogService.CreateProject(r.Context(), input)
	if err != nil {
		utils.WriteError(w, "Failed to create project", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Project created", project)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var input models.ProjectInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, "Invalid project payload", err)
		return
	}
	project, err := h.CatalogService.UpdateProject(r.Context(), chi.URLParam(r, "projectId"), input)
	if err != nil {
		utils.WriteError(w, "Failed to update project", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Project updated", project)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.CatalogService.DeleteProject(r.Context(), chi.URLParam(r, "projectId")); err != nil {
		utils.WriteError(w, "Failed to delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Internships

func (h *Handler) ListInternships(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.InternshipFilter{Query: q.Get("q"), Source: q.Get("source")}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		filter.Limit = n
	}

	internships, err := h.CatalogService.ListInternships(r.Context(), filter)
	if err != nil {
		h.Logger.Error("CATALOG", fmt.Sprintf("Failed to list internships: %v", err))
		utils.WriteError(w, "Failed to list internships", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Internships retrieved", internships)
}

func (h *Handler) GetInternship(w http.ResponseWriter, r *http.Request) {
	internship, err := h.CatalogService.GetInternship(r.Context(), chi.URLParam(r, "internshipId"))
	if err != nil {
		utils.WriteError(w, "Failed to get internship", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Internship retrieved", internship)
}

func (h *Handler) CreateInternship(w http.ResponseWriter, r *http.Request) {
	var input models.InternshipInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, "Invalid internship payload", err)
		return
	}
	internship, err := h.CatalogService.CreateInternship(r.Context(), input)
	if err != nil {
		utils.WriteError(w, "Failed to create internship", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Internship created", internship)
}

func (h *Handler) UpdateInternship(w http.ResponseWriter, r *http.Request) {
	var input models.InternshipInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, "Invalid internship payload", err)
		return
	}
	internship, err := h.CatalogService.UpdateInternship(r.Context(), chi.URLParam(r, "internshipId"), input)
	if err != nil {
		utils.WriteError(w, "Failed to update internship", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Internship updated", internship)
}

func (h *Handler) DeleteInternship(w http.ResponseWriter, r *http.Request) {
	if err := h.CatalogService.DeleteInternship(r.Context(), chi.URLParam(r, "internshipId")); err != nil {
		utils.WriteError(w, "Failed to delete internship", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Social links

func (h *Handler) ListSocialLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.CatalogService.ListSocialLinks(r.Context())
	if err != nil {
		utils.WriteError(w, "Failed to list social links", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Social links retrieved", links)
}

func (h *Handler) CreateSocialLink(w http.ResponseWriter, r *http.Request) {
	var input models.SocialLinkInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, "Invalid social link payload", err)
		return
	}
	link, err := h.CatalogService.CreateSocialLink(r.Context(), input)
	if err != nil {
		utils.WriteError(w, "Failed to create social link", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Social link created", link)
}

func (h *Handler) UpdateSocialLink(w http.ResponseWriter, r *http.Request) {
	var input models.SocialLinkInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, "Invalid social link payload", err)
		return
	}
	link, err := h.CatalogService.UpdateSocialLink(r.Context(), chi.URLParam(r, "linkId"), input)
	if err != nil {
		utils.WriteError(w, "Failed to update social link", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Social link updated", link)
}

func (h *Handler) DeleteSocialLink(w http.ResponseWriter, r *http.Request) {
	if err := h.CatalogService.DeleteSocialLink(r.Context(), chi.URLParam(r, "linkId")); err != nil {
		utils.WriteError(w, "Failed to delete social link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
