package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/validation"

	"github.com/google/uuid"
)

type CatalogDBLayer interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProjectByID(ctx context.Context, id string) (*models.Project, error)
	CreateProject(ctx context.Context, project *models.Project) error
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id string) error

	ListInternships(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, error)
	GetInternshipByID(ctx context.Context, id string) (*models.Internship, error)
	CreateInternship(ctx context.Context, internship *models.Internship) error
	UpdateInternship(ctx context.Context, internship *models.Internship) error
	DeleteInternship(ctx context.Context, id string) error

	ListSocialLinks(ctx context.Context) ([]models.SocialLink, error)
	GetSocialLinkByID(ctx context.Context, id string) (*models.SocialLink, error)
	CreateSocialLink(ctx context.Context, link *models.SocialLink) error
	UpdateSocialLink(ctx context.Context, link *models.SocialLink) error
	DeleteSocialLink(ctx context.Context, id string) error
}

// CatalogService manages the marketing content: projects, internships and social links.
type CatalogService struct {
	DB     CatalogDBLayer
	Logger *logger.Logger
	Now    func() time.Time
}

func NewCatalogService(db CatalogDBLayer, log *logger.Logger) *CatalogService {
	return &CatalogService{DB: db, Logger: log, Now: func() time.Time { return time.Now().UTC() }}
}

// cleanTags lowercases, trims and dedupes tags and drops blanks.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// Projects

func (s *CatalogService) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := s.DB.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *CatalogService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.DB.GetProjectByID(ctx, id)
}

func (s *CatalogService) CreateProject(ctx context.Context, input models.ProjectInput) (*models.Project, error) {
	input.Tags = cleanTags(input.Tags)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	project := &models.Project{ID: uuid.New().String(), CreatedAt: s.Now()}
	applyProject(project, input)

	if err := s.DB.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	s.Logger.LogDatabase("INSERT", "projects", project.ID)
	return project, nil
}

func (s *CatalogService) UpdateProject(ctx context.Context, id string, input models.ProjectInput) (*models.Project, error) {
	input.Tags = cleanTags(input.Tags)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	project, err := s.DB.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProject(project, input)
	project.UpdatedAt = s.Now()

	if err := s.DB.UpdateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project %s: %w", id, err)
	}
	return project, nil
}

func (s *CatalogService) DeleteProject(ctx context.Context, id string) error {
	return s.DB.DeleteProject(ctx, id)
}

func applyProject(project *models.Project, input models.ProjectInput) {
	project.Title = strings.TrimSpace(input.Title)
	project.Description = input.Description
	project.ImageURL = input.ImageURL
	project.RepoURL = input.RepoURL
	project.DemoURL = input.DemoURL
	project.Tags = input.Tags
	project.Featured = input.Featured
}

// Internships

func (s *CatalogService) ListInternships(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 200
	}
	internships, err := s.DB.ListInternships(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list internships: %w", err)
	}
	return internships, nil
}

func (s *CatalogService) GetInternship(ctx context.Context, id string) (*models.Internship, error) {
	return s.DB.GetInternshipByID(ctx, id)
}

// CreateInternship stores an admin-entered posting under the manual source.
func (s *CatalogService) CreateInternship(ctx context.Context, input models.InternshipInput) (*models.Internship, error) {
	input.Tags = cleanTags(input.Tags)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	internship := &models.Internship{
		ID:         id,
		Source:     models.InternshipSourceManual,
		ExternalID: id,
		CreatedAt:  s.Now(),
	}
	applyInternship(internship, input)

	if err := s.DB.CreateInternship(ctx, internship); err != nil {
		return nil, fmt.Errorf("failed to create internship: %w", err)
	}
	s.Logger.LogDatabase("INSERT", "internships", internship.ID)
	return internship, nil
}

func (s *CatalogService) UpdateInternship(ctx context.Context, id string, input models.InternshipInput) (*models.Internship, error) {
	input.Tags = cleanTags(input.Tags)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	internship, err := s.DB.GetInternshipByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInternship(internship, input)
	internship.UpdatedAt = s.Now()

	if err := s.DB.UpdateInternship(ctx, internship); err != nil {
		return nil, fmt.Errorf("failed to update internship %s: %w", id, err)
	}
	return internship, nil
}

func (s *CatalogService) DeleteInternship(ctx context.Context, id string) error {
	return s.DB.DeleteInternship(ctx, id)
}

func applyInternship(internship *models.Internship, input models.InternshipInput) {
	internship.Title = strings.TrimSpace(input.Title)
	internship.Company = strings.TrimSpace(input.Company)
	internship.Location = strings.TrimSpace(input.Location)
	internship.URL = input.URL
	internship.Description = input.Description
	internship.Tags = input.Tags
	internship.Remote = input.Remote
	if !input.PostedAt.IsZero() {
		internship.PostedAt = input.PostedAt.UTC()
	}
}

// Social links

func (s *CatalogService) ListSocialLinks(ctx context.Context) ([]models.SocialLink, error) {
	links, err := s.DB.ListSocialLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list social links: %w", err)
	}
	return links, nil
}

func (s *CatalogService) CreateSocialLink(ctx context.Context, input models.SocialLinkInput) (*models.SocialLink, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	link := &models.SocialLink{
		ID:        uuid.New().String(),
		Platform:  strings.ToLower(strings.TrimSpace(input.Platform)),
		URL:       input.URL,
		Position:  input.Position,
		CreatedAt: s.Now(),
	}
	if err := s.DB.CreateSocialLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create social link: %w", err)
	}
	return link, nil
}

func (s *CatalogService) UpdateSocialLink(ctx context.Context, id string, input models.SocialLinkInput) (*models.SocialLink, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	link, err := s.DB.GetSocialLinkByID(ctx, id)
	if err != nil {
		return nil, err
	}
	link.Platform = strings.ToLower(strings.TrimSpace(input.Platform))
	link.URL = input.URL
	link.Position = input.Position

	if err := s.DB.UpdateSocialLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to update social link %s: %w", id, err)
	}
	return link, nil
}

func (s *CatalogService) DeleteSocialLink(ctx context.Context, id string) error {
	return s.DB.DeleteSocialLink(ctx, id)
}
