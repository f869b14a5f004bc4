package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"campus-events/internal/apperror"
	"campus-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func getByID(ctx context.Context, q *bun.SelectQuery, resource, id string) error {
	err := q.Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(resource, id)
	}
	return err
}

func deleteByID(ctx context.Context, q *bun.DeleteQuery, resource, id string) error {
	res, err := q.Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, resource, id)
}

func expectRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

// Projects

func (d *DB) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	err := d.Bun.NewSelect().
		Model(&projects).
		Order("featured DESC", "created_at DESC").
		Scan(ctx)
	return projects, err
}

func (d *DB) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := getByID(ctx, d.Bun.NewSelect().Model(&project), "project", id); err != nil {
		return nil, err
	}
	return &project, nil
}

func (d *DB) CreateProject(ctx context.Context, project *models.Project) error {
	_, err := d.Bun.NewInsert().Model(project).Exec(ctx)
	return err
}

func (d *DB) UpdateProject(ctx context.Context, project *models.Project) error {
	res, err := d.Bun.NewUpdate().
		Model(project).
		Column("title", "description", "image_url", "repo_url", "demo_url", "tags", "featured", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, "project", project.ID)
}

func (d *DB) DeleteProject(ctx context.Context, id string) error {
	return deleteByID(ctx, d.Bun.NewDelete().Model((*models.Project)(nil)), "project", id)
}

// Internships

// ListInternships filters by source and by a case-insensitive substring of title or company.
func (d *DB) ListInternships(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, error) {
	internships := []models.Internship{}
	q := d.Bun.NewSelect().Model(&internships)

	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}
	if query := strings.TrimSpace(filter.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(title) LIKE ?", like).WhereOr("LOWER(company) LIKE ?", like)
		})
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	err := q.OrderExpr("posted_at DESC NULLS LAST").Order("created_at DESC").Scan(ctx)
	return internships, err
}

func (d *DB) GetInternshipByID(ctx context.Context, id string) (*models.Internship, error) {
	var internship models.Internship
	if err := getByID(ctx, d.Bun.NewSelect().Model(&internship), "internship", id); err != nil {
		return nil, err
	}
	return &internship, nil
}

func (d *DB) CreateInternship(ctx context.Context, internship *models.Internship) error {
	_, err := d.Bun.NewInsert().Model(internship).Exec(ctx)
	return err
}

func (d *DB) UpdateInternship(ctx context.Context, internship *models.Internship) error {
	res, err := d.Bun.NewUpdate().
		Model(internship).
		Column("title", "company", "location", "url", "description", "tags", "remote", "posted_at", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, "internship", internship.ID)
}

func (d *DB) DeleteInternship(ctx context.Context, id string) error {
	return deleteByID(ctx, d.Bun.NewDelete().Model((*models.Internship)(nil)), "internship", id)
}

// UpsertInternships inserts new postings and refreshes existing ones, keyed by (source, external_id).
// Existing rows keep their id and created_at.
func (d *DB) UpsertInternships(ctx context.Context, internships []models.Internship) (int, error) {
	if len(internships) == 0 {
		return 0, nil
	}
	res, err := d.Bun.NewInsert().
		Model(&internships).
		On("CONFLICT (source, external_id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("company = EXCLUDED.company").
		Set("location = EXCLUDED.location").
		Set("url = EXCLUDED.url").
		Set("description = EXCLUDED.description").
		Set("tags = EXCLUDED.tags").
		Set("remote = EXCLUDED.remote").
		Set("posted_at = EXCLUDED.posted_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return len(internships), nil
	}
	return int(n), nil
}

// Social links

func (d *DB) ListSocialLinks(ctx context.Context) ([]models.SocialLink, error) {
	links := []models.SocialLink{}
	err := d.Bun.NewSelect().Model(&links).Order("position ASC", "platform ASC").Scan(ctx)
	return links, err
}

func (d *DB) GetSocialLinkByID(ctx context.Context, id string) (*models.SocialLink, error) {
	var link models.SocialLink
	if err := getByID(ctx, d.Bun.NewSelect().Model(&link), "social link", id); err != nil {
		return nil, err
	}
	return &link, nil
}

func (d *DB) CreateSocialLink(ctx context.Context, link *models.SocialLink) error {
	_, err := d.Bun.NewInsert().Model(link).Exec(ctx)
	return err
}

func (d *DB) UpdateSocialLink(ctx context.Context, link *models.SocialLink) error {
	res, err := d.Bun.NewUpdate().
		Model(link).
		Column("platform", "url", "position").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, "social link", link.ID)
}

func (d *DB) DeleteSocialLink(ctx context.Context, id string) error {
	return deleteByID(ctx, d.Bun.NewDelete().Model((*models.SocialLink)(nil)), "social link", id)
}
