package db_test

import (
	"context"
	"testing"
	"time"

	"campus-events/internal/apperror"
	"campus-events/internal/catalog/db"
	"campus-events/internal/database/dbtest"
	"campus-events/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func posting(source, externalID, title, company string, posted time.Time) models.Internship {
	return models.Internship{
		ID:         source + "-" + externalID,
		Source:     source,
		ExternalID: externalID,
		Title:      title,
		Company:    company,
		Tags:       []string{"go"},
		PostedAt:   posted,
		CreatedAt:  posted,
	}
}

func TestUpsertInternships(t *testing.T) {
	catalogDB := &db.DB{Bun: dbtest.NewDB(t)}
	ctx := context.Background()
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := catalogDB.UpsertInternships(ctx, []models.Internship{
		posting(models.InternshipSourceRemotive, "101", "Backend Intern", "Acme", day),
		posting(models.InternshipSourceArbeitnow, "101", "Data Intern", "Globex", day),
	})
	require.NoError(t, err)

	refreshed := posting(models.InternshipSourceRemotive, "101", "Backend Intern (Go)", "Acme", day.Add(24*time.Hour))
	refreshed.ID = "a-different-id"
	_, err = catalogDB.UpsertInternships(ctx, []models.Internship{refreshed})
	require.NoError(t, err)

	all, err := catalogDB.ListInternships(ctx, models.InternshipFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2, "same (source, external_id) must not duplicate")

	got, err := catalogDB.GetInternshipByID(ctx, "remotive-101")
	require.NoError(t, err, "existing row keeps its id")
	assert.Equal(t, "Backend Intern (Go)", got.Title)
	assert.Equal(t, []string{"go"}, got.Tags)

	n, err := catalogDB.UpsertInternships(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListInternships_Filters(t *testing.T) {
	catalogDB := &db.DB{Bun: dbtest.NewDB(t)}
	ctx := context.Background()
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := catalogDB.UpsertInternships(ctx, []models.Internship{
		posting(models.InternshipSourceRemotive, "1", "Backend Intern", "Acme", day),
		posting(models.InternshipSourceRemotive, "2", "Design Intern", "Initech", day.Add(time.Hour)),
		posting(models.InternshipSourceArbeitnow, "3", "Werkstudent Backend", "Globex", day.Add(2*time.Hour)),
	})
	require.NoError(t, err)

	bySource, err := catalogDB.ListInternships(ctx, models.InternshipFilter{Source: models.InternshipSourceRemotive})
	require.NoError(t, err)
	require.Len(t, bySource, 2)
	assert.Equal(t, "Design Intern", bySource[0].Title, "newest posting first")

	byQuery, err := catalogDB.ListInternships(ctx, models.InternshipFilter{Query: "BACKEND"})
	require.NoError(t, err)
	assert.Len(t, byQuery, 2)

	byCompany, err := catalogDB.ListInternships(ctx, models.InternshipFilter{Query: "initech"})
	require.NoError(t, err)
	require.Len(t, byCompany, 1)

	combined, err := catalogDB.ListInternships(ctx, models.InternshipFilter{Query: "backend", Source: models.InternshipSourceArbeitnow})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, "Globex", combined[0].Company)
}

func TestProjectsAndSocialLinks(t *testing.T) {
	catalogDB := &db.DB{Bun: dbtest.NewDB(t)}
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, catalogDB.CreateProject(ctx, &models.Project{ID: "p1", Title: "Old", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, catalogDB.CreateProject(ctx, &models.Project{ID: "p2", Title: "Star", Featured: true, CreatedAt: now.Add(-2 * time.Hour)}))

	projects, err := catalogDB.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "p2", projects[0].ID, "featured projects first")

	require.NoError(t, catalogDB.DeleteProject(ctx, "p1"))
	assert.ErrorIs(t, catalogDB.DeleteProject(ctx, "p1"), apperror.ErrNotFound)
	_, err = catalogDB.GetProjectByID(ctx, "p1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, catalogDB.CreateSocialLink(ctx, &models.SocialLink{ID: "s1", Platform: "instagram", URL: "https://instagram.com/x", Position: 2}))
	require.NoError(t, catalogDB.CreateSocialLink(ctx, &models.SocialLink{ID: "s2", Platform: "github", URL: "https://github.com/x", Position: 1}))

	links, err := catalogDB.ListSocialLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "github", links[0].Platform)

	links[0].Position = 5
	require.NoError(t, catalogDB.UpdateSocialLink(ctx, &links[0]))
	assert.ErrorIs(t, catalogDB.UpdateSocialLink(ctx, &models.SocialLink{ID: "missing"}), apperror.ErrNotFound)
}
