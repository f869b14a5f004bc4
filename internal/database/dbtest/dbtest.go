// Package dbtest builds an in-memory SQLite schema matching migrations/ for DB-layer tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"campus-events/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func NewDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	// every new connection would get its own empty :memory: database
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	ctx := context.Background()
	tables := []interface{}{
		(*models.Event)(nil),
		(*models.Registration)(nil),
		(*models.Project)(nil),
		(*models.Internship)(nil),
		(*models.Poll)(nil),
		(*models.PollOption)(nil),
		(*models.PollVote)(nil),
		(*models.Profile)(nil),
		(*models.UserRole)(nil),
		(*models.SocialLink)(nil),
		(*models.ContactMessage)(nil),
	}
	for _, model := range tables {
		if _, err := bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	indexes := []struct {
		model   interface{}
		name    string
		columns []string
	}{
		{(*models.Registration)(nil), "event_registrations_event_user_idx", []string{"event_id", "user_id"}},
		{(*models.Internship)(nil), "internships_source_external_idx", []string{"source", "external_id"}},
	}
	for _, idx := range indexes {
		_, err := bunDB.NewCreateIndex().
			Model(idx.model).
			Unique().
			IfNotExists().
			Index(idx.name).
			Column(idx.columns...).
			Exec(ctx)
		if err != nil {
			t.Fatalf("Failed to create index %s: %v", idx.name, err)
		}
	}

	return bunDB
}
