package db

import (
	"context"
	"database/sql"
	"errors"

	"campus-events/internal/apperror"
	"campus-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := d.Bun.NewSelect().Model(&profile).Where("user_id = ?", userID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("profile", userID)
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateProfile inserts the profile unless one already exists for the user.
func (d *DB) CreateProfile(ctx context.Context, profile *models.Profile) error {
	_, err := d.Bun.NewInsert().Model(profile).On("CONFLICT (user_id) DO NOTHING").Exec(ctx)
	return err
}

func (d *DB) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	res, err := d.Bun.NewUpdate().
		Model(profile).
		Column("full_name", "department", "year", "avatar_url", "bio", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("profile", profile.UserID)
	}
	return err
}

func (d *DB) ListRoles(ctx context.Context, userID string) ([]string, error) {
	roles := []string{}
	err := d.Bun.NewSelect().
		Model((*models.UserRole)(nil)).
		Column("role").
		Where("user_id = ?", userID).
		Order("role ASC").
		Scan(ctx, &roles)
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// ListRoleGrants returns every grant, for the admin roster.
func (d *DB) ListRoleGrants(ctx context.Context) ([]models.UserRole, error) {
	grants := []models.UserRole{}
	if err := d.Bun.NewSelect().Model(&grants).Order("user_id ASC", "role ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return grants, nil
}

// GrantRole is idempotent.
func (d *DB) GrantRole(ctx context.Context, grant *models.UserRole) error {
	_, err := d.Bun.NewInsert().Model(grant).On("CONFLICT (user_id, role) DO NOTHING").Exec(ctx)
	return err
}

func (d *DB) RevokeRole(ctx context.Context, userID, role string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.UserRole)(nil)).
		Where("user_id = ?", userID).
		Where("role = ?", role).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("role grant", userID+"/"+role)
	}
	return err
}
