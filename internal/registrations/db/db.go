package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"campus-events/internal/apperror"
	"campus-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) getOne(ctx context.Context, what, key string, where string, args ...interface{}) (*models.Registration, error) {
	var reg models.Registration
	err := d.Bun.NewSelect().
		Model(&reg).
		Relation("Event").
		Where(where, args...).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound(what, key)
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// GetRegistrationByID loads a registration together with its event.
func (d *DB) GetRegistrationByID(ctx context.Context, id string) (*models.Registration, error) {
	return d.getOne(ctx, "registration", id, "registration.id = ?", id)
}

// GetRegistrationByTicketCode matches codes case-insensitively. Codes are stored upper case.
func (d *DB) GetRegistrationByTicketCode(ctx context.Context, code string) (*models.Registration, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return d.getOne(ctx, "registration with ticket code", code, "registration.ticket_code = ?", code)
}

func (d *DB) GetRegistrationByEventAndUser(ctx context.Context, eventID, userID string) (*models.Registration, error) {
	return d.getOne(ctx, "registration", eventID+":"+userID,
		"registration.event_id = ? AND registration.user_id = ?", eventID, userID)
}

func (d *DB) CountActiveRegistrations(ctx context.Context, eventID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Registration)(nil)).
		Where("event_id = ?", eventID).
		Where("status = ?", models.RegistrationStatusRegistered).
		Count(ctx)
}

func (d *DB) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	_, err := d.Bun.NewInsert().Model(reg).Exec(ctx)
	return err
}

// UpdateRegistration writes the mutable RSVP fields. Check-in columns go through MarkCheckedIn.
func (d *DB) UpdateRegistration(ctx context.Context, reg *models.Registration) error {
	res, err := d.Bun.NewUpdate().
		Model(reg).
		Column("name", "email", "status", "ticket_code", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("registration", reg.ID)
	}
	return nil
}

func (d *DB) ListRegistrationsByUser(ctx context.Context, userID string) ([]models.Registration, error) {
	regs := []models.Registration{}
	err := d.Bun.NewSelect().
		Model(&regs).
		Relation("Event").
		Where("registration.user_id = ?", userID).
		OrderExpr("event.starts_at ASC").
		Scan(ctx)
	return regs, err
}

func (d *DB) ListRegistrationsByEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	regs := []models.Registration{}
	err := d.Bun.NewSelect().
		Model(&regs).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Scan(ctx)
	return regs, err
}

// MarkCheckedIn stamps checked_in_at only while it is still NULL and the RSVP is active.
// It reports whether this call did the stamping.
func (d *DB) MarkCheckedIn(ctx context.Context, id, scannerID string, at time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Registration)(nil)).
		Set("checked_in_at = ?", at).
		Set("checked_in_by = ?", scannerID).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("checked_in_at IS NULL").
		Where("status = ?", models.RegistrationStatusRegistered).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
