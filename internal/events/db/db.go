package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campus-events/internal/apperror"
	"campus-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ListEvents returns events ordered by start time. Upcoming means not yet ended at now.
func (d *DB) ListEvents(ctx context.Context, filter models.EventFilter, now time.Time) ([]models.Event, error) {
	events := []models.Event{}
	q := d.Bun.NewSelect().Model(&events)

	switch {
	case filter.Upcoming:
		q = q.Where("ends_at >= ?", now).Order("starts_at ASC")
	case filter.Past:
		q = q.Where("ends_at < ?", now).Order("starts_at DESC")
	default:
		q = q.Order("starts_at ASC")
	}
	if filter.Category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("event", id)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	res, err := d.Bun.NewUpdate().
		Model(event).
		Column("title", "description", "location", "category", "image_url",
			"starts_at", "ends_at", "capacity", "registration_open", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, "event", event.ID)
}

// DeleteEvent removes the event along with its registrations.
func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.Registration)(nil)).
			Where("event_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		return expectRow(res, "event", id)
	})
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
