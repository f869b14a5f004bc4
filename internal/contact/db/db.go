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

func (d *DB) CreateMessage(ctx context.Context, msg *models.ContactMessage) error {
	_, err := d.Bun.NewInsert().Model(msg).Exec(ctx)
	return err
}

func (d *DB) GetMessageByID(ctx context.Context, id string) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	err := d.Bun.NewSelect().Model(&msg).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("contact message", id)
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns unread messages first, newest first within each group.
func (d *DB) ListMessages(ctx context.Context, unreadOnly bool) ([]models.ContactMessage, error) {
	messages := []models.ContactMessage{}
	q := d.Bun.NewSelect().Model(&messages).Order("read ASC", "created_at DESC")
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return messages, nil
}

func (d *DB) SetRead(ctx context.Context, id string, read bool) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.ContactMessage)(nil)).
		Set("read = ?", read).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, id)
}

// MarkRelayed stamps relayed_at once; a message already relayed is left alone.
func (d *DB) MarkRelayed(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.ContactMessage)(nil)).
		Set("relayed_at = ?", at).
		Where("id = ?", id).
		Where("relayed_at IS NULL").
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

func (d *DB) DeleteMessage(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().Model((*models.ContactMessage)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, id)
}

func (d *DB) CountUnread(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().Model((*models.ContactMessage)(nil)).Where("read = ?", false).Count(ctx)
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("contact message", id)
	}
	return nil
}
