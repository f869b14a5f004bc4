package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campus-events/internal/apperror"
	"campus-events/internal/database"
	"campus-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ListPolls returns polls newest first, each with its options and vote tallies.
// activeOnly keeps polls that are active and not yet closed at now.
func (d *DB) ListPolls(ctx context.Context, activeOnly bool, now time.Time) ([]models.Poll, error) {
	polls := []models.Poll{}
	q := d.Bun.NewSelect().Model(&polls).Order("created_at DESC")
	if activeOnly {
		q = q.Where("active = ?", true).
			WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("closes_at IS NULL").WhereOr("closes_at > ?", now)
			})
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	for i := range polls {
		options, err := d.optionsWithTally(ctx, polls[i].ID)
		if err != nil {
			return nil, err
		}
		polls[i].Options = options
	}
	return polls, nil
}

func (d *DB) GetPollByID(ctx context.Context, id string) (*models.Poll, error) {
	var poll models.Poll
	err := d.Bun.NewSelect().Model(&poll).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("poll", id)
	}
	if err != nil {
		return nil, err
	}
	if poll.Options, err = d.optionsWithTally(ctx, id); err != nil {
		return nil, err
	}
	return &poll, nil
}

func (d *DB) optionsWithTally(ctx context.Context, pollID string) ([]*models.PollOption, error) {
	options := []*models.PollOption{}
	err := d.Bun.NewSelect().
		Model(&options).
		ColumnExpr("poll_option.*").
		ColumnExpr("(SELECT COUNT(*) FROM poll_votes AS pv WHERE pv.option_id = poll_option.id) AS votes").
		Where("poll_option.poll_id = ?", pollID).
		Order("poll_option.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return options, nil
}

// CreatePoll inserts the poll and its options in one transaction.
func (d *DB) CreatePoll(ctx context.Context, poll *models.Poll) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(poll).Exec(ctx); err != nil {
			return err
		}
		if len(poll.Options) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&poll.Options).Exec(ctx)
		return err
	})
}

func (d *DB) UpdatePoll(ctx context.Context, poll *models.Poll) error {
	res, err := d.Bun.NewUpdate().
		Model(poll).
		Column("question", "active", "closes_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("poll", poll.ID)
	}
	return err
}

// DeletePoll removes the poll with its options and votes.
func (d *DB) DeletePoll(ctx context.Context, id string) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.PollVote)(nil)).Where("poll_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.PollOption)(nil)).Where("poll_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.Poll)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return apperror.NotFound("poll", id)
		}
		return nil
	})
}

// CreateVote records a ballot. A second ballot by the same user on the same poll is a conflict.
func (d *DB) CreateVote(ctx context.Context, vote *models.PollVote) error {
	_, err := d.Bun.NewInsert().Model(vote).Exec(ctx)
	if database.IsUniqueViolation(err) {
		return apperror.Conflict("you have already voted in this poll")
	}
	return err
}

func (d *DB) GetVote(ctx context.Context, pollID, userID string) (*models.PollVote, error) {
	var vote models.PollVote
	err := d.Bun.NewSelect().Model(&vote).
		Where("poll_id = ?", pollID).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("vote", pollID)
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}
