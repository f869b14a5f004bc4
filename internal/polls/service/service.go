package polls

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus-events/internal/apperror"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/validation"

	"github.com/google/uuid"
)

type PollDBLayer interface {
	ListPolls(ctx context.Context, activeOnly bool, now time.Time) ([]models.Poll, error)
	GetPollByID(ctx context.Context, id string) (*models.Poll, error)
	CreatePoll(ctx context.Context, poll *models.Poll) error
	UpdatePoll(ctx context.Context, poll *models.Poll) error
	DeletePoll(ctx context.Context, id string) error
	CreateVote(ctx context.Context, vote *models.PollVote) error
	GetVote(ctx context.Context, pollID, userID string) (*models.PollVote, error)
}

type PollService struct {
	DB     PollDBLayer
	Logger *logger.Logger
	Now    func() time.Time
}

func NewPollService(db PollDBLayer, log *logger.Logger) *PollService {
	return &PollService{DB: db, Logger: log, Now: func() time.Time { return time.Now().UTC() }}
}

// ListActive returns open polls with their current tallies.
func (s *PollService) ListActive(ctx context.Context) ([]models.Poll, error) {
	polls, err := s.DB.ListPolls(ctx, true, s.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	return polls, nil
}

func (s *PollService) ListAll(ctx context.Context) ([]models.Poll, error) {
	polls, err := s.DB.ListPolls(ctx, false, s.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	return polls, nil
}

func (s *PollService) GetPoll(ctx context.Context, id string) (*models.Poll, error) {
	return s.DB.GetPollByID(ctx, id)
}

func (s *PollService) CreatePoll(ctx context.Context, input models.PollInput, createdBy string) (*models.Poll, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	now := s.Now()
	if !input.ClosesAt.IsZero() && !input.ClosesAt.After(now) {
		return nil, apperror.ValidationFailed("closes_at", "closes_at must be in the future")
	}

	poll := &models.Poll{
		ID:        uuid.New().String(),
		Question:  strings.TrimSpace(input.Question),
		Active:    true,
		CreatedBy: createdBy,
		CreatedAt: now,
	}
	if !input.ClosesAt.IsZero() {
		poll.ClosesAt = input.ClosesAt.UTC()
	}

	seen := map[string]bool{}
	for _, label := range input.Options {
		label = strings.TrimSpace(label)
		key := strings.ToLower(label)
		if label == "" || seen[key] {
			continue
		}
		seen[key] = true
		poll.Options = append(poll.Options, &models.PollOption{
			ID:       uuid.New().String(),
			PollID:   poll.ID,
			Label:    label,
			Position: len(poll.Options),
		})
	}
	if len(poll.Options) < 2 {
		return nil, apperror.ValidationFailed("options", "a poll needs at least two distinct options")
	}

	if err := s.DB.CreatePoll(ctx, poll); err != nil {
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}
	s.Logger.LogDatabase("INSERT", "polls", fmt.Sprintf("poll %s with %d options", poll.ID, len(poll.Options)))
	return poll, nil
}

// UpdatePoll applies only the fields present in the update.
func (s *PollService) UpdatePoll(ctx context.Context, id string, update models.PollUpdate) (*models.Poll, error) {
	if err := validation.Struct(update); err != nil {
		return nil, err
	}
	poll, err := s.DB.GetPollByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Question != nil {
		poll.Question = strings.TrimSpace(*update.Question)
	}
	if update.Active != nil {
		poll.Active = *update.Active
	}
	if update.ClosesAt != nil {
		poll.ClosesAt = update.ClosesAt.UTC()
	}

	if err := s.DB.UpdatePoll(ctx, poll); err != nil {
		return nil, err
	}
	return poll, nil
}

func (s *PollService) DeletePoll(ctx context.Context, id string) error {
	return s.DB.DeletePoll(ctx, id)
}

// MyVote returns userID's ballot in the poll, or ErrNotFound when they have not voted.
func (s *PollService) MyVote(ctx context.Context, pollID, userID string) (*models.PollVote, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to see your vote")
	}
	return s.DB.GetVote(ctx, pollID, userID)
}

// Vote casts userID's ballot and returns the poll with refreshed tallies.
func (s *PollService) Vote(ctx context.Context, pollID, userID, optionID string) (*models.Poll, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to vote")
	}
	if err := validation.Struct(models.VoteRequest{OptionID: optionID}); err != nil {
		return nil, err
	}

	poll, err := s.DB.GetPollByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	if !poll.IsOpen(now) {
		return nil, apperror.ValidationFailed("poll_id", "this poll is closed")
	}

	found := false
	for _, opt := range poll.Options {
		if opt.ID == optionID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperror.ValidationFailed("option_id", "option does not belong to this poll")
	}

	vote := &models.PollVote{PollID: pollID, UserID: userID, OptionID: optionID, CreatedAt: now}
	if err := s.DB.CreateVote(ctx, vote); err != nil {
		return nil, err
	}
	s.Logger.Info("POLLS", fmt.Sprintf("User %s voted in poll %s", userID, pollID))

	return s.DB.GetPollByID(ctx, pollID)
}
