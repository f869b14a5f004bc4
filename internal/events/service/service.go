package events

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

type EventDBLayer interface {
	ListEvents(ctx context.Context, filter models.EventFilter, now time.Time) ([]models.Event, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

type EventService struct {
	DB     EventDBLayer
	Logger *logger.Logger
	Now    func() time.Time
}

func NewEventService(db EventDBLayer, log *logger.Logger) *EventService {
	return &EventService{DB: db, Logger: log, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *EventService) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	if filter.Limit < 0 || filter.Limit > 200 {
		filter.Limit = 200
	}
	events, err := s.DB.ListEvents(ctx, filter, s.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, id)
}

func (s *EventService) CreateEvent(ctx context.Context, input models.EventInput, createdBy string) (*models.Event, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	now := s.Now()
	event := &models.Event{
		ID:               uuid.New().String(),
		CreatedBy:        createdBy,
		CreatedAt:        now,
		RegistrationOpen: true,
	}
	applyInput(event, input)

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.Logger.LogDatabase("INSERT", "events", fmt.Sprintf("event %s created by %s", event.ID, createdBy))
	return event, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, id string, input models.EventInput) (*models.Event, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInput(event, input)
	event.UpdatedAt = s.Now()

	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", id, err)
	}
	s.Logger.LogDatabase("UPDATE", "events", fmt.Sprintf("event %s updated", id))
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.DB.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.Logger.LogDatabase("DELETE", "events", fmt.Sprintf("event %s deleted", id))
	return nil
}

func applyInput(event *models.Event, input models.EventInput) {
	event.Title = strings.TrimSpace(input.Title)
	event.Description = input.Description
	event.Location = strings.TrimSpace(input.Location)
	event.Category = strings.ToLower(strings.TrimSpace(input.Category))
	event.ImageURL = input.ImageURL
	event.StartsAt = input.StartsAt.UTC()
	event.EndsAt = input.EndsAt.UTC()
	event.Capacity = input.Capacity
	if input.RegistrationOpen != nil {
		event.RegistrationOpen = *input.RegistrationOpen
	}
}
