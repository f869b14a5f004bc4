package registrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-events/internal/apperror"
	"campus-events/internal/config"
	"campus-events/internal/database"
	"campus-events/internal/kafka"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/utils"

	"github.com/google/uuid"
)

type RegistrationDBLayer interface {
	GetRegistrationByID(ctx context.Context, id string) (*models.Registration, error)
	GetRegistrationByEventAndUser(ctx context.Context, eventID, userID string) (*models.Registration, error)
	CountActiveRegistrations(ctx context.Context, eventID string) (int, error)
	CreateRegistration(ctx context.Context, reg *models.Registration) error
	UpdateRegistration(ctx context.Context, reg *models.Registration) error
	ListRegistrationsByUser(ctx context.Context, userID string) ([]models.Registration, error)
	ListRegistrationsByEvent(ctx context.Context, eventID string) ([]models.Registration, error)
}

type EventReader interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
}

type QRRenderer interface {
	GeneratePNG(reg *models.Registration) ([]byte, error)
}

type PDFRenderer interface {
	Generate(reg *models.Registration, event *models.Event, qrCode []byte) ([]byte, error)
}

type RegistrationService struct {
	DB        RegistrationDBLayer
	Events    EventReader
	Publisher kafka.Publisher
	Topics    config.TopicConfig
	QR        QRRenderer
	PDF       PDFRenderer
	Logger    *logger.Logger
	Now       func() time.Time

	NewTicketCode func() string
}

// ticket codes are random; a clash with an existing code is retried with a fresh one
const ticketCodeAttempts = 3

func NewRegistrationService(db RegistrationDBLayer, events EventReader, publisher kafka.Publisher, topics config.TopicConfig,
	qr QRRenderer, pdf PDFRenderer, log *logger.Logger) *RegistrationService {
	return &RegistrationService{
		DB:        db,
		Events:    events,
		Publisher: publisher,
		Topics:    topics,
		QR:        qr,
		PDF:       pdf,
		Logger:    log,
		Now:       func() time.Time { return time.Now().UTC() },

		NewTicketCode: utils.GenerateTicketCode,
	}
}

// Register RSVPs the caller to an event. A cancelled RSVP for the same pair is re-activated.
func (s *RegistrationService) Register(ctx context.Context, eventID string, claims *models.Claims) (*models.Registration, error) {
	event, err := s.Events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	if !event.RegistrationOpen {
		return nil, apperror.ValidationFailed("event_id", "registration is closed for this event")
	}
	if event.HasEnded(now) {
		return nil, apperror.ValidationFailed("event_id", "event has already ended")
	}

	existing, err := s.DB.GetRegistrationByEventAndUser(ctx, eventID, claims.Subject)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up registration: %w", err)
	}
	if existing != nil && existing.IsActive() {
		return nil, apperror.Conflict("already registered for this event")
	}

	count, err := s.DB.CountActiveRegistrations(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	if event.IsFull(count) {
		return nil, apperror.Conflict("event is full")
	}

	var reg *models.Registration
	if existing != nil {
		reg = existing
		reg.Status = models.RegistrationStatusRegistered
		reg.Name = claims.Name
		reg.Email = claims.Email
		reg.UpdatedAt = now
		if err := s.DB.UpdateRegistration(ctx, reg); err != nil {
			return nil, fmt.Errorf("failed to re-activate registration: %w", err)
		}
		s.Logger.LogDatabase("UPDATE", "event_registrations", fmt.Sprintf("registration %s re-activated", reg.ID))
	} else {
		reg = &models.Registration{
			ID:        uuid.New().String(),
			EventID:   eventID,
			UserID:    claims.Subject,
			Name:      claims.Name,
			Email:     claims.Email,
			Status:    models.RegistrationStatusRegistered,
			CreatedAt: now,
		}
		if err := s.insertWithTicketCode(ctx, reg); err != nil {
			return nil, err
		}
		s.Logger.LogDatabase("INSERT", "event_registrations", fmt.Sprintf("registration %s for event %s", reg.ID, eventID))
	}

	reg.Event = event
	s.publish(ctx, s.Topics.RegistrationCreated, reg, now)
	return reg, nil
}

// insertWithTicketCode stores reg under a fresh ticket code. A unique violation on the
// (event, user) pair is a Conflict; any other one is a ticket code clash and is retried.
func (s *RegistrationService) insertWithTicketCode(ctx context.Context, reg *models.Registration) error {
	var err error
	for attempt := 1; attempt <= ticketCodeAttempts; attempt++ {
		reg.TicketCode = s.NewTicketCode()
		err = s.DB.CreateRegistration(ctx, reg)
		if err == nil {
			return nil
		}
		if !database.IsUniqueViolation(err) {
			return fmt.Errorf("failed to create registration: %w", err)
		}
		if _, lookupErr := s.DB.GetRegistrationByEventAndUser(ctx, reg.EventID, reg.UserID); lookupErr == nil {
			return apperror.Conflict("already registered for this event")
		}
		s.Logger.Warn("REGISTRATION", fmt.Sprintf("Ticket code clash on attempt %d for event %s", attempt, reg.EventID))
	}
	return fmt.Errorf("failed to allocate a unique ticket code: %w", err)
}

// Cancel withdraws the caller's RSVP. Checked-in registrations stay as they are.
func (s *RegistrationService) Cancel(ctx context.Context, eventID, userID string) (*models.Registration, error) {
	reg, err := s.DB.GetRegistrationByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if !reg.IsActive() {
		return nil, apperror.NotFound("registration", eventID+":"+userID)
	}
	if reg.IsCheckedIn() {
		return nil, apperror.Conflict("checked-in registrations cannot be cancelled")
	}

	now := s.Now()
	reg.Status = models.RegistrationStatusCancelled
	reg.UpdatedAt = now
	if err := s.DB.UpdateRegistration(ctx, reg); err != nil {
		return nil, fmt.Errorf("failed to cancel registration: %w", err)
	}
	s.Logger.LogDatabase("UPDATE", "event_registrations", fmt.Sprintf("registration %s cancelled", reg.ID))

	s.publish(ctx, s.Topics.RegistrationCancelled, reg, now)
	return reg, nil
}

func (s *RegistrationService) ListMine(ctx context.Context, userID string) ([]models.Registration, error) {
	regs, err := s.DB.ListRegistrationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return regs, nil
}

func (s *RegistrationService) ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	if _, err := s.Events.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}
	regs, err := s.DB.ListRegistrationsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for event %s: %w", eventID, err)
	}
	return regs, nil
}

// GetOwned returns the registration only if userID owns it. Foreign ids look missing.
func (s *RegistrationService) GetOwned(ctx context.Context, registrationID, userID string) (*models.Registration, error) {
	reg, err := s.DB.GetRegistrationByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.UserID != userID {
		return nil, apperror.NotFound("registration", registrationID)
	}
	return reg, nil
}

// TicketQR renders the QR image for an active registration.
func (s *RegistrationService) TicketQR(ctx context.Context, registrationID, userID string) ([]byte, error) {
	reg, err := s.activeOwned(ctx, registrationID, userID)
	if err != nil {
		return nil, err
	}
	png, err := s.QR.GeneratePNG(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR for %s: %w", registrationID, err)
	}
	return png, nil
}

// TicketPDF renders a printable ticket with the QR embedded.
func (s *RegistrationService) TicketPDF(ctx context.Context, registrationID, userID string) ([]byte, error) {
	reg, err := s.activeOwned(ctx, registrationID, userID)
	if err != nil {
		return nil, err
	}

	event := reg.Event
	if event == nil {
		if event, err = s.Events.GetEventByID(ctx, reg.EventID); err != nil {
			return nil, err
		}
	}

	png, err := s.QR.GeneratePNG(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR for %s: %w", registrationID, err)
	}
	pdf, err := s.PDF.Generate(reg, event, png)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ticket PDF for %s: %w", registrationID, err)
	}
	return pdf, nil
}

func (s *RegistrationService) activeOwned(ctx context.Context, registrationID, userID string) (*models.Registration, error) {
	reg, err := s.GetOwned(ctx, registrationID, userID)
	if err != nil {
		return nil, err
	}
	if !reg.IsActive() {
		return nil, apperror.ValidationFailed("registration_id", "registration was cancelled")
	}
	return reg, nil
}

func (s *RegistrationService) publish(ctx context.Context, topic string, reg *models.Registration, at time.Time) {
	msg := models.RegistrationEvent{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		UserID:         reg.UserID,
		Status:         reg.Status,
		OccurredAt:     at,
	}
	// publish failures are logged, never returned: the row is already committed
	if err := kafka.PublishJSON(ctx, s.Publisher, topic, reg.ID, msg); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish %s for %s: %v", topic, reg.ID, err))
	}
}
