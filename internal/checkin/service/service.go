package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-events/internal/apperror"
	"campus-events/internal/kafka"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/qr"
	"campus-events/internal/validation"

	"github.com/google/uuid"
)

// How a scanned code was matched to a registration.
const (
	MatchedByQR         = "qr"
	MatchedByID         = "registration_id"
	MatchedByTicketCode = "ticket_code"
	MatchedByComposite  = "event_user"
)

type RegistrationStore interface {
	GetRegistrationByID(ctx context.Context, id string) (*models.Registration, error)
	GetRegistrationByTicketCode(ctx context.Context, code string) (*models.Registration, error)
	GetRegistrationByEventAndUser(ctx context.Context, eventID, userID string) (*models.Registration, error)
	MarkCheckedIn(ctx context.Context, id, scannerID string, at time.Time) (bool, error)
}

type PayloadDecoder interface {
	Decode(encoded string) (*qr.TicketPayload, error)
}

type Locker interface {
	Acquire(ctx context.Context, registrationID, owner string) (bool, error)
	Release(ctx context.Context, registrationID, owner string) error
}

type Broadcaster interface {
	EmitCheckin(evt models.CheckinEvent)
}

type CheckinService struct {
	DB        RegistrationStore
	Decoder   PayloadDecoder
	Lock      Locker
	Publisher kafka.Publisher
	Topic     string
	Live      Broadcaster
	Logger    *logger.Logger
	Now       func() time.Time

	// lock polling while another scan of the same ticket is in flight
	LockRetries  int
	LockInterval time.Duration
}

func NewCheckinService(db RegistrationStore, decoder PayloadDecoder, lock Locker, publisher kafka.Publisher,
	topic string, live Broadcaster, log *logger.Logger) *CheckinService {
	return &CheckinService{
		DB:           db,
		Decoder:      decoder,
		Lock:         lock,
		Publisher:    publisher,
		Topic:        topic,
		Live:         live,
		Logger:       log,
		Now:          func() time.Time { return time.Now().UTC() },
		LockRetries:  20,
		LockInterval: 50 * time.Millisecond,
	}
}

// Resolve maps a scanned or typed code to a registration, trying in order:
// encrypted QR payload, registration id, ticket code, then "eventID:userID" (or "|").
func (s *CheckinService) Resolve(ctx context.Context, code string) (*models.Registration, string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, "", apperror.ValidationFailed("code", "code is required")
	}

	if s.Decoder != nil {
		if payload, err := s.Decoder.Decode(code); err == nil {
			reg, err := s.DB.GetRegistrationByID(ctx, payload.RegistrationID)
			if err != nil {
				return nil, "", err
			}
			if payload.TicketCode != "" && !strings.EqualFold(payload.TicketCode, reg.TicketCode) {
				return nil, "", apperror.NotFound("registration", payload.RegistrationID)
			}
			return reg, MatchedByQR, nil
		}
	}

	reg, err := s.DB.GetRegistrationByID(ctx, code)
	if err == nil {
		return reg, MatchedByID, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, "", err
	}

	reg, err = s.DB.GetRegistrationByTicketCode(ctx, code)
	if err == nil {
		return reg, MatchedByTicketCode, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, "", err
	}

	if eventID, userID, ok := splitComposite(code); ok {
		reg, err = s.DB.GetRegistrationByEventAndUser(ctx, eventID, userID)
		if err == nil {
			return reg, MatchedByComposite, nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, "", err
		}
	}

	return nil, "", apperror.NotFound("registration for code", code)
}

func splitComposite(code string) (string, string, bool) {
	for _, sep := range []string{":", "|"} {
		parts := strings.Split(code, sep)
		if len(parts) != 2 {
			continue
		}
		eventID, userID := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if eventID != "" && userID != "" {
			return eventID, userID, true
		}
	}
	return "", "", false
}

// CheckIn marks the registration behind req.Code as attended. Scanning a code twice is not
// an error: the result carries AlreadyCheckedIn and the original timestamp.
func (s *CheckinService) CheckIn(ctx context.Context, req models.CheckinRequest, scannerID string) (*models.CheckinResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	reg, matchedBy, err := s.Resolve(ctx, req.Code)
	if err != nil {
		s.Logger.LogCheckin("MISS", "-", fmt.Sprintf("scanner %s: %v", scannerID, err))
		return nil, err
	}

	if !reg.IsActive() {
		return nil, apperror.ValidationFailed("code", "registration was cancelled")
	}
	if req.EventID != "" && reg.EventID != req.EventID {
		return nil, apperror.ValidationFailed("event_id", "ticket belongs to a different event")
	}
	if reg.IsCheckedIn() {
		s.Logger.LogCheckin("REPEAT", reg.ID, fmt.Sprintf("already checked in at %s", reg.CheckedInAt.Format(time.RFC3339)))
		return resultFor(reg, matchedBy, true), nil
	}

	owner := uuid.New().String()
	if s.Lock != nil {
		if err := s.acquire(ctx, reg.ID, owner); err != nil {
			return nil, err
		}
		defer func() {
			if err := s.Lock.Release(context.Background(), reg.ID, owner); err != nil {
				s.Logger.Warn("CHECKIN", fmt.Sprintf("Failed to release scan lock for %s: %v", reg.ID, err))
			}
		}()
	}

	now := s.Now()
	stamped, err := s.DB.MarkCheckedIn(ctx, reg.ID, scannerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check in %s: %w", reg.ID, err)
	}
	if !stamped {
		// lost the race to another scanner, or cancelled meanwhile
		current, err := s.DB.GetRegistrationByID(ctx, reg.ID)
		if err != nil {
			return nil, err
		}
		if !current.IsActive() {
			return nil, apperror.ValidationFailed("code", "registration was cancelled")
		}
		s.Logger.LogCheckin("REPEAT", reg.ID, "already checked in by a concurrent scan")
		return resultFor(current, matchedBy, true), nil
	}

	reg.CheckedInAt = now
	reg.CheckedInBy = scannerID
	s.Logger.LogCheckin("OK", reg.ID, fmt.Sprintf("event %s, matched by %s, scanner %s", reg.EventID, matchedBy, scannerID))

	evt := models.CheckinEvent{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		UserID:         reg.UserID,
		Name:           reg.Name,
		ScannerID:      scannerID,
		CheckedInAt:    now,
	}
	if s.Live != nil {
		s.Live.EmitCheckin(evt)
	}
	if err := kafka.PublishJSON(ctx, s.Publisher, s.Topic, reg.ID, evt); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish check-in for %s: %v", reg.ID, err))
	}

	return resultFor(reg, matchedBy, false), nil
}

func (s *CheckinService) acquire(ctx context.Context, registrationID, owner string) error {
	for attempt := 0; attempt <= s.LockRetries; attempt++ {
		ok, err := s.Lock.Acquire(ctx, registrationID, owner)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.LockInterval):
		}
	}
	return apperror.Conflict("another scan of this ticket is in progress")
}

func resultFor(reg *models.Registration, matchedBy string, already bool) *models.CheckinResult {
	return &models.CheckinResult{
		RegistrationID:   reg.ID,
		EventID:          reg.EventID,
		UserID:           reg.UserID,
		Name:             reg.Name,
		Email:            reg.Email,
		TicketCode:       reg.TicketCode,
		MatchedBy:        matchedBy,
		AlreadyCheckedIn: already,
		CheckedInAt:      reg.CheckedInAt,
	}
}
