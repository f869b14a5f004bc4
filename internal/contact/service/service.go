package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"campus-events/internal/kafka"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/notify/email"
	"campus-events/internal/validation"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type ContactDBLayer interface {
	CreateMessage(ctx context.Context, msg *models.ContactMessage) error
	GetMessageByID(ctx context.Context, id string) (*models.ContactMessage, error)
	ListMessages(ctx context.Context, unreadOnly bool) ([]models.ContactMessage, error)
	SetRead(ctx context.Context, id string, read bool) error
	MarkRelayed(ctx context.Context, id string, at time.Time) (bool, error)
	DeleteMessage(ctx context.Context, id string) error
	CountUnread(ctx context.Context) (int, error)
}

// SubmittedEvent is the payload on the contact topic.
type SubmittedEvent struct {
	MessageID string    `json:"message_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ContactService struct {
	DB     ContactDBLayer
	Sender email.Sender
	Inbox  mail.Address
	Logger *logger.Logger
	Now    func() time.Time

	// Publisher and Topic hand relaying to a consumer. With a nil Publisher, Submit sends inline.
	Publisher kafka.Publisher
	Topic     string
}

func NewContactService(db ContactDBLayer, sender email.Sender, inbox string, log *logger.Logger) *ContactService {
	return &ContactService{
		DB:     db,
		Sender: sender,
		Inbox:  mail.Address{Name: "Campus Events", Address: inbox},
		Logger: log,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithQueue routes relaying through publisher instead of sending inline.
func (s *ContactService) WithQueue(publisher kafka.Publisher, topic string) *ContactService {
	s.Publisher = publisher
	s.Topic = topic
	return s
}

// Submit stores a contact-form message and relays it. Relay failures are logged; the message is kept.
func (s *ContactService) Submit(ctx context.Context, input models.ContactInput) (*models.ContactMessage, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Email:     input.Email,
		Subject:   input.Subject,
		Message:   input.Message,
		CreatedAt: s.Now(),
	}
	if err := s.DB.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}
	s.Logger.LogDatabase("INSERT", "contact_messages", msg.ID)

	if s.Publisher != nil && s.Topic != "" {
		event := SubmittedEvent{MessageID: msg.ID, CreatedAt: msg.CreatedAt}
		if err := kafka.PublishJSON(ctx, s.Publisher, s.Topic, msg.ID, event); err != nil {
			s.Logger.Error("CONTACT", fmt.Sprintf("Failed to queue message %s, sending inline: %v", msg.ID, err))
		} else {
			return msg, nil
		}
	}

	if err := s.relay(ctx, msg); err != nil {
		s.Logger.Error("CONTACT", fmt.Sprintf("Failed to relay message %s: %v", msg.ID, err))
	}
	return msg, nil
}

// Relay emails a stored message to the team inbox. Already-relayed messages are skipped.
func (s *ContactService) Relay(ctx context.Context, id string) error {
	msg, err := s.DB.GetMessageByID(ctx, id)
	if err != nil {
		return err
	}
	if !msg.RelayedAt.IsZero() {
		return nil
	}
	return s.relay(ctx, msg)
}

func (s *ContactService) relay(ctx context.Context, msg *models.ContactMessage) error {
	subject := msg.Subject
	if subject == "" {
		subject = "New contact message"
	}
	err := s.Sender.Send(ctx, email.Message{
		To:          []mail.Address{s.Inbox},
		ReplyTo:     &mail.Address{Name: msg.Name, Address: msg.Email},
		Subject:     subject,
		TextContent: fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message),
	})
	if err != nil {
		return err
	}

	at := s.Now()
	if _, err := s.DB.MarkRelayed(ctx, msg.ID, at); err != nil {
		return fmt.Errorf("email sent but failed to stamp relayed_at: %w", err)
	}
	msg.RelayedAt = at
	s.Logger.Info("CONTACT", fmt.Sprintf("Relayed message %s to %s", msg.ID, s.Inbox.Address))
	return nil
}

// HandleSubmitted is the consumer handler for the contact topic.
func (s *ContactService) HandleSubmitted(ctx context.Context, m kafkago.Message) error {
	var event SubmittedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("invalid contact event: %w", err)
	}
	return s.Relay(ctx, event.MessageID)
}

func (s *ContactService) List(ctx context.Context, unreadOnly bool) ([]models.ContactMessage, error) {
	messages, err := s.DB.ListMessages(ctx, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return messages, nil
}

func (s *ContactService) UnreadCount(ctx context.Context) (int, error) {
	n, err := s.DB.CountUnread(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}

func (s *ContactService) SetRead(ctx context.Context, id string, read bool) (*models.ContactMessage, error) {
	if err := s.DB.SetRead(ctx, id, read); err != nil {
		return nil, err
	}
	return s.DB.GetMessageByID(ctx, id)
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	return s.DB.DeleteMessage(ctx, id)
}
