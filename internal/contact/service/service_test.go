package contact

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"campus-events/internal/apperror"
	"campus-events/internal/contact/db"
	"campus-events/internal/database/dbtest"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/notify/email"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type recordingPublisher struct {
	keys   []string
	values [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, _, key string, value []byte) error {
	p.keys = append(p.keys, key)
	p.values = append(p.values, value)
	return nil
}

var validInput = models.ContactInput{
	Name:    "Ada Lovelace",
	Email:   "ada@campus.edu",
	Subject: "Sponsorship",
	Message: "We would love to sponsor the next hackathon.",
}

func newService(t *testing.T, sender email.Sender) (*ContactService, *db.DB) {
	t.Helper()
	contactDB := &db.DB{Bun: dbtest.NewDB(t)}
	return NewContactService(contactDB, sender, "team@campus.edu", logger.NewNopLogger()), contactDB
}

func TestSubmit_ShortMessageRejected(t *testing.T) {
	sender := &MockSender{}
	svc, contactDB := newService(t, sender)

	input := validInput
	input.Message = "too short"
	_, err := svc.Submit(context.Background(), input)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "message", appErr.Field)

	messages, err := contactDB.ListMessages(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, messages, "rejected messages are not stored")
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSubmit_InlineRelay(t *testing.T) {
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(m email.Message) bool {
		return m.To[0].Address == "team@campus.edu" && m.ReplyTo.Address == "ada@campus.edu" && m.Subject == "Sponsorship"
	})).Return(nil).Once()
	svc, contactDB := newService(t, sender)

	msg, err := svc.Submit(context.Background(), validInput)
	require.NoError(t, err)
	sender.AssertExpectations(t)

	stored, err := contactDB.GetMessageByID(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.False(t, stored.RelayedAt.IsZero())
}

func TestSubmit_RelayFailureKeepsMessage(t *testing.T) {
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	svc, contactDB := newService(t, sender)

	msg, err := svc.Submit(context.Background(), validInput)
	require.NoError(t, err)

	stored, err := contactDB.GetMessageByID(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.RelayedAt.IsZero())
}

func TestSubmit_QueuedRelay(t *testing.T) {
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	svc, _ := newService(t, sender)
	pub := &recordingPublisher{}
	svc.WithQueue(pub, "campus.contact.submitted")

	msg, err := svc.Submit(context.Background(), validInput)
	require.NoError(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	require.Len(t, pub.values, 1)
	assert.Equal(t, msg.ID, pub.keys[0])

	// the consumer side relays once, a redelivery is a no-op
	require.NoError(t, svc.HandleSubmitted(context.Background(), kafkago.Message{Value: pub.values[0]}))
	require.NoError(t, svc.HandleSubmitted(context.Background(), kafkago.Message{Value: pub.values[0]}))
	sender.AssertNumberOfCalls(t, "Send", 1)

	var event SubmittedEvent
	require.NoError(t, json.Unmarshal(pub.values[0], &event))
	assert.Equal(t, msg.ID, event.MessageID)

	assert.Error(t, svc.HandleSubmitted(context.Background(), kafkago.Message{Value: []byte("{")}))
}

func TestSetRead(t *testing.T) {
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)
	svc, _ := newService(t, sender)

	msg, err := svc.Submit(context.Background(), validInput)
	require.NoError(t, err)

	updated, err := svc.SetRead(context.Background(), msg.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Read)

	unread, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
