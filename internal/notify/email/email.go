// Package email delivers outbound mail through SendGrid, or to the log when no API key is set.
package email

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"campus-events/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	DefaultSendGridHost = "https://api.sendgrid.com"
	sendEndpoint        = "/v3/mail/send"
)

type Message struct {
	To          []mail.Address
	ReplyTo     *mail.Address
	Subject     string
	TextContent string
	HTMLContent string
}

func (m Message) HasRecipients() bool { return len(m.To) > 0 }

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SendGridSender struct {
	Key        string
	Host       string
	From       *sgmail.Email
	SubjPrefix string
}

func NewSendGridSender(key, appName, fromEmail string) *SendGridSender {
	return &SendGridSender{
		Key:        key,
		Host:       DefaultSendGridHost,
		From:       sgmail.NewEmail(appName, fromEmail),
		SubjPrefix: "[" + appName + "] ",
	}
}

func (s *SendGridSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.SubjPrefix + msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.From)
	m.AddPersonalizations(p)
	if msg.ReplyTo != nil {
		m.SetReplyTo(sgmail.NewEmail(msg.ReplyTo.Name, msg.ReplyTo.Address))
	}

	m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return m
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if !msg.HasRecipients() {
		return fmt.Errorf("email has no recipients")
	}
	req := sendgrid.GetRequest(s.Key, sendEndpoint, s.Host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected message: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// ConsoleSender logs messages instead of sending them. Used in development.
type ConsoleSender struct {
	Logger *logger.Logger
}

func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	if !msg.HasRecipients() {
		return fmt.Errorf("email has no recipients")
	}
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, addr.String())
	}
	s.Logger.Info("EMAIL", fmt.Sprintf("to=%v subject=%q\n%s", to, msg.Subject, msg.TextContent))
	return nil
}

// NewSender picks SendGrid when a key is configured.
func NewSender(apiKey, appName, fromEmail string, log *logger.Logger) Sender {
	if apiKey == "" {
		log.Warn("EMAIL", "SENDGRID_API_KEY not set, emails will be logged only")
		return &ConsoleSender{Logger: log}
	}
	return NewSendGridSender(apiKey, appName, fromEmail)
}
