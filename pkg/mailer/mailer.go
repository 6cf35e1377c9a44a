package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"

	"focushub/pkg/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const (
	defaultHost = "https://api.sendgrid.com"
	endpoint    = "/v3/mail/send"
)

// ErrNoRecipient message has no To address
var ErrNoRecipient = errors.New("mailer: no recipient")

// Message one outgoing email
type Message struct {
	To          mail.Address
	Subject     string
	TextContent string
	HTMLContent string
}

// Mailer delivers email
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendGrid delivers through the SendGrid v3 mail send API
type SendGrid struct {
	key        string
	host       string
	from       *sgmail.Email
	subjPrefix string
}

// NewSendGrid create a SendGrid mailer, host "" uses the public API
func NewSendGrid(key, appName, fromEmail, host string) *SendGrid {
	if host == "" {
		host = defaultHost
	}
	return &SendGrid{
		key:        key,
		host:       host,
		from:       sgmail.NewEmail(appName, fromEmail),
		subjPrefix: "[" + appName + "] ",
	}
}

func (s *SendGrid) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.To.Name, msg.To.Address))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)

	if msg.TextContent != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return m
}

// Send posts the message, any status >= 400 is an error
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if msg.To.Address == "" {
		return ErrNoRecipient
	}

	req := sendgrid.GetRequest(s.key, endpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}

	logger.Log.Info("email sent", zap.String("to", msg.To.Address), zap.String("subject", msg.Subject))
	return nil
}

// LogMailer only logs, used when no API key is configured
type LogMailer struct{}

// Send log the message
func (LogMailer) Send(_ context.Context, msg Message) error {
	if msg.To.Address == "" {
		return ErrNoRecipient
	}
	logger.Log.Info("email not sent, mailer disabled", zap.String("to", msg.To.Address), zap.String("subject", msg.Subject))
	return nil
}
