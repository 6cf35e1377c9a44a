package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"time"

	"focushub/internal/planner/domain"
	"focushub/pkg/logger"
	"focushub/pkg/mailer"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

var overdueHTML = template.Must(template.New("overdue").Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">
<h2 style="color: #d9534f;">Overdue Task Alert!</h2>
<p>Hello,</p>
<p>You have the following task(s) marked for an alert that are now past their due date:</p>
<ul style="list-style-type: none; padding-left: 0;">
{{range .Tasks}}<li><strong>{{.Title}}</strong> (Due: {{.DueDate.Format "Mon Jan 02 2006"}})
<p style="margin-top: 5px; font-size: 0.9em; color: #555;">{{if .Description}}{{.Description}}{{else}}No description provided.{{end}}</p></li>
{{end}}</ul>
<p>Please {{if .LoginURL}}<a href="{{.LoginURL}}">log in</a>{{else}}log in{{end}} to complete or update these tasks.</p>
<p style="margin-top: 20px; font-size: 0.9em; color: #888;">This is an automated reminder.</p>
</div>`))

// RenderOverdueEmail builds the alert message for job
func RenderOverdueEmail(job domain.OverdueAlertJob, loginURL string) (mailer.Message, error) {
	var html bytes.Buffer
	err := overdueHTML.Execute(&html, struct {
		Tasks    []domain.OverdueTask
		LoginURL string
	}{job.Tasks, loginURL})
	if err != nil {
		return mailer.Message{}, err
	}

	var text strings.Builder
	text.WriteString("You have overdue tasks:\n")
	for _, t := range job.Tasks {
		fmt.Fprintf(&text, "- %s (due %s)\n", t.Title, t.DueDate.Format("Mon Jan 02 2006"))
	}

	return mailer.Message{
		To:          mail.Address{Address: job.Email},
		Subject:     fmt.Sprintf("Urgent: %d Task(s) Overdue", len(job.Tasks)),
		TextContent: text.String(),
		HTMLContent: html.String(),
	}, nil
}

// Consumer turns overdue alert jobs into emails
type Consumer struct {
	rabbitChannel *amqp.Channel
	mailer        mailer.Mailer
	queueName     string
	loginURL      string
	retryDelay    time.Duration
}

// NewConsumer create Consumer
func NewConsumer(rabbitChannel *amqp.Channel, m mailer.Mailer, queueName, loginURL string) *Consumer {
	if queueName == "" {
		queueName = domain.QueueName
	}
	return &Consumer{
		rabbitChannel: rabbitChannel,
		mailer:        m,
		queueName:     queueName,
		loginURL:      loginURL,
		retryDelay:    10 * time.Second,
	}
}

// StartConsumer consumes with manual ack until ctx is done or the channel closes
func (c *Consumer) StartConsumer(ctx context.Context) error {
	if err := c.rabbitChannel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := c.rabbitChannel.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queueName, err)
	}

	logger.Log.Info("overdue alert consumer started", zap.String("queue", c.queueName))
	c.Run(ctx, msgs)
	return nil
}

// Run handles deliveries one at a time
func (c *Consumer) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				logger.Log.Info("overdue alert delivery channel closed")
				return
			}
			c.handle(ctx, d)
		case <-ctx.Done():
			logger.Log.Info("overdue alert consumer stopped")
			return
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var job domain.OverdueAlertJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.Log.Error("drop malformed overdue alert job", zap.Error(err))
		if err := d.Reject(false); err != nil {
			logger.Log.Warn("reject failed", zap.Error(err))
		}
		return
	}

	err := c.process(ctx, job)
	if errors.Is(err, mailer.ErrNoRecipient) {
		logger.Log.Warn("drop overdue alert without recipient", zap.String("user_id", job.UserID))
		if err := d.Reject(false); err != nil {
			logger.Log.Warn("reject failed", zap.Error(err))
		}
		return
	}
	if err != nil {
		logger.Log.Error("overdue alert failed, requeue", zap.String("user_id", job.UserID), zap.Error(err))
		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
		}
		if err := d.Nack(false, true); err != nil {
			logger.Log.Warn("nack failed", zap.Error(err))
		}
		return
	}

	if err := d.Ack(false); err != nil {
		logger.Log.Warn("ack failed", zap.Error(err))
		return
	}
	logger.Log.Info("overdue alert sent", zap.String("user_id", job.UserID), zap.Int("tasks", len(job.Tasks)))
}

func (c *Consumer) process(ctx context.Context, job domain.OverdueAlertJob) error {
	if len(job.Tasks) == 0 {
		return nil
	}
	msg, err := RenderOverdueEmail(job, c.loginURL)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	return c.mailer.Send(ctx, msg)
}
