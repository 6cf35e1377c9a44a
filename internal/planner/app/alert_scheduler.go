package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"focushub/internal/planner/domain"
	"focushub/internal/planner/repository"
	"focushub/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// DefaultAlertSchedule every day at 09:00
const DefaultAlertSchedule = "0 9 * * *"

// JobPublisher publishes to the broker, database.RabbitRepo implements it
type JobPublisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AlertScheduler periodically turns overdue tasks into one alert job per user
type AlertScheduler struct {
	tasks     repository.TaskRepo
	publisher JobPublisher
	queue     string
	cron      *cron.Cron
	now       func() time.Time
	timeout   time.Duration
}

// NewAlertScheduler spec is a five field cron expression evaluated in loc
func NewAlertScheduler(tasks repository.TaskRepo, publisher JobPublisher, queue, spec string, loc *time.Location) (*AlertScheduler, error) {
	if spec == "" {
		spec = DefaultAlertSchedule
	}
	if queue == "" {
		queue = domain.QueueName
	}
	if loc == nil {
		loc = time.UTC
	}

	s := &AlertScheduler{
		tasks:     tasks,
		publisher: publisher,
		queue:     queue,
		cron:      cron.New(cron.WithLocation(loc)),
		now:       time.Now,
		timeout:   time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid alert schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the cron in its own goroutine
func (s *AlertScheduler) Start() {
	s.cron.Start()
	logger.Log.Info("overdue alert scheduler started", zap.Int("entries", len(s.cron.Entries())))
}

// Stop waits for a running check to finish
func (s *AlertScheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *AlertScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.CheckOverdue(ctx)
	if err != nil {
		logger.Log.Error("overdue check failed", zap.Error(err))
		return
	}
	logger.Log.Info("overdue check complete", zap.Int("users", n))
}

// CheckOverdue publishes one job per user with overdue tasks and returns the job count
func (s *AlertScheduler) CheckOverdue(ctx context.Context) (int, error) {
	now := s.now()
	tasks, err := s.tasks.FindOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	jobs := groupOverdue(tasks, now)
	published := 0
	for _, job := range jobs {
		if job.Email == "" {
			logger.Log.Warn("skip overdue alert, no email on record", zap.String("user_id", job.UserID))
			continue
		}

		body, err := json.Marshal(job)
		if err != nil {
			return published, err
		}
		err = s.publisher.Publish("", s.queue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    now,
			Body:         body,
		})
		if err != nil {
			return published, fmt.Errorf("publish overdue alert for %s: %w", job.UserID, err)
		}
		published++
	}
	return published, nil
}

// groupOverdue keeps the order users first appear in, the latest non-empty email wins
func groupOverdue(tasks []domain.Task, now time.Time) []*domain.OverdueAlertJob {
	var jobs []*domain.OverdueAlertJob
	byUser := map[string]*domain.OverdueAlertJob{}

	for _, t := range tasks {
		if !t.IsOverdue(now) {
			continue
		}
		job, ok := byUser[t.UserID]
		if !ok {
			job = &domain.OverdueAlertJob{UserID: t.UserID, CheckedAt: now}
			byUser[t.UserID] = job
			jobs = append(jobs, job)
		}
		if t.UserEmail != "" {
			job.Email = t.UserEmail
		}
		job.Tasks = append(job.Tasks, domain.OverdueTask{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			DueDate:     *t.DueDate,
		})
	}
	return jobs
}
