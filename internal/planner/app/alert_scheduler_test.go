package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"focushub/internal/planner/domain"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOverdue(t *testing.T, uc TaskUseCase) {
	t.Helper()
	ctx := context.Background()
	for _, s := range []struct {
		user, email string
		in          domain.CreateTaskInput
	}{
		{"u1", "one@example.com", domain.CreateTaskInput{Title: "Essay", DueDate: "2026-03-08", SendOverdueAlert: true}},
		{"u1", "one@example.com", domain.CreateTaskInput{Title: "Lab report", DueDate: "2026-03-09", SendOverdueAlert: true}},
		{"u1", "one@example.com", domain.CreateTaskInput{Title: "No alert", DueDate: "2026-03-09"}},
		{"u2", "", domain.CreateTaskInput{Title: "Anonymous", DueDate: "2026-03-09", SendOverdueAlert: true}},
		{"u3", "three@example.com", domain.CreateTaskInput{Title: "Later", DueDate: "2026-04-01", SendOverdueAlert: true}},
	} {
		_, err := uc.Create(ctx, s.user, s.email, s.in)
		require.NoError(t, err)
	}
}

func TestCheckOverdue(t *testing.T) {
	tasks, _ := newRepos(t)
	seedOverdue(t, NewTaskUseCase(tasks))

	pub := &fakePublisher{}
	s, err := NewAlertScheduler(tasks, pub, "", "", nil)
	require.NoError(t, err)
	s.now = fixedClock("2026-03-10T09:00:00Z")

	n, err := s.CheckOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, pub.published, 1)

	p := pub.published[0]
	assert.Equal(t, domain.QueueName, p.key)
	assert.Equal(t, amqp.Persistent, p.msg.DeliveryMode)

	var job domain.OverdueAlertJob
	require.NoError(t, json.Unmarshal(p.msg.Body, &job))
	assert.Equal(t, "u1", job.UserID)
	assert.Equal(t, "one@example.com", job.Email)
	require.Len(t, job.Tasks, 2)
	assert.Equal(t, "Essay", job.Tasks[0].Title)
	assert.Equal(t, "Lab report", job.Tasks[1].Title)
}

func TestCheckOverduePublishError(t *testing.T) {
	tasks, _ := newRepos(t)
	seedOverdue(t, NewTaskUseCase(tasks))

	s, err := NewAlertScheduler(tasks, &fakePublisher{err: errors.New("channel closed")}, "alerts", "", time.UTC)
	require.NoError(t, err)
	s.now = fixedClock("2026-03-10T09:00:00Z")

	n, err := s.CheckOverdue(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestNewAlertSchedulerBadSpec(t *testing.T) {
	tasks, _ := newRepos(t)
	_, err := NewAlertScheduler(tasks, &fakePublisher{}, "", "every morning", nil)
	assert.Error(t, err)
}

func TestGroupOverdueSkipsCompleted(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	jobs := groupOverdue([]domain.Task{
		{ID: "a", UserID: "u1", Title: "a", DueDate: &due},
		{ID: "b", UserID: "u1", Title: "b", DueDate: &due, Completed: true},
		{ID: "c", UserID: "u1", Title: "c", DueDate: &due, UserEmail: "new@example.com"},
	}, now)

	require.Len(t, jobs, 1)
	assert.Equal(t, "new@example.com", jobs[0].Email)
	assert.Len(t, jobs[0].Tasks, 2)
}
