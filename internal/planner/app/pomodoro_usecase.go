package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"focushub/internal/planner/domain"
	"focushub/internal/planner/repository"
	"focushub/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PomodoroUseCase timer sessions and their effect on tasks
type PomodoroUseCase interface {
	Save(ctx context.Context, userID string, in domain.PomodoroInput) (*domain.PomodoroSession, error)
	List(ctx context.Context, userID string, f domain.SessionFilter) ([]domain.PomodoroSession, error)
	Stats(ctx context.Context, userID string) (*domain.PomodoroStats, error)
}

type pomodoroUseCase struct {
	sessions repository.PomodoroRepo
	tasks    repository.TaskRepo
	now      func() time.Time
	newID    func() string
}

// NewPomodoroUseCase create PomodoroUseCase
func NewPomodoroUseCase(sessions repository.PomodoroRepo, tasks repository.TaskRepo) PomodoroUseCase {
	return &pomodoroUseCase{sessions: sessions, tasks: tasks, now: time.Now, newID: uuid.NewString}
}

// Save a focus session linked to a task adds one pomodoro and its whole minutes to the task
func (u *pomodoroUseCase) Save(ctx context.Context, userID string, in domain.PomodoroInput) (*domain.PomodoroSession, error) {
	typ := domain.SessionType(in.Type)
	if typ != domain.SessionFocus && typ != domain.SessionBreak {
		return nil, fmt.Errorf("%w: type must be focus or break", domain.ErrValidation)
	}
	if in.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", domain.ErrValidation)
	}

	var taskID *string
	if id := strings.TrimSpace(in.TaskID); id != "" {
		if _, err := u.tasks.GetByID(ctx, userID, id); err != nil {
			return nil, err
		}
		taskID = &id
	}

	completedAt := u.now()
	if in.CompletedAt != nil {
		completedAt = *in.CompletedAt
	}

	s := &domain.PomodoroSession{
		ID:          u.newID(),
		UserID:      userID,
		TaskID:      taskID,
		Duration:    in.Duration,
		Type:        typ,
		CompletedAt: completedAt,
	}
	if err := u.sessions.Create(ctx, s); err != nil {
		return nil, err
	}

	if taskID != nil && typ == domain.SessionFocus {
		if err := u.tasks.AddFocus(ctx, userID, *taskID, in.Duration/60); err != nil {
			logger.Log.Warn("session saved but task focus not updated",
				zap.String("task_id", *taskID), zap.String("session_id", s.ID), zap.Error(err))
		}
	}
	return s, nil
}

func (u *pomodoroUseCase) List(ctx context.Context, userID string, f domain.SessionFilter) ([]domain.PomodoroSession, error) {
	sessions, err := u.sessions.List(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []domain.PomodoroSession{}
	}
	return sessions, nil
}

func (u *pomodoroUseCase) Stats(ctx context.Context, userID string) (*domain.PomodoroStats, error) {
	all, err := u.sessions.FocusSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}

	weekAgo := u.now().AddDate(0, 0, -7)
	stats := &domain.PomodoroStats{TotalSessions: len(all)}
	seconds := 0
	for _, s := range all {
		seconds += s.Duration
		if !s.CompletedAt.Before(weekAgo) {
			stats.WeekSessions++
		}
	}
	stats.TotalMinutes = seconds / 60
	return stats, nil
}
