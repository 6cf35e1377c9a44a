package repository

import (
	"context"
	"time"

	"focushub/internal/planner/domain"

	"gorm.io/gorm"
)

// PomodoroRepo definition pomodoro session store
type PomodoroRepo interface {
	AutoMigrate() error
	Create(ctx context.Context, s *domain.PomodoroSession) error
	List(ctx context.Context, userID string, f domain.SessionFilter) ([]domain.PomodoroSession, error)
	FocusSince(ctx context.Context, userID string, since time.Time) ([]domain.PomodoroSession, error)
}

type pomodoroRepo struct {
	db *gorm.DB
}

// NewPomodoroRepo create PomodoroRepo
func NewPomodoroRepo(db *gorm.DB) PomodoroRepo {
	return &pomodoroRepo{db: db}
}

func (r *pomodoroRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.PomodoroSession{})
}

func (r *pomodoroRepo) Create(ctx context.Context, s *domain.PomodoroSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// List newest first
func (r *pomodoroRepo) List(ctx context.Context, userID string, f domain.SessionFilter) ([]domain.PomodoroSession, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.From != nil {
		q = q.Where("completed_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("completed_at <= ?", *f.To)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}

	var sessions []domain.PomodoroSession
	if err := q.Order("completed_at DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// FocusSince focus sessions completed at or after since, oldest first
func (r *pomodoroRepo) FocusSince(ctx context.Context, userID string, since time.Time) ([]domain.PomodoroSession, error) {
	var sessions []domain.PomodoroSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND completed_at >= ?", userID, domain.SessionFocus, since).
		Order("completed_at").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
