package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"focushub/internal/planner/domain"

	"gorm.io/gorm"
)

// TaskRepo definition get task info
type TaskRepo interface {
	AutoMigrate() error
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, userID, id string) error
	AddFocus(ctx context.Context, userID, id string, minutes int) error
	FindOverdue(ctx context.Context, now time.Time) ([]domain.Task, error)
}

type taskRepo struct {
	db *gorm.DB
}

// NewTaskRepo create TaskRepo
func NewTaskRepo(db *gorm.DB) TaskRepo {
	return &taskRepo{db: db}
}

func (r *taskRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Task{})
}

func (r *taskRepo) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID owner scoped, another user's task is not found
func (r *taskRepo) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	var t domain.Task
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByUser newest first
func (r *taskRepo) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepo) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepo) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
	}
	return nil
}

// AddFocus one more pomodoro and minutes of time spent, applied in the database
func (r *taskRepo) AddFocus(ctx context.Context, userID, id string, minutes int) error {
	res := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"pomodoro_sessions": gorm.Expr("pomodoro_sessions + ?", 1),
			"time_spent":        gorm.Expr("time_spent + ?", minutes),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
	}
	return nil
}

// FindOverdue incomplete, past due, alert enabled; ordered by user then due date
func (r *taskRepo) FindOverdue(ctx context.Context, now time.Time) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("completed = ? AND send_overdue_alert = ? AND due_date IS NOT NULL AND due_date < ?", false, true, now).
		Order("user_id, due_date").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
