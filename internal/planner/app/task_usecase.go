package app

import (
	"context"
	"fmt"
	"strings"

	"focushub/internal/planner/domain"
	"focushub/internal/planner/repository"
	"focushub/pkg"

	"github.com/google/uuid"
)

// TaskUseCase owner scoped task operations
type TaskUseCase interface {
	List(ctx context.Context, userID string) ([]domain.Task, error)
	Create(ctx context.Context, userID, email string, in domain.CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, userID, id string, in domain.UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, userID, id string) error
	Toggle(ctx context.Context, userID, id string) (*domain.Task, error)
	ToggleAlert(ctx context.Context, userID, id string) (*domain.Task, error)
}

type taskUseCase struct {
	tasks repository.TaskRepo
	newID func() string
}

// NewTaskUseCase create TaskUseCase
func NewTaskUseCase(tasks repository.TaskRepo) TaskUseCase {
	return &taskUseCase{tasks: tasks, newID: uuid.NewString}
}

func (u *taskUseCase) List(ctx context.Context, userID string) ([]domain.Task, error) {
	tasks, err := u.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// Create email is kept for overdue alerts
func (u *taskUseCase) Create(ctx context.Context, userID, email string, in domain.CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if err := checkLengths(title, in.Description); err != nil {
		return nil, err
	}
	priority, err := domain.ParsePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	due, err := domain.ParseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:               u.newID(),
		UserID:           userID,
		UserEmail:        email,
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		DueDate:          due,
		Priority:         priority,
		Tags:             pkg.NormalizeTags(in.Tags),
		SendOverdueAlert: in.SendOverdueAlert,
	}
	if err := u.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUseCase) Update(ctx context.Context, userID, id string, in domain.UpdateTaskInput) (*domain.Task, error) {
	task, err := u.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = strings.TrimSpace(*in.Description)
	}
	if err := checkLengths(task.Title, task.Description); err != nil {
		return nil, err
	}
	if in.DueDate != nil {
		if task.DueDate, err = domain.ParseDueDate(*in.DueDate); err != nil {
			return nil, err
		}
	}
	if in.Priority != nil {
		if task.Priority, err = domain.ParsePriority(*in.Priority); err != nil {
			return nil, err
		}
	}
	if in.Tags != nil {
		task.Tags = pkg.NormalizeTags(*in.Tags)
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}
	if in.SendOverdueAlert != nil {
		task.SendOverdueAlert = *in.SendOverdueAlert
	}

	if err := u.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUseCase) Delete(ctx context.Context, userID, id string) error {
	return u.tasks.Delete(ctx, userID, id)
}

func (u *taskUseCase) Toggle(ctx context.Context, userID, id string) (*domain.Task, error) {
	return u.flip(ctx, userID, id, func(t *domain.Task) { t.Completed = !t.Completed })
}

func (u *taskUseCase) ToggleAlert(ctx context.Context, userID, id string) (*domain.Task, error) {
	return u.flip(ctx, userID, id, func(t *domain.Task) { t.SendOverdueAlert = !t.SendOverdueAlert })
}

func (u *taskUseCase) flip(ctx context.Context, userID, id string, apply func(*domain.Task)) (*domain.Task, error) {
	task, err := u.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	apply(task)
	if err := u.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func checkLengths(title, description string) error {
	if len([]rune(title)) > domain.MaxTitleLength {
		return fmt.Errorf("%w: title longer than %d characters", domain.ErrValidation, domain.MaxTitleLength)
	}
	if len([]rune(description)) > domain.MaxDescriptionLength {
		return fmt.Errorf("%w: description longer than %d characters", domain.ErrValidation, domain.MaxDescriptionLength)
	}
	return nil
}
