package domain

import (
	"fmt"
	"strings"
	"time"

	errprocess "focushub/pkg/err"
)

var (
	// ErrValidation bad task or session input
	ErrValidation = errprocess.ErrValidation
	// ErrNotFound task missing or owned by someone else
	ErrNotFound = errprocess.ErrNotFound
)

// Field limits
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Priority task priority
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority empty means medium
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("%w: priority must be low, medium or high", ErrValidation)
}

// Task a to-do item owned by one user
type Task struct {
	ID               string     `gorm:"column:id;size:36;primaryKey" json:"id"`
	UserID           string     `gorm:"column:user_id;size:64;not null;index:idx_task_user" json:"userId"`
	UserEmail        string     `gorm:"column:user_email;size:255" json:"-"`
	Title            string     `gorm:"column:title;size:200;not null" json:"title"`
	Description      string     `gorm:"column:description;size:1000" json:"description"`
	DueDate          *time.Time `gorm:"column:due_date;index:idx_task_due" json:"dueDate"`
	Completed        bool       `gorm:"column:completed;default:false" json:"completed"`
	Priority         Priority   `gorm:"column:priority;size:8;default:medium" json:"priority"`
	Tags             []string   `gorm:"column:tags;serializer:json;type:text" json:"tags"`
	TimeSpent        int        `gorm:"column:time_spent;default:0" json:"timeSpent"`
	PomodoroSessions int        `gorm:"column:pomodoro_sessions;default:0" json:"pomodoroSessions"`
	SendOverdueAlert bool       `gorm:"column:send_overdue_alert;default:false" json:"sendOverdueAlert"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// IsOverdue incomplete and past due at now
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// CreateTaskInput fields accepted on create
type CreateTaskInput struct {
	Title            string   `json:"title" validate:"required,max=200"`
	Description      string   `json:"description" validate:"max=1000"`
	DueDate          string   `json:"dueDate"`
	Priority         string   `json:"priority"`
	Tags             []string `json:"tags"`
	SendOverdueAlert bool     `json:"sendOverdueAlert"`
}

// UpdateTaskInput nil fields are left unchanged, an empty DueDate clears it
type UpdateTaskInput struct {
	Title            *string   `json:"title" validate:"omitempty,max=200"`
	Description      *string   `json:"description" validate:"omitempty,max=1000"`
	DueDate          *string   `json:"dueDate"`
	Completed        *bool     `json:"completed"`
	Priority         *string   `json:"priority"`
	Tags             *[]string `json:"tags"`
	SendOverdueAlert *bool     `json:"sendOverdueAlert"`
}

var dueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDueDate empty string is no due date
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: dueDate %q is not a date", ErrValidation, s)
}
