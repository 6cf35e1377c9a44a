package domain

import "time"

// SessionType focus or break
type SessionType string

const (
	SessionFocus SessionType = "focus"
	SessionBreak SessionType = "break"
)

// PomodoroSession one finished timer run, Duration in seconds
type PomodoroSession struct {
	ID          string      `gorm:"column:id;size:36;primaryKey" json:"id"`
	UserID      string      `gorm:"column:user_id;size:64;not null;index:idx_pomodoro_user_done" json:"userId"`
	TaskID      *string     `gorm:"column:task_id;size:36" json:"taskId"`
	Duration    int         `gorm:"column:duration;not null" json:"duration"`
	Type        SessionType `gorm:"column:type;size:8;not null" json:"type"`
	CompletedAt time.Time   `gorm:"column:completed_at;index:idx_pomodoro_user_done" json:"completedAt"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// PomodoroInput body of POST /pomodoro
type PomodoroInput struct {
	TaskID      string     `json:"taskId"`
	Duration    int        `json:"duration" validate:"required,gt=0,lte=86400"`
	Type        string     `json:"type" validate:"required,oneof=focus break"`
	CompletedAt *time.Time `json:"completedAt"`
}

// SessionFilter optional bounds for listing sessions
type SessionFilter struct {
	From *time.Time
	To   *time.Time
	Type SessionType
}

// PomodoroStats focus totals
type PomodoroStats struct {
	TotalSessions int `json:"totalSessions"`
	TotalMinutes  int `json:"totalMinutes"`
	WeekSessions  int `json:"weekSessions"`
}
