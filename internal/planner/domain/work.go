package domain

import "time"

const (
	// QueueName overdue alert job queue
	QueueName = "overdue_alerts"
)

// OverdueTask task line inside an alert email
type OverdueTask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
}

// OverdueAlertJob one email worth of overdue tasks for one user
type OverdueAlertJob struct {
	UserID    string        `json:"user_id"`
	Email     string        `json:"email"`
	Tasks     []OverdueTask `json:"tasks"`
	CheckedAt time.Time     `json:"checked_at"`
}
