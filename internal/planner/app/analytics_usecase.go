package app

import (
	"context"
	"time"

	"focushub/internal/planner/domain"
	"focushub/internal/planner/repository"
)

const (
	dateLayout   = "2006-01-02"
	streakWindow = 60
)

// AnalyticsUseCase task and focus summaries, dates are UTC calendar days
type AnalyticsUseCase interface {
	Summary(ctx context.Context, userID string) (*domain.Summary, error)
	FocusTime(ctx context.Context, userID string, days int) ([]domain.DayFocus, error)
}

type analyticsUseCase struct {
	tasks    repository.TaskRepo
	sessions repository.PomodoroRepo
	now      func() time.Time
}

// NewAnalyticsUseCase create AnalyticsUseCase
func NewAnalyticsUseCase(tasks repository.TaskRepo, sessions repository.PomodoroRepo) AnalyticsUseCase {
	return &analyticsUseCase{tasks: tasks, sessions: sessions, now: time.Now}
}

func (u *analyticsUseCase) Summary(ctx context.Context, userID string) (*domain.Summary, error) {
	tasks, err := u.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := startOfDay(u.now().UTC())
	sessions, err := u.sessions.FocusSince(ctx, userID, today.AddDate(0, 0, -(streakWindow - 1)))
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		TaskStats: taskStats(tasks),
		TasksByPriority: map[domain.Priority]int{
			domain.PriorityHigh:   0,
			domain.PriorityMedium: 0,
			domain.PriorityLow:    0,
		},
		Streak: streak(sessions, today),
	}
	for _, t := range tasks {
		summary.TasksByPriority[t.Priority]++
	}

	summary.FocusByDay = focusByDay(sessions, today, domain.SummaryDays)
	seconds := 0
	for _, d := range summary.FocusByDay {
		seconds += d.Seconds
	}
	summary.TotalFocusMinutes = seconds / 60
	return summary, nil
}

// FocusTime per day focus for the last days, today included
func (u *analyticsUseCase) FocusTime(ctx context.Context, userID string, days int) ([]domain.DayFocus, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	today := startOfDay(u.now().UTC())
	sessions, err := u.sessions.FocusSince(ctx, userID, today.AddDate(0, 0, -(days - 1)))
	if err != nil {
		return nil, err
	}
	return focusByDay(sessions, today, days), nil
}

func taskStats(tasks []domain.Task) domain.TaskStats {
	s := domain.TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = (s.Completed*100 + s.Total/2) / s.Total
	}
	return s
}

// focusByDay one entry per day ending today, days without sessions are zero
func focusByDay(sessions []domain.PomodoroSession, today time.Time, days int) []domain.DayFocus {
	byDate := make(map[string]*domain.DayFocus, days)
	out := make([]domain.DayFocus, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i-(days-1)).Format(dateLayout)
		out[i] = domain.DayFocus{Date: date}
		byDate[date] = &out[i]
	}
	for _, s := range sessions {
		if d, ok := byDate[s.CompletedAt.UTC().Format(dateLayout)]; ok {
			d.Seconds += s.Duration
			d.Sessions++
		}
	}
	return out
}

// streak the current run counts only if it reaches today or yesterday
func streak(sessions []domain.PomodoroSession, today time.Time) domain.Streak {
	if len(sessions) == 0 {
		return domain.Streak{}
	}

	var days []time.Time
	seen := map[time.Time]bool{}
	for _, s := range sessions {
		d := startOfDay(s.CompletedAt.UTC())
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	last := days[len(days)-1]
	current := 0
	if today.Sub(last) <= 24*time.Hour {
		current = run
	}
	return domain.Streak{Current: current, Longest: longest, LastActiveDate: last.Format(dateLayout)}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
