package domain

// SummaryDays window of the focus chart
const SummaryDays = 7

// TaskStats completion counters
type TaskStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completionRate"`
}

// DayFocus focus time of one calendar day, Date is YYYY-MM-DD
type DayFocus struct {
	Date     string `json:"date"`
	Seconds  int    `json:"seconds"`
	Sessions int    `json:"sessions"`
}

// Streak consecutive days with at least one focus session
type Streak struct {
	Current        int    `json:"currentStreak"`
	Longest        int    `json:"longestStreak"`
	LastActiveDate string `json:"lastActiveDate,omitempty"`
}

// Summary body of GET /analytics/summary
type Summary struct {
	TaskStats         TaskStats        `json:"taskStats"`
	TasksByPriority   map[Priority]int `json:"tasksByPriority"`
	FocusByDay        []DayFocus       `json:"focusByDay"`
	TotalFocusMinutes int              `json:"totalFocusMinutes"`
	Streak            Streak           `json:"streak"`
}
