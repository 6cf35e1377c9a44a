package domain

import (
	"time"

	errprocess "focushub/pkg/err"
)

// ErrCalendarUnavailable no calendar provider configured
var ErrCalendarUnavailable = errprocess.ErrUnavailable

// DefaultCalendarID calendar written to when none is configured
const DefaultCalendarID = "primary"

// CalendarLink a member's connection to an external calendar
type CalendarLink struct {
	UserID       string    `gorm:"primaryKey;size:64" json:"userId"`
	AccessToken  string    `gorm:"type:text" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	TokenExpiry  time.Time `json:"tokenExpiry"`
	CalendarID   string    `gorm:"size:255" json:"calendarId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Synced a refresh token is what keeps the link usable
func (l *CalendarLink) Synced() bool {
	return l != nil && l.RefreshToken != ""
}

// CalendarStatus body of GET /calendar/status
type CalendarStatus struct {
	IsSynced   bool   `json:"isSynced"`
	CalendarID string `json:"calendarId,omitempty"`
}

// CalendarSync result of the OAuth callback, appended to the frontend redirect
type CalendarSync string

const (
	CalendarSyncSuccess CalendarSync = "success"
	CalendarSyncError   CalendarSync = "error"
)
