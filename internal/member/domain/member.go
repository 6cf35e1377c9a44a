package domain

import (
	"net/url"
	"time"

	errprocess "focushub/pkg/err"
	"focushub/pkg/encrypt"
)

var (
	// ErrValidation bad signup or login input
	ErrValidation = errprocess.ErrValidation
	// ErrNotFound no member matches the query
	ErrNotFound = errprocess.ErrNotFound
	// ErrConflict email already registered
	ErrConflict = errprocess.ErrConflict
	// ErrUnauthenticated session missing or expired
	ErrUnauthenticated = errprocess.ErrUnauthenticated
)

// DefaultAvatar prefix for generated avatars, the member name is appended
const DefaultAvatar = "https://ui-avatars.com/api/?background=random&color=fff&name="

// MemberStatus last known presence of a member
type MemberStatus int

// 0=offline, 1=online, 2=ban, 3=delete
const (
	MemberStatusOffLine MemberStatus = iota
	MemberStatusOnLine
	MemberStatusBan
	MemberStatusDelete
)

func (s MemberStatus) String() string {
	switch s {
	case MemberStatusOnLine:
		return "online"
	case MemberStatusBan:
		return "ban"
	case MemberStatusDelete:
		return "delete"
	default:
		return "offline"
	}
}

// StatusFromPresence maps a chat presence status, ok is false for anything else
func StatusFromPresence(status string) (MemberStatus, bool) {
	switch status {
	case "online":
		return MemberStatusOnLine, true
	case "offline":
		return MemberStatusOffLine, true
	}
	return MemberStatusOffLine, false
}

// Member registered user
type Member struct {
	ID        int64
	MemberID  string
	Name      string
	Email     string
	Password  string
	Role      string
	Avatar    string
	Status    MemberStatus
	CreatedAt time.Time
}

// IsPasswordMatch compare input with the stored hash
func (m *Member) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(m.Password, inputPwd)
}

// AvatarURL stored avatar or a generated one
func (m *Member) AvatarURL() string {
	if m.Avatar != "" {
		return m.Avatar
	}
	return DefaultAvatar + url.QueryEscape(m.Name)
}

// Profile public view of a member
type Profile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
	Status         string `json:"status"`
}

// Profile drops the password
func (m *Member) Profile() Profile {
	return Profile{
		ID:             m.MemberID,
		Name:           m.Name,
		Email:          m.Email,
		ProfilePicture: m.AvatarURL(),
		Status:         m.Status.String(),
	}
}

// MemberSession login session kept in redis
type MemberSession struct {
	Token        string    `json:"Token"`
	MemberID     string    `json:"MemberID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// IsExpired check session expiry
func (s *MemberSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// MemberQuery join conditions are used to query members
type MemberQuery struct {
	ID       *int64  `db:"id"`
	MemberID *string `db:"member_id"`
	Email    *string `db:"email"`
}

// PresenceTransition online/offline change relayed by the chat service
type PresenceTransition struct {
	UserID string    `json:"userId"`
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}
