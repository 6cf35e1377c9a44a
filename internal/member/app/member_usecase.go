package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"focushub/internal/member/domain"
	"focushub/internal/member/repository"
	"focushub/pkg/encrypt"
	"focushub/pkg/logger"
	"focushub/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoginResult token plus the profile the client shows right away
type LoginResult struct {
	Token string         `json:"token"`
	User  domain.Profile `json:"user"`
}

// MemberUseCase account, session and last-known presence operations
type MemberUseCase interface {
	Signup(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, memberID string) error
	Me(ctx context.Context, memberID string) (*domain.Profile, error)
	Students(ctx context.Context) ([]domain.Profile, error)
	CheckSessionTimeout(ctx context.Context, memberID string) (bool, error)
	ReconnectSession(ctx context.Context, memberID string) error
	ApplyPresence(ctx context.Context, t domain.PresenceTransition) error
}

type memberUseCase struct {
	memberRepo   repository.MemberRepository
	sessions     repository.SessionRepository
	sessionTTL   time.Duration
	hashPassword func(string) (string, error)
	now          func() time.Time
}

// NewMemberUseCase create a MemberUseCase, hashPassword defaults to encrypt.HashPassword
func NewMemberUseCase(memberRepo repository.MemberRepository,
	sessions repository.SessionRepository,
	sessionTTL time.Duration,
	hashPassword func(string) (string, error),
) MemberUseCase {
	if hashPassword == nil {
		hashPassword = encrypt.HashPassword
	}
	return &memberUseCase{
		memberRepo:   memberRepo,
		sessions:     sessions,
		sessionTTL:   sessionTTL,
		hashPassword: hashPassword,
		now:          time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup
func (m *memberUseCase) Signup(ctx context.Context, name, email, password string) (string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return "", fmt.Errorf("%w: name and email are required", domain.ErrValidation)
	}

	if _, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email}); err == nil {
		return "", fmt.Errorf("%w: user already exists", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	pw, err := m.hashPassword(password)
	if errors.Is(err, encrypt.ErrWeakPassword) {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err != nil {
		logger.Log.Errorf("hash password err :", err)
		return "", err
	}

	member := domain.Member{
		MemberID: uuid.New().String(),
		Name:     name,
		Email:    email,
		Password: pw,
		Role:     string(token.RoleStudent),
	}
	if err := m.memberRepo.CreateUser(ctx, &member); err != nil {
		return "", err
	}
	logger.Log.Info("member registered", zap.String("member_id", member.MemberID))

	return m.openSession(ctx, &member)
}

// Login
func (m *memberUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	if member.Status == domain.MemberStatusBan || member.Status == domain.MemberStatusDelete {
		return nil, fmt.Errorf("%w: account disabled", domain.ErrUnauthenticated)
	}
	if err := member.IsPasswordMatch(password); err != nil {
		logger.Log.Debug("password mismatch", zap.String("member_id", member.MemberID))
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrValidation)
	}

	t, err := m.openSession(ctx, member)
	if err != nil {
		return nil, err
	}

	member.Status = domain.MemberStatusOnLine
	if err := m.memberRepo.UpdateMemberStatus(ctx, member); err != nil {
		return nil, err
	}

	return &LoginResult{Token: t, User: member.Profile()}, nil
}

func (m *memberUseCase) openSession(ctx context.Context, member *domain.Member) (string, error) {
	t, err := token.GenerateJWTWrapper(member.MemberID, member.Email, member.Role)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	now := m.now()
	session := domain.MemberSession{
		Token:        t,
		MemberID:     member.MemberID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(m.sessionTTL),
	}
	if err := m.sessions.Save(ctx, session, m.sessionTTL); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return t, nil
}

// Logout drops the session and marks the member offline
func (m *memberUseCase) Logout(ctx context.Context, memberID string) error {
	if err := m.sessions.Remove(ctx, memberID); err != nil {
		logger.Log.Warn("remove session failed", zap.String("member_id", memberID), zap.Error(err))
	}

	return m.memberRepo.UpdateMemberStatus(ctx, &domain.Member{
		MemberID: memberID,
		Status:   domain.MemberStatusOffLine,
	})
}

func (m *memberUseCase) Me(ctx context.Context, memberID string) (*domain.Profile, error) {
	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{MemberID: &memberID})
	if err != nil {
		return nil, err
	}
	p := member.Profile()
	return &p, nil
}

func (m *memberUseCase) Students(ctx context.Context) ([]domain.Profile, error) {
	members, err := m.memberRepo.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.Profile, 0, len(members))
	for i := range members {
		profiles = append(profiles, members[i].Profile())
	}
	return profiles, nil
}

// CheckSessionTimeout true when no live session remains
func (m *memberUseCase) CheckSessionTimeout(ctx context.Context, memberID string) (bool, error) {
	ttl, err := m.sessions.TTL(ctx, memberID)
	if err != nil {
		return true, err
	}
	return ttl <= 0, nil
}

// ReconnectSession extends a live session, an expired one must log in again
func (m *memberUseCase) ReconnectSession(ctx context.Context, memberID string) error {
	expired, err := m.CheckSessionTimeout(ctx, memberID)
	if err != nil {
		return err
	}
	if expired {
		return fmt.Errorf("%w: session expired", domain.ErrUnauthenticated)
	}
	return m.sessions.Extend(ctx, memberID, m.sessionTTL)
}

// ApplyPresence persists a chat presence transition as the last known status
func (m *memberUseCase) ApplyPresence(ctx context.Context, t domain.PresenceTransition) error {
	status, ok := domain.StatusFromPresence(t.Status)
	if !ok || t.UserID == "" {
		return fmt.Errorf("%w: presence transition %q for %q", domain.ErrValidation, t.Status, t.UserID)
	}
	return m.memberRepo.UpdateMemberStatus(ctx, &domain.Member{MemberID: t.UserID, Status: status})
}
