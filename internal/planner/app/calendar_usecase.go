package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"focushub/internal/planner/domain"
	"focushub/internal/planner/repository"
	errprocess "focushub/pkg/err"
	"focushub/pkg/logger"
	"focushub/pkg/token"

	"go.uber.org/zap"
)

// CalendarStateTTL how long a connect link stays valid
const CalendarStateTTL = 10 * time.Minute

// Disconnect outcomes returned to the member
const (
	CalendarDisconnected        = "Google Calendar successfully disconnected."
	CalendarAlreadyDisconnected = "Calendar already disconnected."
)

// CalendarUseCase link a member to an external calendar
type CalendarUseCase interface {
	Connect(ctx context.Context, userID string) (string, error)
	Callback(ctx context.Context, code, state string) (string, error)
	Status(ctx context.Context, userID string) (*domain.CalendarStatus, error)
	Disconnect(ctx context.Context, userID string) (string, error)
}

type calendarUseCase struct {
	links      repository.CalendarRepo
	provider   CalendarProvider
	calendarID string
	now        func() time.Time
}

// NewCalendarUseCase a nil provider answers every call but Status with domain.ErrCalendarUnavailable
func NewCalendarUseCase(links repository.CalendarRepo, provider CalendarProvider, calendarID string) CalendarUseCase {
	if calendarID = strings.TrimSpace(calendarID); calendarID == "" {
		calendarID = domain.DefaultCalendarID
	}
	return &calendarUseCase{links: links, provider: provider, calendarID: calendarID, now: time.Now}
}

// Connect the state carries the member id, signed and short lived
func (u *calendarUseCase) Connect(_ context.Context, userID string) (string, error) {
	if u.provider == nil {
		return "", fmt.Errorf("%w: calendar sync is not configured", domain.ErrCalendarUnavailable)
	}
	state, err := token.GenerateState(userID, CalendarStateTTL)
	if err != nil {
		return "", err
	}
	return u.provider.AuthURL(state), nil
}

// Callback returns the member the link was stored for
func (u *calendarUseCase) Callback(ctx context.Context, code, state string) (string, error) {
	if u.provider == nil {
		return "", fmt.Errorf("%w: calendar sync is not configured", domain.ErrCalendarUnavailable)
	}
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("%w: authorization code required", domain.ErrValidation)
	}
	userID, err := token.ParseState(state)
	if err != nil {
		return "", fmt.Errorf("%w: calendar state: %w", errprocess.ErrUnauthenticated, err)
	}

	tok, err := u.provider.Exchange(ctx, code)
	if err != nil {
		return userID, fmt.Errorf("exchange calendar code: %w", err)
	}

	link, err := u.links.Find(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		link = &domain.CalendarLink{UserID: userID}
	} else if err != nil {
		return userID, err
	}

	link.AccessToken = tok.AccessToken
	// a re-consent may come back without one, the old refresh token still works
	if tok.RefreshToken != "" {
		link.RefreshToken = tok.RefreshToken
	}
	link.TokenExpiry = tok.Expiry
	link.CalendarID = u.calendarID
	if err := u.links.Save(ctx, link); err != nil {
		return userID, err
	}

	logger.Log.Info("calendar linked", zap.String("user_id", userID), zap.Bool("synced", link.Synced()))
	return userID, nil
}

func (u *calendarUseCase) Status(ctx context.Context, userID string) (*domain.CalendarStatus, error) {
	link, err := u.links.Find(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.CalendarStatus{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !link.Synced() {
		return &domain.CalendarStatus{}, nil
	}
	return &domain.CalendarStatus{IsSynced: true, CalendarID: link.CalendarID}, nil
}

// Disconnect a failed revoke is logged, the link is removed regardless
func (u *calendarUseCase) Disconnect(ctx context.Context, userID string) (string, error) {
	link, err := u.links.Find(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return CalendarAlreadyDisconnected, nil
	}
	if err != nil {
		return "", err
	}

	if tok := revocable(link); tok != "" && u.provider != nil {
		if err := u.provider.Revoke(ctx, tok); err != nil {
			logger.Log.Warn("calendar token revoke failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if err := u.links.Delete(ctx, userID); err != nil {
		return "", err
	}
	logger.Log.Info("calendar unlinked", zap.String("user_id", userID))
	return CalendarDisconnected, nil
}

// revoking the refresh token also ends every access token issued from it
func revocable(link *domain.CalendarLink) string {
	if link.RefreshToken != "" {
		return link.RefreshToken
	}
	return link.AccessToken
}
