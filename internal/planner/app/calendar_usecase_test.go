package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"focushub/internal/planner/domain"
	"focushub/internal/planner/repository"
	errprocess "focushub/pkg/err"
	"focushub/pkg/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newCalendarRepo(t *testing.T) repository.CalendarRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	repo := repository.NewCalendarRepo(db)
	require.NoError(t, repo.AutoMigrate())
	return repo
}

// MockCalendarProvider stands in for Google
type MockCalendarProvider struct {
	mock.Mock
}

func (m *MockCalendarProvider) AuthURL(state string) string {
	return "https://consent.example/auth?state=" + url.QueryEscape(state)
}

func (m *MockCalendarProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	tok, _ := args.Get(0).(*oauth2.Token)
	return tok, args.Error(1)
}

func (m *MockCalendarProvider) Revoke(ctx context.Context, tok string) error {
	return m.Called(ctx, tok).Error(0)
}

func stateOf(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestCalendarUseCaseLink(t *testing.T) {
	ctx := context.Background()
	links := newCalendarRepo(t)
	provider := &MockCalendarProvider{}
	uc := NewCalendarUseCase(links, provider, "")

	authURL, err := uc.Connect(ctx, "u1")
	require.NoError(t, err)
	state := stateOf(t, authURL)
	owner, err := token.ParseState(state)
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)

	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	provider.On("Exchange", mock.Anything, "code-1").Return(&oauth2.Token{AccessToken: "a1", RefreshToken: "r1", Expiry: expiry}, nil).Once()
	userID, err := uc.Callback(ctx, "code-1", state)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	status, err := uc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, &domain.CalendarStatus{IsSynced: true, CalendarID: domain.DefaultCalendarID}, status)

	t.Run("reconnect without refresh token keeps the old one", func(t *testing.T) {
		provider.On("Exchange", mock.Anything, "code-2").Return(&oauth2.Token{AccessToken: "a2"}, nil).Once()
		_, err := uc.Callback(ctx, "code-2", state)
		require.NoError(t, err)

		link, err := links.Find(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "a2", link.AccessToken)
		assert.Equal(t, "r1", link.RefreshToken)
	})

	t.Run("disconnect revokes then forgets", func(t *testing.T) {
		provider.On("Revoke", mock.Anything, "r1").Return(errors.New("google down")).Once()
		msg, err := uc.Disconnect(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, CalendarDisconnected, msg)

		status, err := uc.Status(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, status.IsSynced)

		msg, err = uc.Disconnect(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, CalendarAlreadyDisconnected, msg)
	})

	provider.AssertExpectations(t)
}

func TestCalendarUseCaseRejects(t *testing.T) {
	ctx := context.Background()
	provider := &MockCalendarProvider{}
	uc := NewCalendarUseCase(newCalendarRepo(t), provider, "team@group.calendar.google.com")

	t.Run("missing code", func(t *testing.T) {
		state, err := token.GenerateState("u1", time.Minute)
		require.NoError(t, err)
		_, err = uc.Callback(ctx, "", state)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("plain user id as state", func(t *testing.T) {
		_, err := uc.Callback(ctx, "code", "u1")
		assert.ErrorIs(t, err, errprocess.ErrUnauthenticated)
	})

	t.Run("login token as state", func(t *testing.T) {
		login, err := token.GenerateJWT("u1", "u1@example.com", string(token.RoleStudent), "planner-test")
		require.NoError(t, err)
		_, err = uc.Callback(ctx, "code", login)
		assert.ErrorIs(t, err, errprocess.ErrUnauthenticated)
	})

	t.Run("exchange failure stores nothing", func(t *testing.T) {
		state, err := token.GenerateState("u2", time.Minute)
		require.NoError(t, err)
		provider.On("Exchange", mock.Anything, "bad").Return(nil, errors.New("invalid_grant")).Once()
		userID, err := uc.Callback(ctx, "bad", state)
		assert.Error(t, err)
		assert.Equal(t, "u2", userID)

		status, err := uc.Status(ctx, "u2")
		require.NoError(t, err)
		assert.False(t, status.IsSynced)
	})

	provider.AssertNotCalled(t, "Exchange", mock.Anything, "code")
}

func TestCalendarUseCaseUnconfigured(t *testing.T) {
	ctx := context.Background()
	uc := NewCalendarUseCase(newCalendarRepo(t), nil, "")

	_, err := uc.Connect(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrCalendarUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, errprocess.StatusCode(err))

	_, err = uc.Callback(ctx, "code", "state")
	assert.ErrorIs(t, err, domain.ErrCalendarUnavailable)

	status, err := uc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, status.IsSynced)
}

func TestGoogleCalendarProvider(t *testing.T) {
	var revoked url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch r.URL.Path {
		case "/token":
			if r.PostForm.Get("grant_type") != "authorization_code" || r.PostForm.Get("code") != "code-1" {
				http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"a1","refresh_token":"r1","token_type":"Bearer","expires_in":3600}`))
		case "/revoke":
			revoked = r.PostForm
			if r.PostForm.Get("token") == "gone" {
				http.Error(w, `{"error":"invalid_token"}`, http.StatusBadRequest)
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p := NewGoogleCalendarProvider(CalendarProviderConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/calendar/google/callback",
		AuthURL:      server.URL + "/auth",
		TokenURL:     server.URL + "/token",
		RevokeURL:    server.URL + "/revoke",
	})

	authURL, err := url.Parse(p.AuthURL("s1"))
	require.NoError(t, err)
	q := authURL.Query()
	assert.Equal(t, "s1", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, CalendarScope, q.Get("scope"))

	tok, err := p.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "a1", tok.AccessToken)
	assert.Equal(t, "r1", tok.RefreshToken)

	require.NoError(t, p.Revoke(context.Background(), "r1"))
	assert.Equal(t, "r1", revoked.Get("token"))
	assert.Error(t, p.Revoke(context.Background(), "gone"))
}
