package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// Google endpoints used when the config leaves them empty
const (
	GoogleAuthURL   = "https://accounts.google.com/o/oauth2/auth"
	GoogleTokenURL  = "https://oauth2.googleapis.com/token"
	GoogleRevokeURL = "https://oauth2.googleapis.com/revoke"
	CalendarScope   = "https://www.googleapis.com/auth/calendar"
)

// CalendarProvider the OAuth side of a calendar link
type CalendarProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Revoke(ctx context.Context, token string) error
}

// CalendarProviderConfig empty endpoints fall back to Google's
type CalendarProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	RevokeURL    string
}

type googleCalendarProvider struct {
	config    oauth2.Config
	revokeURL string
	client    *http.Client
}

// NewGoogleCalendarProvider offline access to the member's calendars
func NewGoogleCalendarProvider(cfg CalendarProviderConfig) CalendarProvider {
	or := func(v, def string) string {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
		return def
	}
	return &googleCalendarProvider{
		config: oauth2.Config{
			ClientID:     strings.TrimSpace(cfg.ClientID),
			ClientSecret: strings.TrimSpace(cfg.ClientSecret),
			RedirectURL:  strings.TrimSpace(cfg.RedirectURL),
			Scopes:       []string{CalendarScope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  or(cfg.AuthURL, GoogleAuthURL),
				TokenURL: or(cfg.TokenURL, GoogleTokenURL),
			},
		},
		revokeURL: or(cfg.RevokeURL, GoogleRevokeURL),
		client:    http.DefaultClient,
	}
}

// AuthURL consent is forced so a refresh token is issued on every connect
func (p *googleCalendarProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

func (p *googleCalendarProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

func (p *googleCalendarProvider) Revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return fmt.Errorf("revoke failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
