package google

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
)

// ErrAuthRequired indicates no OAuth token is available yet; the operator
// must complete the /auth/google flow first.
var ErrAuthRequired = errors.New("authentication required")

// Config holds the OAuth2 client credentials for the Google Cloud project.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Validate checks the credentials are present.
func (c Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("missing Google OAuth client credentials")
	}
	return nil
}

// OAuth returns the oauth2 configuration with the calendar scopes.
func (c Config) OAuth() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			calendar.CalendarScope,
			calendar.CalendarEventsScope,
		},
	}
}

// AuthCodeURL returns the URL the operator visits to authorize the
// application. Consent is forced so a refresh token is always issued.
func (c Config) AuthCodeURL() string {
	return c.OAuth().AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for tokens and stores them.
func (c Config) Exchange(ctx context.Context, code string, store *TokenStore) error {
	token, err := c.OAuth().Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	store.Save(token)
	return nil
}

// TokenSource returns a source bound to the store. It can be created
// before any token exists: requests fail with ErrAuthRequired until the
// auth flow completes, and refreshed tokens are written back to the store.
func (c Config) TokenSource(ctx context.Context, store *TokenStore) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, conf: c.OAuth(), store: store}
}

type storeTokenSource struct {
	ctx   context.Context
	conf  *oauth2.Config
	store *TokenStore
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	current, err := s.store.Token()
	if err != nil {
		return nil, err
	}

	refreshed, err := s.conf.TokenSource(s.ctx, current).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}
	if refreshed.AccessToken != current.AccessToken {
		s.store.Save(refreshed)
	}
	return refreshed, nil
}
