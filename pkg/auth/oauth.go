package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// NewCalendarService creates an authenticated Google Calendar service from a
// stored refresh token. The runs are headless and scheduled, so there is no
// interactive consent flow here: the refresh token must have been obtained
// once out of band and supplied through configuration.
func NewCalendarService(ctx context.Context, clientID, clientSecret, refreshToken string) (*calendar.Service, error) {
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("calendar credentials are not configured")
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendar.CalendarReadonlyScope},
	}

	// A token with only a refresh token is treated as expired, so the first
	// request performs the refresh-token grant. A failure here aborts the
	// whole import phase.
	token := &oauth2.Token{RefreshToken: refreshToken}
	if _, err := config.TokenSource(ctx, token).Token(); err != nil {
		return nil, fmt.Errorf("failed to refresh calendar access token: %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Google Calendar service: %w", err)
	}
	return srv, nil
}
