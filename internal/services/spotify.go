// Direct Spotify OAuth2 support for users with their own client credentials.
//
// The normal login flow is hosted by the backend; this path exists so the CLI
// can complete the authorization-code exchange itself when pointed at a
// registered Spotify app.
package services

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// SpotifyAuthenticator drives the authorization-code flow against Spotify.
type SpotifyAuthenticator struct {
	config *oauth2.Config
}

// NewSpotifyAuthenticator creates an authenticator from the given credentials map.
func NewSpotifyAuthenticator(credentials map[string]string) (*SpotifyAuthenticator, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("missing client_id in credentials")
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("missing client_secret in credentials")
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-email",
			"playlist-read-private",
			"user-top-read",
			"user-read-recently-played",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyAuthenticator{config: config}, nil
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyAuthenticator) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for tokens.
func (s *SpotifyAuthenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return token, nil
}

// Config exposes the underlying oauth2 configuration for the callback server.
func (s *SpotifyAuthenticator) Config() *oauth2.Config {
	return s.config
}
