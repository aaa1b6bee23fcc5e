// Tuniverse backend implementation of [Client]
//
// Endpoint contract mirrors the FastAPI backend: bearer tokens travel as the
// access_token query parameter, responses are plain JSON.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tuniverse/tvx/internal/shared"
)

// TuniverseService implements [Client] over HTTP against a fixed backend base
// address. It performs no retries and holds no response state between calls.
type TuniverseService struct {
	baseURL    string
	httpClient *http.Client
}

// NewTuniverseService creates a client for the backend at baseURL.
// The HTTP client defaults to [http.DefaultClient].
func NewTuniverseService(baseURL string, client *http.Client) *TuniverseService {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &TuniverseService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (t *TuniverseService) Name() string {
	return "Tuniverse"
}

// BaseURL returns the configured backend base address.
func (t *TuniverseService) BaseURL() string {
	return t.baseURL
}

// LoginURL returns the backend-hosted sign-in address. Navigating there is
// the UI's job; no request is made here.
func (t *TuniverseService) LoginURL() string {
	return t.baseURL + "/auth/login"
}

// get performs a GET against the backend and decodes the JSON response into result.
func (t *TuniverseService) get(ctx context.Context, path string, query url.Values, result any) error {
	apiURL := t.baseURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return &DecodeError{Cause: err}
		}
	}

	return nil
}

// requireToken is the local auth precondition: every authenticated operation
// checks it before any network I/O.
func requireToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: access token required", shared.ErrNotAuthenticated)
	}
	return nil
}

// spotifyProfile is the wire shape of /spotify/me (relayed Spotify payload).
type spotifyProfile struct {
	ID          string  `json:"id"`
	Email       *string `json:"email"`
	DisplayName *string `json:"display_name"`
	Country     *string `json:"country"`
	Product     *string `json:"product"`
}

// Profile retrieves the Spotify profile behind the token.
func (t *TuniverseService) Profile(ctx context.Context, token string) (*Profile, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}

	query := url.Values{"access_token": {token}}

	var raw spotifyProfile
	if err := t.get(ctx, "/spotify/me", query, &raw); err != nil {
		return nil, err
	}

	return &Profile{
		ID:          raw.ID,
		Email:       raw.Email,
		DisplayName: raw.DisplayName,
		Country:     raw.Country,
		Product:     raw.Product,
	}, nil
}

// spotifyPlaylists is the wire shape of /spotify/playlists. The nested
// tracks object is optional; its absence must survive into the domain shape.
type spotifyPlaylists struct {
	Items []struct {
		Name   string `json:"name"`
		Tracks *struct {
			Total int `json:"total"`
		} `json:"tracks"`
	} `json:"items"`
}

// Playlists retrieves one page of the user's playlists.
//
// A limit of zero or less falls back to [DefaultPlaylistLimit]; the backend
// never sees a non-positive limit.
func (t *TuniverseService) Playlists(ctx context.Context, token string, limit int) (*PlaylistPage, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}

	limit = NormalizeLimit(limit)

	query := url.Values{
		"access_token": {token},
		"limit":        {strconv.Itoa(limit)},
	}

	var raw spotifyPlaylists
	if err := t.get(ctx, "/spotify/playlists", query, &raw); err != nil {
		return nil, err
	}

	page := &PlaylistPage{Items: make([]Playlist, 0, len(raw.Items))}
	for _, item := range raw.Items {
		p := Playlist{Name: item.Name}
		if item.Tracks != nil {
			total := item.Tracks.Total
			p.TrackCount = &total
		}
		page.Items = append(page.Items, p)
	}

	return page, nil
}

// Passport retrieves an aggregated listening summary.
//
// The source selects the backend aggregation endpoint; the client never
// computes the aggregation itself. A non-positive limit falls back to the
// source default and is clamped to the backend's declared bounds (1..50).
func (t *TuniverseService) Passport(ctx context.Context, token string, source PassportSource, limit int) (*Passport, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = source.DefaultLimit()
	}
	if limit > 50 {
		limit = 50
	}

	path := "/passport/from_token"
	if source == SourceRecentPlays {
		path = "/passport/from_recent"
	}

	query := url.Values{
		"access_token": {token},
		"limit":        {strconv.Itoa(limit)},
	}

	var passport Passport
	if err := t.get(ctx, path, query, &passport); err != nil {
		return nil, err
	}

	return &passport, nil
}

// DemoPassport retrieves the canned demo passport for userID. No auth required.
func (t *TuniverseService) DemoPassport(ctx context.Context, userID string) (*Passport, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", shared.ErrMissingArgument)
	}

	var passport Passport
	if err := t.get(ctx, "/demo_passport/"+url.PathEscape(userID), nil, &passport); err != nil {
		return nil, err
	}

	return &passport, nil
}

// Refresh exchanges a refresh token for a new access token via /auth/refresh.
func (t *TuniverseService) Refresh(ctx context.Context, refreshToken string) (*RefreshedToken, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token required", shared.ErrNoRefreshToken)
	}

	query := url.Values{"refresh_token": {refreshToken}}

	var refreshed RefreshedToken
	if err := t.get(ctx, "/auth/refresh", query, &refreshed); err != nil {
		return nil, err
	}

	if refreshed.AccessToken == "" {
		return nil, &DecodeError{Cause: fmt.Errorf("refresh response missing access_token")}
	}

	return &refreshed, nil
}
