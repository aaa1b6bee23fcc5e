// package services defines interface Client for interacting with the Tuniverse backend
package services

import (
	"context"
	"strconv"
)

// PassportSource selects which upstream aggregation the backend runs.
type PassportSource int

const (
	// SourceTopArtists builds the passport from the user's current top artists.
	SourceTopArtists PassportSource = iota
	// SourceRecentPlays builds the passport from recently played tracks.
	SourceRecentPlays
)

func (s PassportSource) String() string {
	switch s {
	case SourceTopArtists:
		return "top-artists"
	case SourceRecentPlays:
		return "recent-plays"
	default:
		return "unknown"
	}
}

// DefaultLimit returns the source-dependent number of upstream items that
// feed the aggregation when the caller doesn't specify one.
func (s PassportSource) DefaultLimit() int {
	if s == SourceRecentPlays {
		return 20
	}
	return 12
}

// ParseSource maps a user-supplied source name to a [PassportSource].
// Unrecognized input falls back to [SourceTopArtists].
func ParseSource(name string) PassportSource {
	switch name {
	case "recent", "recent-plays", "recently-played":
		return SourceRecentPlays
	default:
		return SourceTopArtists
	}
}

// Client defines the operations the Tuniverse backend exposes to thin clients.
type Client interface {
	// LoginURL returns the address the user should visit for the
	// backend-hosted sign-in flow. Not a network call.
	LoginURL() string

	// Profile retrieves the Spotify profile for the given access token.
	Profile(ctx context.Context, token string) (*Profile, error)

	// Playlists retrieves up to limit playlists. A non-positive limit falls
	// back to DefaultPlaylistLimit.
	Playlists(ctx context.Context, token string, limit int) (*PlaylistPage, error)

	// Passport retrieves an aggregated listening summary built from the
	// selected source. A non-positive limit falls back to the source default.
	Passport(ctx context.Context, token string, source PassportSource, limit int) (*Passport, error)

	// DemoPassport retrieves the canned demo passport for a user id. No auth.
	DemoPassport(ctx context.Context, userID string) (*Passport, error)

	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (*RefreshedToken, error)

	// Name returns the name of the backend (e.g. "Tuniverse")
	Name() string
}

// Profile represents a Spotify user profile as relayed by the backend.
//
// Optional fields stay nil when the upstream payload omits them; mapping
// absence to display placeholders is the renderer's job, not the decoder's.
type Profile struct {
	ID          string  `json:"id"`
	Email       *string `json:"email"`
	DisplayName *string `json:"display_name"`
	Country     *string `json:"country"`
	Product     *string `json:"product"`
}

// PlaylistPage represents one page of the user's playlists.
type PlaylistPage struct {
	Items []Playlist `json:"items"`
}

// Playlist is a single playlist entry. TrackCount is nil when the nested
// tracks object is absent upstream; it is never coerced to zero.
type Playlist struct {
	Name       string `json:"name"`
	TrackCount *int   `json:"track_count"`
}

// Passport is an aggregated summary of listening history by country/region.
//
// TotalArtists == 0 is a valid "no data yet" state, distinct from any fetch
// failure; callers must branch on it explicitly.
type Passport struct {
	UserID            *string            `json:"user_id"`
	TotalArtists      int                `json:"total_artists"`
	CountryCounts     map[string]int     `json:"country_counts"`
	RegionPercentages map[string]float64 `json:"region_percentages"`
	ShareLink         *string            `json:"share_link"`
}

// RefreshedToken is the backend's answer to a refresh-token exchange.
type RefreshedToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// DefaultPlaylistLimit is the effective playlist page size when the caller
// supplies no usable limit.
const DefaultPlaylistLimit = 5

// NormalizeLimit clamps a playlist limit: zero, negative, or otherwise
// unusable values become [DefaultPlaylistLimit].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultPlaylistLimit
	}
	return limit
}

// ParseLimit coerces free-form user input to a limit, falling back to def
// when the input is empty, non-numeric, zero, or negative.
func ParseLimit(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
