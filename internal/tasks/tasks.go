// package tasks implements multi-request passport operations.
//
// The core abstraction is [Engine], which orchestrates snapshots, source
// comparisons, and backend dumps. Operations emit progress updates via
// channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"sort"

	"github.com/tuniverse/tvx/internal/models"
	"github.com/tuniverse/tvx/internal/services"
	"github.com/tuniverse/tvx/internal/shared"
)

// SnapshotResult contains the passport recorded by a snapshot operation.
type SnapshotResult struct {
	Passport   *services.Passport // Fetched passport
	SnapshotID string             // ID of the persisted snapshot
	Source     services.PassportSource
}

// CompareResult contains the country-level diff between the two aggregation sources.
type CompareResult struct {
	TopArtists    *services.Passport // Passport built from current top artists
	RecentPlays   *services.Passport // Passport built from recently played tracks
	SharedCodes   []string           // Countries present in both
	OnlyTop       []string           // Countries only the top-artists source saw
	OnlyRecent    []string           // Countries only the recent-plays source saw
}

// EndpointResult represents the result of fetching data from a single API endpoint.
type EndpointResult struct {
	Endpoint string
	Data     any
	Error    error
}

// DumpResult contains all data fetched from the backend.
type DumpResult struct {
	Health      any              // Health/root status
	Profile     any              // Spotify profile
	Playlists   any              // Playlist page
	TopArtists  any              // Passport from top artists
	RecentPlays any              // Passport from recent plays
	Errors      []EndpointResult // Failed endpoint fetches
}

// DumpData is the JSON-serializable form of [DumpResult].
type DumpData struct {
	Health      any   `json:"health"`
	Profile     any   `json:"profile,omitempty"`
	Playlists   any   `json:"playlists,omitempty"`
	TopArtists  any   `json:"passport_top_artists,omitempty"`
	RecentPlays any   `json:"passport_recent_plays,omitempty"`
	Errors      []any `json:"errors,omitempty"`
}

// SnapshotStore is the persistence surface the engine writes snapshots to.
type SnapshotStore interface {
	Create(snapshot *models.PassportSnapshot) error
}

// APIClient defines the interface for raw requests to the backend.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type APIClient interface {
	Get(ctx context.Context, path string) (*services.APIResponse, error)
}

// Engine defines multi-request passport operations.
type Engine interface {
	// Snapshot fetches a passport and records it in the local history.
	Snapshot(ctx context.Context, progress chan<- ProgressUpdate, token string, source services.PassportSource, limit int) (*SnapshotResult, error)

	// Compare fetches both aggregation sources and diffs their country sets.
	Compare(ctx context.Context, progress chan<- ProgressUpdate, token string, limit int) (*CompareResult, error)

	// Dump fetches health, profile, playlists and both passports as raw JSON.
	Dump(ctx context.Context, progress chan<- ProgressUpdate, token string) (*DumpResult, error)
}

// PassportEngine implements [Engine] over the Tuniverse client.
type PassportEngine struct {
	client    services.Client
	api       APIClient
	snapshots SnapshotStore
}

var _ Engine = (*PassportEngine)(nil)

// NewPassportEngine creates a new PassportEngine with the provided dependencies.
// The snapshot store may be nil, in which case Snapshot fails cleanly.
func NewPassportEngine(client services.Client, api APIClient, snapshots SnapshotStore) *PassportEngine {
	return &PassportEngine{
		client:    client,
		api:       api,
		snapshots: snapshots,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PassportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Snapshot fetches a passport and persists it to the local history.
func (e *PassportEngine) Snapshot(ctx context.Context, progress chan<- ProgressUpdate, token string, source services.PassportSource, limit int) (*SnapshotResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: backend client not initialized", shared.ErrServiceUnavailable)
	}
	if e.snapshots == nil {
		return nil, fmt.Errorf("%w: snapshot store not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchPassportUpdate(1, 2, source))

	passport, err := e.client.Passport(ctx, token, source, limit)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, persistSnapshotUpdate(2, 2))

	var userID, shareLink string
	if passport.UserID != nil {
		userID = *passport.UserID
	}
	if passport.ShareLink != nil {
		shareLink = *passport.ShareLink
	}

	snapshot := models.NewPassportSnapshot(0, userID, source.String(), passport.TotalArtists,
		passport.CountryCounts, passport.RegionPercentages, shareLink)
	if err := e.snapshots.Create(snapshot); err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}

	return &SnapshotResult{
		Passport:   passport,
		SnapshotID: snapshot.ID(),
		Source:     source,
	}, nil
}

// Compare fetches both aggregation sources and diffs their country sets.
func (e *PassportEngine) Compare(ctx context.Context, progress chan<- ProgressUpdate, token string, limit int) (*CompareResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: backend client not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchPassportUpdate(1, 3, services.SourceTopArtists))
	top, err := e.client.Passport(ctx, token, services.SourceTopArtists, limit)
	if err != nil {
		return nil, fmt.Errorf("top-artists fetch failed: %w", err)
	}

	e.sendProgress(progress, fetchPassportUpdate(2, 3, services.SourceRecentPlays))
	recent, err := e.client.Passport(ctx, token, services.SourceRecentPlays, limit)
	if err != nil {
		return nil, fmt.Errorf("recent-plays fetch failed: %w", err)
	}

	e.sendProgress(progress, compareUpdate(3, 3))

	result := &CompareResult{TopArtists: top, RecentPlays: recent}

	for code := range top.CountryCounts {
		if _, ok := recent.CountryCounts[code]; ok {
			result.SharedCodes = append(result.SharedCodes, code)
		} else {
			result.OnlyTop = append(result.OnlyTop, code)
		}
	}
	for code := range recent.CountryCounts {
		if _, ok := top.CountryCounts[code]; !ok {
			result.OnlyRecent = append(result.OnlyRecent, code)
		}
	}

	sort.Strings(result.SharedCodes)
	sort.Strings(result.OnlyTop)
	sort.Strings(result.OnlyRecent)

	return result, nil
}

// Dump fetches all readable backend state as raw JSON.
//
// Partial failures are collected in Errors rather than aborting the dump.
func (e *PassportEngine) Dump(ctx context.Context, progress chan<- ProgressUpdate, token string) (*DumpResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	result := &DumpResult{}

	operations := []endpointOperation{
		{name: "health", path: "/", target: &result.Health, phase: FetchHealth, message: "Fetching backend status..."},
		{name: "profile", path: "/spotify/me?access_token=" + token, target: &result.Profile, phase: FetchProfile, message: "Fetching profile..."},
		{name: "playlists", path: "/spotify/playlists?access_token=" + token + "&limit=5", target: &result.Playlists, phase: FetchPlaylists, message: "Fetching playlists..."},
		{name: "passport_top", path: "/passport/from_token?access_token=" + token + "&limit=12", target: &result.TopArtists, phase: FetchPassport, message: "Fetching top-artists passport..."},
		{name: "passport_recent", path: "/passport/from_recent?access_token=" + token + "&limit=20", target: &result.RecentPlays, phase: FetchPassport, message: "Fetching recent-plays passport..."},
	}

	for i, op := range operations {
		e.sendProgress(progress, operationUpdate(op, i+1, len(operations)))

		resp, err := e.api.Get(ctx, op.path)
		if err != nil {
			result.Errors = append(result.Errors, EndpointResult{Endpoint: op.name, Error: err})
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			result.Errors = append(result.Errors, EndpointResult{
				Endpoint: op.name,
				Error:    fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode),
			})
			continue
		}

		if resp.IsJSON {
			*op.target = resp.JSONData
		} else {
			*op.target = string(resp.Body)
		}
	}

	return result, nil
}

// Data converts the dump to its JSON-serializable form.
func (d *DumpResult) Data() DumpData {
	data := DumpData{
		Health:      d.Health,
		Profile:     d.Profile,
		Playlists:   d.Playlists,
		TopArtists:  d.TopArtists,
		RecentPlays: d.RecentPlays,
	}
	for _, e := range d.Errors {
		data.Errors = append(data.Errors, map[string]string{
			"endpoint": e.Endpoint,
			"error":    e.Error.Error(),
		})
	}
	return data
}

type endpointOperation struct {
	name    string
	path    string
	target  *any
	phase   Phase
	message string
}
