package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tuniverse/tvx/internal/models"
	"github.com/tuniverse/tvx/internal/services"
	"github.com/tuniverse/tvx/internal/shared"
	tu "github.com/tuniverse/tvx/internal/testing"
)

// memSnapshots is an in-memory SnapshotStore.
type memSnapshots struct {
	created   []*models.PassportSnapshot
	createErr error
}

func (m *memSnapshots) Create(snapshot *models.PassportSnapshot) error {
	if m.createErr != nil {
		return m.createErr
	}
	snapshot.SetID(fmt.Sprintf("snap-%d", len(m.created)+1))
	m.created = append(m.created, snapshot)
	return nil
}

// fakeAPI returns canned responses per path.
type fakeAPI struct {
	responses map[string]*services.APIResponse
	errs      map[string]error
}

func (f *fakeAPI) Get(ctx context.Context, path string) (*services.APIResponse, error) {
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	if resp, ok := f.responses[path]; ok {
		return resp, nil
	}
	return &services.APIResponse{StatusCode: 200, IsJSON: true, JSONData: map[string]any{"ok": true}}, nil
}

func strPtr(s string) *string { return &s }

func samplePassport(artists int) *services.Passport {
	return &services.Passport{
		UserID:            strPtr("ada42"),
		TotalArtists:      artists,
		CountryCounts:     map[string]int{"US": 7, "DE": 5},
		RegionPercentages: map[string]float64{"Americas": 0.583, "Europe": 0.417},
		ShareLink:         strPtr("https://tuniverse.app/p/abc"),
	}
}

func TestSnapshot(t *testing.T) {
	t.Run("fetches and persists", func(t *testing.T) {
		store := &memSnapshots{}
		client := &tu.MockClient{
			PassportFunc: func(ctx context.Context, token string, source services.PassportSource, limit int) (*services.Passport, error) {
				if token != "tok" || source != services.SourceTopArtists || limit != 12 {
					t.Errorf("unexpected fetch arguments: %q %v %d", token, source, limit)
				}
				return samplePassport(12), nil
			},
		}
		engine := NewPassportEngine(client, nil, store)

		result, err := engine.Snapshot(context.Background(), nil, "tok", services.SourceTopArtists, 12)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.SnapshotID != "snap-1" {
			t.Errorf("unexpected snapshot id %q", result.SnapshotID)
		}
		if result.Passport.TotalArtists != 12 {
			t.Errorf("unexpected passport %+v", result.Passport)
		}
		if len(store.created) != 1 {
			t.Fatalf("expected one persisted snapshot, got %d", len(store.created))
		}

		snapshot := store.created[0]
		if snapshot.UserID() != "ada42" || snapshot.Source() != "top-artists" {
			t.Errorf("unexpected snapshot %+v", snapshot)
		}
		if snapshot.CountryCounts()["US"] != 7 {
			t.Errorf("unexpected country counts %v", snapshot.CountryCounts())
		}
		if snapshot.ShareLink() != "https://tuniverse.app/p/abc" {
			t.Errorf("unexpected share link %q", snapshot.ShareLink())
		}
	})

	t.Run("nil store fails cleanly", func(t *testing.T) {
		engine := NewPassportEngine(&tu.MockClient{}, nil, nil)

		_, err := engine.Snapshot(context.Background(), nil, "tok", services.SourceTopArtists, 12)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("fetch failure propagates", func(t *testing.T) {
		client := &tu.MockClient{
			PassportFunc: func(ctx context.Context, token string, source services.PassportSource, limit int) (*services.Passport, error) {
				return nil, fmt.Errorf("%w: boom", shared.ErrAPIRequest)
			},
		}
		engine := NewPassportEngine(client, nil, &memSnapshots{})

		_, err := engine.Snapshot(context.Background(), nil, "tok", services.SourceTopArtists, 12)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("persist failure is reported", func(t *testing.T) {
		store := &memSnapshots{createErr: errors.New("disk full")}
		engine := NewPassportEngine(&tu.MockClient{}, nil, store)

		_, err := engine.Snapshot(context.Background(), nil, "tok", services.SourceTopArtists, 12)
		if err == nil || !strings.Contains(err.Error(), "failed to record snapshot") {
			t.Errorf("expected record failure, got %v", err)
		}
	})

	t.Run("progress never blocks without a receiver", func(t *testing.T) {
		progress := make(chan ProgressUpdate)
		engine := NewPassportEngine(&tu.MockClient{}, nil, &memSnapshots{})

		if _, err := engine.Snapshot(context.Background(), progress, "tok", services.SourceTopArtists, 12); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestCompare(t *testing.T) {
	t.Run("diffs country sets", func(t *testing.T) {
		client := &tu.MockClient{
			PassportFunc: func(ctx context.Context, token string, source services.PassportSource, limit int) (*services.Passport, error) {
				switch source {
				case services.SourceTopArtists:
					return &services.Passport{TotalArtists: 3, CountryCounts: map[string]int{"US": 2, "DE": 1, "JP": 1}}, nil
				default:
					return &services.Passport{TotalArtists: 2, CountryCounts: map[string]int{"US": 1, "BR": 1}}, nil
				}
			},
		}
		engine := NewPassportEngine(client, nil, nil)

		result, err := engine.Compare(context.Background(), nil, "tok", 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.SharedCodes) != 1 || result.SharedCodes[0] != "US" {
			t.Errorf("unexpected shared codes %v", result.SharedCodes)
		}
		if len(result.OnlyTop) != 2 || result.OnlyTop[0] != "DE" || result.OnlyTop[1] != "JP" {
			t.Errorf("expected sorted top-only codes, got %v", result.OnlyTop)
		}
		if len(result.OnlyRecent) != 1 || result.OnlyRecent[0] != "BR" {
			t.Errorf("unexpected recent-only codes %v", result.OnlyRecent)
		}
	})

	t.Run("first fetch failure aborts", func(t *testing.T) {
		calls := 0
		client := &tu.MockClient{
			PassportFunc: func(ctx context.Context, token string, source services.PassportSource, limit int) (*services.Passport, error) {
				calls++
				return nil, errors.New("boom")
			},
		}
		engine := NewPassportEngine(client, nil, nil)

		_, err := engine.Compare(context.Background(), nil, "tok", 20)
		if err == nil || !strings.Contains(err.Error(), "top-artists fetch failed") {
			t.Errorf("expected top-artists failure, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected a single fetch, got %d", calls)
		}
	})
}

func TestDump(t *testing.T) {
	t.Run("collects partial failures", func(t *testing.T) {
		api := &fakeAPI{
			responses: map[string]*services.APIResponse{
				"/": {StatusCode: 200, IsJSON: true, JSONData: map[string]any{"status": "ok"}},
				"/spotify/me?access_token=tok": {StatusCode: 401, Body: []byte("invalid token")},
			},
			errs: map[string]error{
				"/spotify/playlists?access_token=tok&limit=5": fmt.Errorf("%w: connection refused", shared.ErrServiceUnavailable),
			},
		}
		engine := NewPassportEngine(&tu.MockClient{}, api, nil)

		result, err := engine.Dump(context.Background(), nil, "tok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Health == nil {
			t.Error("expected health data")
		}
		if result.Profile != nil {
			t.Errorf("expected no profile data on 401, got %v", result.Profile)
		}
		if len(result.Errors) != 2 {
			t.Fatalf("expected two failed endpoints, got %d: %v", len(result.Errors), result.Errors)
		}

		data := result.Data()
		if len(data.Errors) != 2 {
			t.Errorf("expected errors in serializable form, got %v", data.Errors)
		}
	})

	t.Run("nil api client fails cleanly", func(t *testing.T) {
		engine := NewPassportEngine(&tu.MockClient{}, nil, nil)
		_, err := engine.Dump(context.Background(), nil, "tok")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("non-JSON bodies are kept as strings", func(t *testing.T) {
		api := &fakeAPI{
			responses: map[string]*services.APIResponse{
				"/": {StatusCode: 200, Body: []byte("plain ok")},
			},
		}
		engine := NewPassportEngine(&tu.MockClient{}, api, nil)

		result, err := engine.Dump(context.Background(), nil, "tok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Health != "plain ok" {
			t.Errorf("expected raw body, got %v", result.Health)
		}
	})
}

func TestBulkDemoExport(t *testing.T) {
	newEngine := func(t *testing.T) *PassportEngine {
		t.Helper()
		client := &tu.MockClient{
			DemoPassportFunc: func(ctx context.Context, userID string) (*services.Passport, error) {
				if userID == "broken" {
					return nil, errors.New("user not found")
				}
				return samplePassport(12), nil
			},
		}
		return NewPassportEngine(client, nil, nil)
	}

	t.Run("exports each user and writes a manifest", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "export")
		engine := newEngine(t)

		result, err := engine.BulkDemoExport(context.Background(), nil, []string{"alice", "bob"},
			BulkDemoOpts{Format: "json", OutputDir: dir, NumWorkers: 2, RateLimit: 100})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.SuccessfulExports != 2 || result.FailedExports != 0 {
			t.Errorf("unexpected totals %+v", result)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "alice.json"))
		tu.AssertFileExists(t, filepath.Join(dir, "bob.json"))
		tu.AssertFileExists(t, result.ManifestPath)

		manifest := tu.MustReadFile(t, result.ManifestPath)
		if !strings.Contains(manifest, `"TotalUsers": 2`) {
			t.Errorf("unexpected manifest contents: %s", manifest)
		}
	})

	t.Run("failed fetches are recorded, not fatal", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "export")
		engine := newEngine(t)

		result, err := engine.BulkDemoExport(context.Background(), nil, []string{"alice", "broken"},
			BulkDemoOpts{Format: "json", OutputDir: dir, RateLimit: 100})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.SuccessfulExports != 1 || result.FailedExports != 1 {
			t.Errorf("unexpected totals %+v", result)
		}
	})

	t.Run("format selects the file extension", func(t *testing.T) {
		for format, suffix := range map[string]string{
			"csv":      "_countries.csv",
			"markdown": ".md",
			"txt":      ".txt",
		} {
			t.Run(format, func(t *testing.T) {
				dir := filepath.Join(t.TempDir(), "export")
				engine := newEngine(t)

				result, err := engine.BulkDemoExport(context.Background(), nil, []string{"alice"},
					BulkDemoOpts{Format: format, OutputDir: dir, RateLimit: 100})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if result.SuccessfulExports != 1 {
					t.Fatalf("unexpected totals %+v", result)
				}
				tu.AssertFileExists(t, filepath.Join(dir, "alice"+suffix))
			})
		}
	})
}

func TestPhase(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		cases := map[Phase]string{
			FetchHealth:    "fetch_health",
			FetchProfile:   "fetch_profile",
			FetchPlaylists: "fetch_playlists",
			FetchPassport:  "fetch_passport",
			Persist:        "persist",
			Compare:        "compare",
			ExportDemo:     "export_demo",
			Phase(99):      "",
		}
		for phase, want := range cases {
			if got := phase.String(); got != want {
				t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
			}
		}
	})
}
