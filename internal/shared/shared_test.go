package shared

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Backend.BaseURL != "http://127.0.0.1:8000" {
			t.Errorf("unexpected backend base url %q", config.Backend.BaseURL)
		}
		if config.Database.Path != "tvx.db" {
			t.Errorf("unexpected database path %q", config.Database.Path)
		}
		if config.Server.Addr() != "localhost:8080" {
			t.Errorf("unexpected server addr %q", config.Server.Addr())
		}
	})

	t.Run("round-trips through save and load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		config := DefaultConfig()
		config.Backend.BaseURL = "https://tuniverse.example.com"
		config.Credentials.Spotify.ClientID = "abc123"

		if err := SaveConfig(path, config); err != nil {
			t.Fatalf("unexpected save error: %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected load error: %v", err)
		}
		if loaded.Backend.BaseURL != "https://tuniverse.example.com" {
			t.Errorf("unexpected backend base url %q", loaded.Backend.BaseURL)
		}
		if loaded.Credentials.Spotify.ClientID != "abc123" {
			t.Errorf("unexpected client id %q", loaded.Credentials.Spotify.ClientID)
		}
	})

	t.Run("LoadConfig fails for a missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		t.Run("writes a loadable template", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")

			if err := CreateConfigFile(path); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("template did not load: %v", err)
			}
			if config.Server.Port != 8080 {
				t.Errorf("unexpected server port %d", config.Server.Port)
			}
		})

		t.Run("refuses to overwrite an existing file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
				t.Fatalf("failed to seed file: %v", err)
			}

			if err := CreateConfigFile(path); err == nil {
				t.Error("expected error for existing file")
			}
		})
	})

	t.Run("SpotifyConfig map form", func(t *testing.T) {
		credentials := SpotifyConfig{ClientID: "id", ClientSecret: "secret", RedirectURI: "http://localhost:8080/callback"}
		m := credentials.Map()

		if m["client_id"] != "id" || m["client_secret"] != "secret" || m["redirect_uri"] != "http://localhost:8080/callback" {
			t.Errorf("unexpected credential map %v", m)
		}
	})
}

func TestMigrations(t *testing.T) {
	t.Run("RunMigrations creates the schema", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, table := range []string{"tokens", "passports", "passports_sequence"} {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
			if err != nil {
				t.Errorf("expected table %s to exist: %v", table, err)
			}
		}
	})

	t.Run("RunMigrations is idempotent", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("unexpected error on first run: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Errorf("unexpected error on second run: %v", err)
		}
	})

	t.Run("RollbackMigration undoes the schema", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("unexpected rollback error: %v", err)
		}

		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'passports'").Scan(&name)
		if err == nil {
			t.Error("expected passports table to be dropped")
		}
	})

	t.Run("RollbackMigration with nothing applied is an error", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := createMigrationsTable(db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when no migrations are applied")
		}
	})
}

func TestGenerateID(t *testing.T) {
	t.Run("produces distinct ids", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			id := GenerateID()
			if id == "" {
				t.Fatal("expected non-empty id")
			}
			if seen[id] {
				t.Fatalf("duplicate id %s", id)
			}
			seen[id] = true
		}
	})
}

func TestGenerateState(t *testing.T) {
	t.Run("produces hex of the expected length", func(t *testing.T) {
		state, err := GenerateState()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(state) != 32 {
			t.Errorf("expected 32 hex characters, got %d", len(state))
		}
		if _, err := hex.DecodeString(state); err != nil {
			t.Errorf("expected hex encoding, got %q", state)
		}
	})

	t.Run("produces distinct values", func(t *testing.T) {
		a, _ := GenerateState()
		b, _ := GenerateState()
		if a == b {
			t.Errorf("expected distinct states, got %q twice", a)
		}
	})
}

func TestMarshalJSON(t *testing.T) {
	payload := map[string]int{"artists": 12}

	t.Run("compact", func(t *testing.T) {
		data, err := MarshalJSON(payload, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"artists":12}` {
			t.Errorf("unexpected output %s", data)
		}
	})

	t.Run("pretty", func(t *testing.T) {
		data, err := MarshalJSON(payload, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), "\n  \"artists\": 12") {
			t.Errorf("expected indented output, got %s", data)
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tvx.log")

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Info("hello")

		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected log file to exist: %v", err)
		}
	})
}
