package tokens

import (
	"errors"
	"testing"
)

// memPersistence is an in-memory Persistence for tests.
type memPersistence struct {
	stored   *Token
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
}

func (m *memPersistence) Load() (*Token, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.stored == nil {
		return nil, nil
	}
	copied := *m.stored
	return &copied, nil
}

func (m *memPersistence) Save(token *Token) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := *token
	m.stored = &copied
	m.saves++
	return nil
}

func (m *memPersistence) Clear() error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.stored = nil
	return nil
}

func TestStore(t *testing.T) {
	t.Run("Restore", func(t *testing.T) {
		t.Run("returns nil when nothing is stored", func(t *testing.T) {
			store := NewStore(&memPersistence{})

			if token := store.Restore(""); token != nil {
				t.Errorf("expected nil token, got %+v", token)
			}
		})

		t.Run("prefers a redirect fragment over storage", func(t *testing.T) {
			repo := &memPersistence{stored: &Token{AccessToken: "old"}}
			store := NewStore(repo)

			token := store.Restore("#access_token=new&display_name=Ada")
			if token == nil {
				t.Fatal("expected token from fragment")
			}
			if token.AccessToken != "new" {
				t.Errorf("expected fragment token, got %q", token.AccessToken)
			}
			if token.DisplayName != "Ada" {
				t.Errorf("expected display name from fragment, got %q", token.DisplayName)
			}
		})

		t.Run("persists a fragment token immediately", func(t *testing.T) {
			repo := &memPersistence{}
			store := NewStore(repo)

			store.Restore("access_token=abc")

			if repo.stored == nil || repo.stored.AccessToken != "abc" {
				t.Errorf("expected fragment token persisted, got %+v", repo.stored)
			}

			// A later restore without the fragment still finds it.
			fresh := NewStore(repo)
			if token := fresh.Restore(""); token == nil || token.AccessToken != "abc" {
				t.Errorf("expected persisted token on reload, got %+v", token)
			}
		})

		t.Run("falls back to storage when fragment has no access token", func(t *testing.T) {
			repo := &memPersistence{stored: &Token{AccessToken: "stored"}}
			store := NewStore(repo)

			token := store.Restore("#refresh_token=only")
			if token == nil || token.AccessToken != "stored" {
				t.Errorf("expected stored token, got %+v", token)
			}
		})

		t.Run("degrades to signed out on storage error", func(t *testing.T) {
			repo := &memPersistence{loadErr: errors.New("disk gone")}
			store := NewStore(repo)

			if token := store.Restore(""); token != nil {
				t.Errorf("expected nil token on load error, got %+v", token)
			}
		})

		t.Run("keeps the fragment token when persistence fails", func(t *testing.T) {
			repo := &memPersistence{saveErr: errors.New("disk full")}
			store := NewStore(repo)

			token := store.Restore("access_token=xyz")
			if token == nil || token.AccessToken != "xyz" {
				t.Errorf("expected in-memory token despite save failure, got %+v", token)
			}
		})

		t.Run("works without persistence", func(t *testing.T) {
			store := NewStore(nil)

			if token := store.Restore("access_token=mem"); token == nil || token.AccessToken != "mem" {
				t.Errorf("expected memory-only token, got %+v", token)
			}
			if store.AccessToken() != "mem" {
				t.Errorf("expected current access token, got %q", store.AccessToken())
			}
		})
	})

	t.Run("Save", func(t *testing.T) {
		t.Run("persists and round-trips all fields", func(t *testing.T) {
			repo := &memPersistence{}
			store := NewStore(repo)

			saved := Token{
				AccessToken:    "a",
				RefreshToken:   "r",
				AppToken:       "app",
				DisplayName:    "Ada",
				ProviderUserID: "ada42",
			}
			if err := store.Save(saved); err != nil {
				t.Fatalf("unexpected save error: %v", err)
			}

			fresh := NewStore(repo)
			restored := fresh.Restore("")
			if restored == nil {
				t.Fatal("expected restored token")
			}
			if *restored != saved {
				t.Errorf("expected %+v, got %+v", saved, *restored)
			}
		})

		t.Run("merges empty fields from the previous token", func(t *testing.T) {
			repo := &memPersistence{stored: &Token{
				AccessToken:  "old",
				RefreshToken: "keepme",
				DisplayName:  "Ada",
			}}
			store := NewStore(repo)

			if err := store.Save(Token{AccessToken: "new"}); err != nil {
				t.Fatalf("unexpected save error: %v", err)
			}

			if repo.stored.AccessToken != "new" {
				t.Errorf("expected replaced access token, got %q", repo.stored.AccessToken)
			}
			if repo.stored.RefreshToken != "keepme" {
				t.Errorf("expected refresh token preserved, got %q", repo.stored.RefreshToken)
			}
			if repo.stored.DisplayName != "Ada" {
				t.Errorf("expected display name preserved, got %q", repo.stored.DisplayName)
			}
		})

		t.Run("refuses a token without access token", func(t *testing.T) {
			store := NewStore(&memPersistence{})

			if err := store.Save(Token{RefreshToken: "r"}); err == nil {
				t.Error("expected error saving empty access token")
			}
		})
	})

	t.Run("Clear", func(t *testing.T) {
		t.Run("signs out and empties storage", func(t *testing.T) {
			repo := &memPersistence{stored: &Token{AccessToken: "a"}}
			store := NewStore(repo)
			store.Restore("")

			if err := store.Clear(); err != nil {
				t.Fatalf("unexpected clear error: %v", err)
			}
			if store.Current() != nil {
				t.Error("expected nil current token after clear")
			}
			if token := store.Restore(""); token != nil {
				t.Errorf("expected nil restore after clear, got %+v", token)
			}
		})
	})

	t.Run("Current", func(t *testing.T) {
		t.Run("does not touch persistence", func(t *testing.T) {
			repo := &memPersistence{stored: &Token{AccessToken: "a"}}
			store := NewStore(repo)

			if store.Current() != nil {
				t.Error("expected nil before restore")
			}
			store.Restore("")
			if store.Current() == nil {
				t.Error("expected token after restore")
			}
		})
	})
}

func TestParseFragment(t *testing.T) {
	t.Run("accepts a full callback URL", func(t *testing.T) {
		token, ok := ParseFragment("http://localhost:8080/callback#access_token=abc&refresh_token=def&app_token=jwt&display_name=Ada&spotify_id=ada42")
		if !ok {
			t.Fatal("expected fragment to parse")
		}
		if token.AccessToken != "abc" || token.RefreshToken != "def" || token.AppToken != "jwt" {
			t.Errorf("unexpected token fields: %+v", token)
		}
		if token.DisplayName != "Ada" || token.ProviderUserID != "ada42" {
			t.Errorf("unexpected identity fields: %+v", token)
		}
	})

	t.Run("accepts a bare fragment", func(t *testing.T) {
		token, ok := ParseFragment("#access_token=abc")
		if !ok || token.AccessToken != "abc" {
			t.Errorf("expected bare fragment to parse, got ok=%v token=%+v", ok, token)
		}
	})

	t.Run("accepts the key-value set itself", func(t *testing.T) {
		token, ok := ParseFragment("access_token=abc&refresh_token=def")
		if !ok || token.RefreshToken != "def" {
			t.Errorf("expected key-value input to parse, got ok=%v token=%+v", ok, token)
		}
	})

	t.Run("rejects input without an access token", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "#", "refresh_token=def", "http://x/#state=1"} {
			if _, ok := ParseFragment(raw); ok {
				t.Errorf("expected %q to be rejected", raw)
			}
		}
	})

	t.Run("decodes url-encoded values", func(t *testing.T) {
		token, ok := ParseFragment("access_token=abc&display_name=Ada%20Lovelace")
		if !ok || token.DisplayName != "Ada Lovelace" {
			t.Errorf("expected decoded display name, got ok=%v token=%+v", ok, token)
		}
	})
}

func TestStripFragment(t *testing.T) {
	t.Run("removes the fragment", func(t *testing.T) {
		if got := StripFragment("http://x/cb#access_token=a"); got != "http://x/cb" {
			t.Errorf("expected stripped URL, got %q", got)
		}
	})

	t.Run("passes through fragment-free input", func(t *testing.T) {
		if got := StripFragment("http://x/cb"); got != "http://x/cb" {
			t.Errorf("expected unchanged URL, got %q", got)
		}
	})
}
