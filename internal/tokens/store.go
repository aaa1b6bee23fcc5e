package tokens

import (
	"fmt"
)

// Persistence is durable storage for exactly one token. Implementations must
// treat malformed stored data as absence, never as an error.
type Persistence interface {
	Load() (*Token, error)
	Save(token *Token) error
	Clear() error
}

// Store is the single source of truth for "am I signed in" within a session.
//
// One Store exists per session; all reads and mutations happen on the same
// goroutine (CLI action or TUI update loop), so no locking is required.
type Store struct {
	current *Token
	repo    Persistence
}

// NewStore creates a Store over the given persistence. A nil persistence
// yields a memory-only store (used by tests and token-paste sessions).
func NewStore(repo Persistence) *Store {
	return &Store{repo: repo}
}

// Restore reconstructs the session token, in priority order: a redirect
// fragment delivered at startup, then durable storage. A fragment that
// yields a token is persisted immediately so a later Restore without the
// fragment still finds it.
//
// Restore never fails: storage errors and malformed persisted data both
// degrade to the signed-out state.
func (s *Store) Restore(fragment string) *Token {
	if token, ok := ParseFragment(fragment); ok {
		if err := s.Save(*token); err != nil {
			// Persistence failure doesn't invalidate the delivered token.
			s.current = token
		}
		return s.current
	}

	if s.repo == nil {
		return s.current
	}

	token, err := s.repo.Load()
	if err != nil || !token.Present() {
		return nil
	}

	s.current = token
	return s.current
}

// Save replaces the session token and persists it. Fields absent in the
// input keep their previously persisted values; only Clear removes fields.
func (s *Store) Save(token Token) error {
	if !token.Present() {
		return fmt.Errorf("refusing to save token without access_token")
	}

	var prev *Token
	if s.repo != nil {
		prev, _ = s.repo.Load()
	}
	if prev == nil {
		prev = s.current
	}

	merged := token.merge(prev)
	s.current = &merged

	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(&merged); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// Clear removes the session token from memory and durable storage.
// Subsequent Restore calls return nil until a new token is saved.
func (s *Store) Clear() error {
	s.current = nil

	if s.repo == nil {
		return nil
	}
	if err := s.repo.Clear(); err != nil {
		return fmt.Errorf("failed to clear persisted token: %w", err)
	}
	return nil
}

// Current returns the in-memory token without touching persistence. Used to
// gate UI affordances; returns nil when signed out.
func (s *Store) Current() *Token {
	if !s.current.Present() {
		return nil
	}
	return s.current
}

// AccessToken returns the current bearer token string, or "" when signed out.
func (s *Store) AccessToken() string {
	if t := s.Current(); t != nil {
		return t.AccessToken
	}
	return ""
}
