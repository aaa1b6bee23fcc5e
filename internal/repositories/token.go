package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tuniverse/tvx/internal/tokens"
)

// TokenRepository implements [tokens.Persistence] over sqlite.
//
// The token is stored as a single JSON payload row. A payload that no longer
// unmarshals reads back as absence: the store degrades to signed-out rather
// than surfacing a parse failure.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

var _ tokens.Persistence = (*TokenRepository)(nil)

// Load reads the persisted token. Returns (nil, nil) when no token is stored
// or the stored payload is corrupt.
func (r *TokenRepository) Load() (*tokens.Token, error) {
	var payload string
	err := r.db.QueryRow("SELECT payload FROM tokens WHERE id = 1").Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	var token tokens.Token
	if err := json.Unmarshal([]byte(payload), &token); err != nil {
		// Corrupt payload is treated as signed-out, not as an error.
		return nil, nil
	}

	if token.AccessToken == "" {
		return nil, nil
	}

	return &token, nil
}

// Save upserts the token payload.
func (r *TokenRepository) Save(token *tokens.Token) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	query := `
		INSERT INTO tokens (id, payload, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, string(payload), time.Now()); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	return nil
}

// Clear removes the persisted token.
func (r *TokenRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM tokens WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
