package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tuniverse/tvx/internal/models"
	"github.com/tuniverse/tvx/internal/shared"
)

// PassportRepository persists [models.PassportSnapshot] history.
type PassportRepository struct {
	db *sql.DB
}

// NewPassportRepository creates a new [PassportRepository] with the given database connection
func NewPassportRepository(db *sql.DB) *PassportRepository {
	return &PassportRepository{db: db}
}

// Create inserts a new snapshot with generated ID and sequence
func (r *PassportRepository) Create(snapshot *models.PassportSnapshot) error {
	sequence, err := NextSequence(r.db, "passports")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	snapshot.SetID(id)

	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	countries, err := json.Marshal(snapshot.CountryCounts())
	if err != nil {
		return fmt.Errorf("failed to marshal country counts: %w", err)
	}
	regions, err := json.Marshal(snapshot.RegionPercentages())
	if err != nil {
		return fmt.Errorf("failed to marshal region percentages: %w", err)
	}

	query := `
		INSERT INTO passports (id, sequence, user_id, source, total_artists, country_counts, region_percentages, share_link, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, snapshot.UserID(), snapshot.Source(), snapshot.TotalArtists(),
		string(countries), string(regions), snapshot.ShareLink(), snapshot.CreatedAt(), snapshot.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// Get retrieves a snapshot by ID
func (r *PassportRepository) Get(id string) (*models.PassportSnapshot, error) {
	query := `
		SELECT id, sequence, user_id, source, total_artists, country_counts, region_percentages, share_link, created_at, updated_at
		FROM passports
		WHERE id = ?
	`

	row := r.db.QueryRow(query, id)
	snapshot, err := scanSnapshot(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	return snapshot, nil
}

// List retrieves all snapshots matching the given criteria, newest first
func (r *PassportRepository) List(criteria map[string]any) ([]*models.PassportSnapshot, error) {
	query := `
		SELECT id, sequence, user_id, source, total_artists, country_counts, region_percentages, share_link, created_at, updated_at
		FROM passports
	`

	args := []any{}
	where := ""

	if source, ok := criteria["source"].(string); ok && source != "" {
		where = " WHERE source = ?"
		args = append(args, source)
	}

	query += where + " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.PassportSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return snapshots, nil
}

// Delete removes a snapshot by ID
func (r *PassportRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM passports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("snapshot not found: %s", id)
	}

	return nil
}

func scanSnapshot(scan func(dest ...any) error) (*models.PassportSnapshot, error) {
	var (
		id           string
		sequence     int
		userID       sql.NullString
		source       string
		totalArtists int
		countriesRaw string
		regionsRaw   string
		shareLink    sql.NullString
		createdAt    time.Time
		updatedAt    time.Time
	)

	if err := scan(&id, &sequence, &userID, &source, &totalArtists, &countriesRaw, &regionsRaw, &shareLink, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	countries := map[string]int{}
	if err := json.Unmarshal([]byte(countriesRaw), &countries); err != nil {
		return nil, fmt.Errorf("corrupt country counts for snapshot %s: %w", id, err)
	}

	regions := map[string]float64{}
	if err := json.Unmarshal([]byte(regionsRaw), &regions); err != nil {
		return nil, fmt.Errorf("corrupt region percentages for snapshot %s: %w", id, err)
	}

	snapshot := models.NewPassportSnapshot(sequence, userID.String, source, totalArtists, countries, regions, shareLink.String)
	snapshot.SetID(id)
	snapshot.SetCreatedAt(createdAt)
	snapshot.SetUpdatedAt(updatedAt)

	return snapshot, nil
}
