package models

import (
	"fmt"
	"time"
)

// PassportSnapshot is a locally persisted copy of a fetched passport.
//
// The backend owns passport generation; snapshots exist so a user can browse
// past results offline. The client itself never caches; snapshots are
// written explicitly by the snapshot task.
type PassportSnapshot struct {
	id                string
	sequence          int
	userID            string
	source            string
	totalArtists      int
	countryCounts     map[string]int
	regionPercentages map[string]float64
	shareLink         string
	createdAt         time.Time
	updatedAt         time.Time
}

// NewPassportSnapshot creates a snapshot with the given sequence and payload.
// The ID is assigned by the repository on Create.
func NewPassportSnapshot(sequence int, userID, source string, totalArtists int, countryCounts map[string]int, regionPercentages map[string]float64, shareLink string) *PassportSnapshot {
	now := time.Now()
	return &PassportSnapshot{
		sequence:          sequence,
		userID:            userID,
		source:            source,
		totalArtists:      totalArtists,
		countryCounts:     countryCounts,
		regionPercentages: regionPercentages,
		shareLink:         shareLink,
		createdAt:         now,
		updatedAt:         now,
	}
}

func (p *PassportSnapshot) ID() string                            { return p.id }
func (p *PassportSnapshot) Sequence() int                         { return p.sequence }
func (p *PassportSnapshot) UserID() string                        { return p.userID }
func (p *PassportSnapshot) Source() string                        { return p.source }
func (p *PassportSnapshot) TotalArtists() int                     { return p.totalArtists }
func (p *PassportSnapshot) CountryCounts() map[string]int         { return p.countryCounts }
func (p *PassportSnapshot) RegionPercentages() map[string]float64 { return p.regionPercentages }
func (p *PassportSnapshot) ShareLink() string                     { return p.shareLink }
func (p *PassportSnapshot) CreatedAt() time.Time                  { return p.createdAt }
func (p *PassportSnapshot) UpdatedAt() time.Time                  { return p.updatedAt }

func (p *PassportSnapshot) SetID(id string)            { p.id = id }
func (p *PassportSnapshot) SetCreatedAt(ts time.Time)  { p.createdAt = ts }
func (p *PassportSnapshot) SetUpdatedAt(ts time.Time)  { p.updatedAt = ts }

// Validate checks snapshot invariants before persistence. A zero artist
// count is valid: "no data yet" is a meaningful state worth recording.
func (p *PassportSnapshot) Validate() error {
	if p.id == "" {
		return fmt.Errorf("snapshot id is required")
	}
	if p.source == "" {
		return fmt.Errorf("snapshot source is required")
	}
	if p.totalArtists < 0 {
		return fmt.Errorf("total artists cannot be negative")
	}
	return nil
}
