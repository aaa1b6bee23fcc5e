package main

import (
	"context"
	"fmt"

	"github.com/tuniverse/tvx/internal/formatter"
	"github.com/tuniverse/tvx/internal/services"
	"github.com/tuniverse/tvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList lists recorded passport snapshots, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	if r.snapshots == nil {
		return fmt.Errorf("%w: snapshot store not initialized, run 'tvx setup database'", shared.ErrServiceUnavailable)
	}

	criteria := map[string]any{}
	if src := cmd.String("source"); src != "" {
		criteria["source"] = services.ParseSource(src).String()
	}

	snapshots, err := r.snapshots.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if cmd.Bool("json") {
		rows := make([]map[string]any, 0, len(snapshots))
		for _, s := range snapshots {
			rows = append(rows, map[string]any{
				"id":            s.ID(),
				"sequence":      s.Sequence(),
				"source":        s.Source(),
				"total_artists": s.TotalArtists(),
				"countries":     len(s.CountryCounts()),
				"created_at":    s.CreatedAt(),
			})
		}
		return r.writeJSON(rows, true)
	}

	if len(snapshots) == 0 {
		return r.writePlain("No snapshots recorded yet. Run 'tvx passport snapshot' first.\n")
	}

	r.writePlain("Found %d snapshots:\n\n", len(snapshots))
	for _, s := range snapshots {
		r.writePlain("#%d %s\n", s.Sequence(), s.ID())
		r.writePlain("   Source: %s\n", s.Source())
		r.writePlain("   Artists: %d across %d countries\n", s.TotalArtists(), len(s.CountryCounts()))
		r.writePlain("   Recorded: %s\n\n", s.CreatedAt().Format("2006-01-02 15:04"))
	}

	return nil
}

// HistoryShow renders a recorded snapshot with the same layout as a live fetch.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	if r.snapshots == nil {
		return fmt.Errorf("%w: snapshot store not initialized, run 'tvx setup database'", shared.ErrServiceUnavailable)
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: snapshot id is required", shared.ErrMissingArgument)
	}

	snapshot, err := r.snapshots.Get(id)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	passport := &services.Passport{
		TotalArtists:      snapshot.TotalArtists(),
		CountryCounts:     snapshot.CountryCounts(),
		RegionPercentages: snapshot.RegionPercentages(),
	}
	if userID := snapshot.UserID(); userID != "" {
		passport.UserID = &userID
	}
	if link := snapshot.ShareLink(); link != "" {
		passport.ShareLink = &link
	}

	r.writePlain("Snapshot #%d (%s), recorded %s\n\n", snapshot.Sequence(), snapshot.Source(), snapshot.CreatedAt().Format("2006-01-02 15:04"))
	if passport.TotalArtists == 0 {
		return r.writePlain("%s\n", formatter.NoDataMessage)
	}
	return r.writePlain("%s", formatter.RenderPassport(passport))
}

// HistoryDelete deletes a recorded snapshot.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	if r.snapshots == nil {
		return fmt.Errorf("%w: snapshot store not initialized, run 'tvx setup database'", shared.ErrServiceUnavailable)
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: snapshot id is required", shared.ErrMissingArgument)
	}

	if err := r.snapshots.Delete(id); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	return r.writePlain("✓ Snapshot %s deleted\n", id)
}
