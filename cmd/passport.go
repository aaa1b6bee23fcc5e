package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tuniverse/tvx/internal/formatter"
	"github.com/tuniverse/tvx/internal/services"
	"github.com/tuniverse/tvx/internal/shared"
	"github.com/tuniverse/tvx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Profile shows the signed-in Spotify account.
func (r *Runner) Profile(ctx context.Context, cmd *cli.Command) error {
	token, err := r.requireToken()
	if err != nil {
		return err
	}

	r.logger.Info("fetching profile")

	profile, err := r.client.Profile(ctx, token)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}

	return r.writePlain("%s", formatter.RenderProfile(profile))
}

// Playlists lists the user's playlists. The limit flag is parsed leniently:
// zero, negative and non-numeric values fall back to the default.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	token, err := r.requireToken()
	if err != nil {
		return err
	}

	limit := services.ParseLimit(cmd.String("limit"), services.DefaultPlaylistLimit)

	r.logger.Infof("listing playlists with limit %v", limit)

	page, err := r.client.Playlists(ctx, token, limit)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	return r.writePlain("%s", formatter.RenderPlaylists(page))
}

// PassportShow fetches and renders a passport for the chosen source.
func (r *Runner) PassportShow(ctx context.Context, cmd *cli.Command) error {
	token, err := r.requireToken()
	if err != nil {
		return err
	}

	source := services.ParseSource(cmd.String("source"))
	limit := int(cmd.Int("limit"))

	r.logger.Infof("fetching passport from %v", source)

	passport, err := r.client.Passport(ctx, token, source, limit)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(passport, true)
	}

	if passport.TotalArtists == 0 {
		return r.writePlain("%s\n", formatter.NoDataMessage)
	}

	r.writePlain("%s", formatter.RenderPassport(passport))

	if cmd.Bool("image") && passport.ShareLink != nil {
		if err := r.saveShareImage(*passport.ShareLink); err != nil {
			r.logger.Warnf("failed to download share image %v", err)
		}
	}

	return nil
}

// PassportDemo renders the canned demo passport for a user id. No auth needed.
func (r *Runner) PassportDemo(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.StringArg("user-id")
	if userID == "" {
		return fmt.Errorf("%w: user id is required", shared.ErrMissingArgument)
	}

	r.logger.Infof("fetching demo passport for %v", userID)

	passport, err := r.client.DemoPassport(ctx, userID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(passport, true)
	}

	if passport.TotalArtists == 0 {
		return r.writePlain("%s\n", formatter.NoDataMessage)
	}

	return r.writePlain("%s", formatter.RenderPassport(passport))
}

// PassportCompare diffs the country sets of both aggregation sources.
func (r *Runner) PassportCompare(ctx context.Context, cmd *cli.Command) error {
	token, err := r.requireToken()
	if err != nil {
		return err
	}

	limit := int(cmd.Int("limit"))

	r.logger.Info("comparing passport sources")

	result, err := r.engine.Compare(ctx, nil, token, limit)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlainHeader("Passport Comparison")
	r.writePlain("Top artists:   %d artists, %d countries\n", result.TopArtists.TotalArtists, len(result.TopArtists.CountryCounts))
	r.writePlain("Recent plays:  %d artists, %d countries\n", result.RecentPlays.TotalArtists, len(result.RecentPlays.CountryCounts))
	r.writePlain("\nShared countries: %s\n", joinOrNone(result.SharedCodes))
	r.writePlain("Only in top artists: %s\n", joinOrNone(result.OnlyTop))
	r.writePlain("Only in recent plays: %s\n", joinOrNone(result.OnlyRecent))

	return nil
}

// PassportSnapshot fetches a passport and records it in the local history.
func (r *Runner) PassportSnapshot(ctx context.Context, cmd *cli.Command) error {
	token, err := r.requireToken()
	if err != nil {
		return err
	}

	source := services.ParseSource(cmd.String("source"))
	limit := int(cmd.Int("limit"))

	r.logger.Infof("recording passport snapshot from %v", source)

	result, err := r.engine.Snapshot(ctx, nil, token, source, limit)
	if err != nil {
		return err
	}

	r.writePlain("✓ Snapshot recorded: %s\n", result.SnapshotID)
	r.writePlain("  Source: %s\n", result.Source)
	r.writePlain("  Artists: %d\n", result.Passport.TotalArtists)
	r.writePlain("  Countries: %d\n", len(result.Passport.CountryCounts))

	return nil
}

// PassportExport bulk-exports demo passports for a list of user ids.
func (r *Runner) PassportExport(ctx context.Context, cmd *cli.Command) error {
	userIDs := cmd.StringArgs("user-ids")
	if len(userIDs) == 0 {
		return fmt.Errorf("%w: at least one user id is required", shared.ErrMissingArgument)
	}

	opts := tasks.BulkDemoOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	r.logger.Infof("bulk exporting %d demo passports as %v", len(userIDs), opts.Format)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	}()

	result, err := r.engine.BulkDemoExport(ctx, progress, userIDs, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("✓ Export complete: %d succeeded, %d failed", result.SuccessfulExports, result.FailedExports)
	r.writePlain("  Output: %s\n", result.OutputDirectory)
	if result.ManifestPath != "" {
		r.writePlain("  Manifest: %s\n", result.ManifestPath)
	}

	return nil
}

// saveShareImage downloads the share image next to the report output.
func (r *Runner) saveShareImage(link string) error {
	data, err := formatter.DownloadImage(link)
	if err != nil {
		return err
	}

	path := "passport_share.png"
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	return r.writePlain("✓ Share image saved to %s\n", path)
}

func joinOrNone(codes []string) string {
	if len(codes) == 0 {
		return "(none)"
	}
	return strings.Join(codes, ", ")
}
