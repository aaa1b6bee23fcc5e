package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tuniverse/tvx/internal/formatter"
	"github.com/tuniverse/tvx/internal/services"
	"github.com/tuniverse/tvx/internal/shared"
	"golang.org/x/time/rate"
)

// BulkDemoOpts contains configuration for bulk demo passport exports.
type BulkDemoOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: passport_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // Requests per second (default: 5)
}

// DemoExportJob is one fetched passport queued for file export.
type DemoExportJob struct {
	UserID   string
	Passport *services.Passport
}

// DemoExportResult is the outcome for one user id.
type DemoExportResult struct {
	UserID  string
	Success bool
	Files   []string
	Error   error
}

// BulkDemoResult summarizes a bulk export run.
type BulkDemoResult struct {
	TotalUsers        int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []DemoExportResult
}

// BulkDemoExport exports demo passports for many user IDs concurrently with
// rate limiting and progress tracking.
//
// Implements a worker pool: a rate-limited producer fetches passports and
// workers write files. Partial failures are recorded, not fatal, and a
// manifest file summarizes the run.
func (e *PassportEngine) BulkDemoExport(ctx context.Context, prog chan<- ProgressUpdate, userIDs []string, opts BulkDemoOpts) (*BulkDemoResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: backend client not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("passport_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkDemoResult{
		TotalUsers:      len(userIDs),
		OutputDirectory: opts.OutputDir,
		Results:         make([]DemoExportResult, 0, len(userIDs)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan DemoExportJob, len(userIDs))
	results := make(chan DemoExportResult, len(userIDs))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.demoExportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		for i, userID := range userIDs {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				close(jobs)
				return
			}

			passport, err := e.client.DemoPassport(ctx, userID)
			if err != nil {
				results <- DemoExportResult{
					UserID:  userID,
					Success: false,
					Error:   fmt.Errorf("failed to fetch demo passport: %w", err),
				}
				continue
			}

			jobs <- DemoExportJob{UserID: userID, Passport: passport}

			e.sendProgress(prog, exportingDemoUpdate(i+1, len(userIDs), userID))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(userIDs), res.UserID, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(userIDs), res.UserID, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	manifest, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, manifest, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	return result, nil
}

// demoExportWorker is a worker goroutine that writes passports from the jobs channel.
func (e *PassportEngine) demoExportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan DemoExportJob, results chan<- DemoExportResult, opts BulkDemoOpts) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- exportSingleDemo(job, opts)
	}
}

// exportSingleDemo writes a single passport in the requested format.
func exportSingleDemo(j DemoExportJob, opts BulkDemoOpts) DemoExportResult {
	result := DemoExportResult{
		UserID: j.UserID,
		Files:  []string{},
	}

	var (
		data []byte
		path string
		err  error
	)

	switch opts.Format {
	case "csv":
		path = filepath.Join(opts.OutputDir, fmt.Sprintf("%s_countries.csv", j.UserID))
		data, err = formatter.ExportToCSV(j.Passport)
	case "markdown":
		path = filepath.Join(opts.OutputDir, fmt.Sprintf("%s.md", j.UserID))
		data, err = formatter.ExportToMarkdown(j.Passport, fmt.Sprintf("Music Passport: %s", j.UserID))
	case "txt":
		path = filepath.Join(opts.OutputDir, fmt.Sprintf("%s.txt", j.UserID))
		data, err = formatter.ExportToText(j.Passport)
	case "json":
		fallthrough
	default:
		path = filepath.Join(opts.OutputDir, fmt.Sprintf("%s.json", j.UserID))
		data, err = shared.MarshalJSON(j.Passport, true)
	}

	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		result.Error = fmt.Errorf("%s write failed: %w", opts.Format, err)
		return result
	}

	result.Files = []string{path}
	result.Success = true
	return result
}
