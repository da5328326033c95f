package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ufukcicekdev/syncx/internal/formatter"
	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

// BulkExportResult summarizes an analytics export.
type BulkExportResult = formatter.BulkExportResult

// AccountExportResult is the outcome for one account.
type AccountExportResult = formatter.AccountExportResult

// BulkExportOpts contains configuration for bulk analytics exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: syncx_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 4, max 10)
	RateLimit  float64 // Detailed analytics requests per second (default: 2)
	AccountIDs []int64 // AccountIDs limits the export; empty means every account
}

// accountExportJob pairs an account with its fetched analytics.
type accountExportJob struct {
	summary  models.Analytics
	detailed *models.DetailedAnalytics
}

// BulkExport exports detailed analytics for connected accounts concurrently with rate limiting and progress tracking.
//
// Detail requests are throttled by a shared limiter and handed to a worker pool that writes the files.
// Partial failures are recorded per account. A manifest summarizing the export is always written.
func (e *Engine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.analytics == nil {
		return nil, fmt.Errorf("%w: analytics service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if !slices.Contains(formatter.Formats, opts.Format) {
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("syncx_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	summaries, err := e.analytics.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics: %w", err)
	}
	if len(opts.AccountIDs) > 0 {
		for _, id := range opts.AccountIDs {
			if !slices.ContainsFunc(summaries, func(a models.Analytics) bool { return a.AccountID == id }) {
				return nil, fmt.Errorf("%w: %d", shared.ErrAccountNotFound, id)
			}
		}
		summaries = slices.DeleteFunc(summaries, func(a models.Analytics) bool {
			return !slices.Contains(opts.AccountIDs, a.AccountID)
		})
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(summaries)
	result := &BulkExportResult{
		TotalAccounts:   total,
		OutputDirectory: opts.OutputDir,
		Results:         make([]AccountExportResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan accountExportJob, total)
	results := make(chan AccountExportResult, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go exportWorker(&wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, summary := range summaries {
			if err := limiter.Wait(ctx); err != nil {
				results <- AccountExportResult{AccountID: summary.AccountID, Name: formatter.Title(summary), Error: err}
				continue
			}

			sendProgress(prog, fetchingAnalyticsUpdate(i+1, total, summary))
			detailed, err := e.analytics.Detailed(ctx, summary.AccountID)
			if err != nil {
				results <- AccountExportResult{
					AccountID: summary.AccountID,
					Name:      formatter.Title(summary),
					Error:     fmt.Errorf("failed to fetch analytics: %w", err),
				}
				continue
			}
			jobs <- accountExportJob{summary: summary, detailed: detailed}
		}
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
			sendProgress(prog, exportCompletedUpdate(completed, total, res.Name, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, total, res.Name, res.Error))
		}
	}

	slices.SortFunc(result.Results, func(a, b AccountExportResult) int {
		switch {
		case a.AccountID < b.AccountID:
			return -1
		case a.AccountID > b.AccountID:
			return 1
		default:
			return 0
		}
	})

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.logger.Info("analytics export finished", "dir", opts.OutputDir, "ok", result.SuccessfulExports, "failed", result.FailedExports)
	return result, ctx.Err()
}

// exportWorker writes the files for each job it receives.
func exportWorker(wg *sync.WaitGroup, jobs <-chan accountExportJob, results chan<- AccountExportResult, opts BulkExportOpts) {
	defer wg.Done()
	for job := range jobs {
		results <- exportAccount(job, opts)
	}
}

// exportAccount writes one account's analytics in the requested format.
func exportAccount(j accountExportJob, opts BulkExportOpts) AccountExportResult {
	detailed := j.detailed
	if detailed.AccountID == 0 {
		detailed.Analytics = j.summary
	}

	result := AccountExportResult{
		AccountID: j.summary.AccountID,
		Name:      formatter.Title(j.summary),
		Files:     []string{},
	}
	base := filepath.Join(opts.OutputDir, formatter.BaseName(j.summary))

	switch opts.Format {
	case formatter.FormatCSV:
		res, err := formatter.WriteCSVExport(detailed, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{res.VideosFile, res.SummaryFile}
	case formatter.FormatMarkdown:
		path, err := formatter.WriteMarkdownExport(detailed, base)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	case formatter.FormatText:
		path, err := formatter.WriteTextExport(detailed, base+".txt")
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	default:
		path, err := formatter.WriteJSONExport(detailed, base+".json")
		if err != nil {
			result.Error = fmt.Errorf("JSON export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}
