package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/ufukcicekdev/syncx/internal/formatter"
	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/shared"
	"github.com/ufukcicekdev/syncx/internal/tasks"
)

// AnalyticsSummary prints statistics for every connected account.
func (r *Runner) AnalyticsSummary(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	list, err := r.analytics.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch analytics: %w", err)
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(list, cmd.Bool("pretty"))
	case cmd.Bool("csv"):
		data, err := formatter.SummaryToCSV(list)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	if len(list) == 0 {
		return r.writePlain("No analytics yet. Connect an account first.\n")
	}

	r.writePlainHeader("Analytics")
	for _, a := range list {
		r.printAnalytics(a)
	}
	return nil
}

func (r *Runner) printAnalytics(a models.Analytics) {
	r.writePlain("\n[%d] %s\n", a.AccountID, formatter.Title(a))
	for _, m := range a.Metrics() {
		r.writePlain("  %-12s %s (%s)\n", m.Label, humanize.Comma(m.Value), formatter.CompactCount(m.Value))
	}
	r.writePlain("  %-12s %s\n", "Updated", formatter.Relative(a.LastUpdated))
}

// AnalyticsShow prints statistics for one account.
func (r *Runner) AnalyticsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "account-id")
	if err != nil {
		return err
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	a, err := r.analytics.Account(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch analytics for account %d: %w", id, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(a, cmd.Bool("pretty"))
	}
	r.printAnalytics(*a)
	return nil
}

// AnalyticsDetailed prints detailed statistics in one of the export formats.
func (r *Runner) AnalyticsDetailed(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "account-id")
	if err != nil {
		return err
	}
	format := strings.ToLower(cmd.String("format"))
	if !slices.Contains(formatter.Formats, format) {
		return fmt.Errorf("%w: --format must be one of %s", shared.ErrInvalidFlag, strings.Join(formatter.Formats, ", "))
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	d, err := r.analytics.Detailed(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch detailed analytics for account %d: %w", id, err)
	}

	var data []byte
	switch format {
	case formatter.FormatJSON:
		data, err = shared.MarshalJSON(d, true)
	case formatter.FormatCSV:
		data, err = formatter.ExportToCSV(d)
	case formatter.FormatMarkdown:
		data, err = formatter.ExportToMarkdown(d)
	default:
		data, err = formatter.ExportToText(d)
	}
	if err != nil {
		return err
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if format == formatter.FormatText && d.GrowthMetrics != nil {
		g := d.GrowthMetrics
		r.writePlain("\nSubscriber growth: %s\nView growth: %s\nEngagement rate: %.1f%%\n",
			formatter.Percent(g.SubscriberGrowth), formatter.Percent(g.ViewGrowth), g.EngagementRate)
	}
	return nil
}

// AnalyticsRefresh asks the backend to re-fetch statistics from the platform.
func (r *Runner) AnalyticsRefresh(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "account-id")
	if err != nil {
		return err
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	if err := r.analytics.Refresh(ctx, id); err != nil {
		return fmt.Errorf("failed to refresh analytics for account %d: %w", id, err)
	}
	return r.writePlain("✓ Analytics refresh requested for account %d\n", id)
}

// AnalyticsExport writes detailed statistics for every account to files.
func (r *Runner) AnalyticsExport(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.BulkExportOpts{
		Format:     strings.ToLower(cmd.String("format")),
		OutputDir:  cmd.String("output"),
		NumWorkers: r.config.Export.Workers,
		RateLimit:  r.config.Export.RateLimit,
		AccountIDs: cmd.Int64Slice("account"),
	}
	if cmd.IsSet("workers") {
		opts.NumWorkers = cmd.Int("workers")
	}
	if cmd.IsSet("rate-limit") {
		opts.RateLimit = cmd.Float("rate-limit")
	}

	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	r.logger.Info("exporting analytics", "format", opts.Format, "workers", opts.NumWorkers, "rate", opts.RateLimit)

	progress := make(chan tasks.ProgressUpdate, 32)
	done := r.printProgress(progress)
	result, err := r.engine.BulkExport(ctx, progress, opts)
	close(progress)
	<-done
	if err != nil && result == nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlainln("Export summary")
	r.writePlain("Accounts:   %d\n", result.TotalAccounts)
	r.writePlain("Successful: %d\n", result.SuccessfulExports)
	r.writePlain("Failed:     %d\n", result.FailedExports)
	r.writePlain("Directory:  %s\n", result.OutputDirectory)
	if result.ManifestPath != "" {
		r.writePlain("Manifest:   %s\n", result.ManifestPath)
	}
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ %s: %v\n", res.Name, res.Error)
		}
	}

	if err != nil {
		return fmt.Errorf("export interrupted: %w", err)
	}
	return nil
}
