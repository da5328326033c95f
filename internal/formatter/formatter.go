// package formatter renders account analytics for the terminal and exports them to files (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

// Export formats accepted by the writers.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists every export format.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// CompactCount abbreviates large counters: 950, 1.2K, 3.4M, 1B.
func CompactCount(n int64) string {
	sign := ""
	v := float64(n)
	if n < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1e9:
		return sign + humanize.FtoaWithDigits(v/1e9, 1) + "B"
	case v >= 1e6:
		return sign + humanize.FtoaWithDigits(v/1e6, 1) + "M"
	case v >= 1e3:
		return sign + humanize.FtoaWithDigits(v/1e3, 1) + "K"
	default:
		return humanize.Comma(n)
	}
}

// Count renders an optional counter, "-" when the platform did not report it.
func Count(v *int64) string {
	if v == nil {
		return "-"
	}
	return humanize.Comma(*v)
}

// Relative renders a backend timestamp as "3 hours ago", or "never" when it is empty or unparseable.
func Relative(ts string) string {
	t, ok := models.ParseTimestamp(ts)
	if !ok {
		return "never"
	}
	return humanize.Time(t)
}

// Percent renders a growth or engagement figure with a sign.
func Percent(v float64) string {
	return fmt.Sprintf("%+.1f%%", v)
}

// Title is the heading used for an account in every format: "YouTube @handle".
func Title(a models.Analytics) string {
	name := a.PlatformDisplayName
	if name == "" {
		name = a.PlatformName
		if p, err := models.ParsePlatform(a.PlatformName); err == nil {
			name = p.DisplayName()
		}
	}
	if a.PlatformUsername != "" {
		return fmt.Sprintf("%s @%s", name, a.PlatformUsername)
	}
	return name
}

// BaseName is the file stem used for an account's export files.
func BaseName(a models.Analytics) string {
	name := strings.ToLower(a.PlatformName)
	if name == "" {
		name = "account"
	}
	return fmt.Sprintf("%s_%d", name, a.AccountID)
}

// ExportToCSV converts the recent videos to CSV with columns: Video ID, Title, Published, Privacy, Views, Likes, Comments, URL
func ExportToCSV(a *models.DetailedAnalytics) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Video ID", "Title", "Published", "Privacy", "Views", "Likes", "Comments", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, v := range a.RecentVideos {
		record := []string{
			v.VideoID,
			v.Title,
			v.PublishedAt,
			v.PrivacyStatus,
			rawCount(v.ViewCount),
			rawCount(v.LikeCount),
			rawCount(v.CommentCount),
			v.URL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// SummaryToCSV converts a list of account summaries to CSV, one row per account.
func SummaryToCSV(list []models.Analytics) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Account ID", "Platform", "Username", "Subscribers", "Followers", "Following", "Connections", "Videos", "Media", "Views", "Last Updated"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range list {
		record := []string{
			strconv.FormatInt(a.AccountID, 10),
			a.PlatformName,
			a.PlatformUsername,
			rawCount(a.SubscriberCount),
			rawCount(a.FollowerCount),
			rawCount(a.FollowingCount),
			rawCount(a.ConnectionCount),
			rawCount(a.VideoCount),
			rawCount(a.MediaCount),
			rawCount(a.ViewCount),
			a.LastUpdated,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown converts detailed analytics to a Markdown report
func ExportToMarkdown(a *models.DetailedAnalytics) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", Title(a.Analytics)))
	buf.WriteString(fmt.Sprintf("**Last updated**: %s\n\n", Relative(a.LastUpdated)))

	if metrics := a.Metrics(); len(metrics) > 0 {
		buf.WriteString("## Metrics\n\n")
		buf.WriteString("| Metric | Value |\n|---|---|\n")
		for _, m := range metrics {
			buf.WriteString(fmt.Sprintf("| %s | %s |\n", m.Label, humanize.Comma(m.Value)))
		}
		buf.WriteString("\n")
	}

	if g := a.GrowthMetrics; g != nil {
		buf.WriteString("## Growth\n\n")
		buf.WriteString(fmt.Sprintf("- Subscriber growth: %s\n", Percent(g.SubscriberGrowth)))
		buf.WriteString(fmt.Sprintf("- View growth: %s\n", Percent(g.ViewGrowth)))
		buf.WriteString(fmt.Sprintf("- Engagement rate: %.1f%%\n\n", g.EngagementRate))
	}

	if len(a.RecentVideos) > 0 {
		buf.WriteString("## Recent Videos\n\n")
		for i, v := range a.RecentVideos {
			title := v.Title
			if v.URL != "" {
				title = fmt.Sprintf("[%s](%s)", v.Title, v.URL)
			}
			buf.WriteString(fmt.Sprintf("%d. %s (%s views)\n", i+1, title, Count(v.ViewCount)))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts detailed analytics to plain text
func ExportToText(a *models.DetailedAnalytics) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Account: %s\n", Title(a.Analytics)))
	buf.WriteString(fmt.Sprintf("Last updated: %s\n", Relative(a.LastUpdated)))
	for _, m := range a.Metrics() {
		buf.WriteString(fmt.Sprintf("%s: %s\n", m.Label, humanize.Comma(m.Value)))
	}

	if len(a.RecentVideos) > 0 {
		buf.WriteString(fmt.Sprintf("\nRecent videos: %d\n\n", len(a.RecentVideos)))
		for i, v := range a.RecentVideos {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, v.Title))
		}
	}

	return buf.Bytes(), nil
}

// ToSummaryJSON generates a JSON representation of the account summary (without videos)
func ToSummaryJSON(a models.Analytics) ([]byte, error) {
	return shared.MarshalJSON(a, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	VideosFile  string
	SummaryFile string
}

// WriteCSVExport exports recent videos to CSV with an accompanying summary JSON file.
//
// Creates {base}_videos.csv and {base}_summary.json.
func WriteCSVExport(a *models.DetailedAnalytics, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = BaseName(a.Analytics)
	}

	csvData, err := ExportToCSV(a)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	videosFile := baseFilepath + "_videos.csv"
	if err := os.WriteFile(videosFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	summaryJSON, err := ToSummaryJSON(a.Analytics)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary JSON: %w", err)
	}

	summaryFile := baseFilepath + "_summary.json"
	if err := os.WriteFile(summaryFile, summaryJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write summary file: %w", err)
	}

	return &CSVExportResult{VideosFile: videosFile, SummaryFile: summaryFile}, nil
}

// WriteMarkdownExport writes the report to {dir}/README.md. The directory defaults to [BaseName].
func WriteMarkdownExport(a *models.DetailedAnalytics, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = BaseName(a.Analytics)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(a)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return mdFile, nil
}

// WriteTextExport writes the plain text report. Defaults to {base}.txt.
func WriteTextExport(a *models.DetailedAnalytics, path string) (string, error) {
	if path == "" {
		path = BaseName(a.Analytics) + ".txt"
	}

	textData, err := ExportToText(a)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteJSONExport writes the full detailed analytics as indented JSON. Defaults to {base}.json.
func WriteJSONExport(a *models.DetailedAnalytics, path string) (string, error) {
	if path == "" {
		path = BaseName(a.Analytics) + ".json"
	}

	data, err := shared.MarshalJSON(a, true)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}
	return path, nil
}

// AccountExportResult is the outcome of exporting one account.
type AccountExportResult struct {
	AccountID int64
	Name      string
	Success   bool
	Files     []string
	Error     error
}

// BulkExportResult summarizes an export of several accounts.
type BulkExportResult struct {
	TotalAccounts     int
	SuccessfulExports int
	FailedExports     int
	Results           []AccountExportResult
	OutputDirectory   string
	ManifestPath      string
}

type manifestEntry struct {
	AccountID int64    `json:"account_id"`
	Name      string   `json:"name"`
	Status    string   `json:"status"`
	Files     []string `json:"files,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type manifest struct {
	Format            string          `json:"format"`
	ExportedAt        time.Time       `json:"exported_at"`
	TotalAccounts     int             `json:"total_accounts"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Accounts          []manifestEntry `json:"accounts"`
}

// WriteBulkExportManifest writes a JSON manifest listing every account's status and files.
func WriteBulkExportManifest(result *BulkExportResult, format, path string) error {
	m := manifest{
		Format:            format,
		ExportedAt:        time.Now().UTC(),
		TotalAccounts:     result.TotalAccounts,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		Accounts:          make([]manifestEntry, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		entry := manifestEntry{AccountID: r.AccountID, Name: r.Name, Status: "success", Files: r.Files}
		if !r.Success {
			entry.Status = "failed"
			if r.Error != nil {
				entry.Error = r.Error.Error()
			}
		}
		m.Accounts = append(m.Accounts, entry)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func rawCount(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
