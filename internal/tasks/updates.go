package tasks

import (
	"fmt"

	"github.com/ufukcicekdev/syncx/internal/formatter"
	"github.com/ufukcicekdev/syncx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlatforms Phase = iota
	FetchAccounts
	FetchAnalytics
	ExportAnalytics
	Disconnect
)

func (p Phase) String() string {
	switch p {
	case FetchPlatforms:
		return "fetch_platforms"
	case FetchAccounts:
		return "fetch_accounts"
	case FetchAnalytics:
		return "fetch_analytics"
	case ExportAnalytics:
		return "export_analytics"
	case Disconnect:
		return "disconnect"
	default:
		return ""
	}
}

func fetchPlatformsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{Phase: FetchPlatforms, Step: step, Total: total, Message: "Fetching platforms..."}
}

func fetchAccountsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{Phase: FetchAccounts, Step: step, Total: total, Message: "Fetching connected accounts..."}
}

func disconnectUpdate(id int64) ProgressUpdate {
	return ProgressUpdate{Phase: Disconnect, Step: 1, Total: 1, Message: fmt.Sprintf("Disconnecting account %d...", id)}
}

func fetchingAnalyticsUpdate(step, total int, a models.Analytics) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAnalytics,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching: %s...", step, total, formatter.Title(a)),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportAnalytics,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportAnalytics,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
