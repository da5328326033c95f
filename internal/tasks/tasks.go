package tasks

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/ufukcicekdev/syncx/internal/models"
)

// SocialAPI is the subset of [services.SocialService] the engine needs.
type SocialAPI interface {
	Platforms(ctx context.Context) ([]models.SocialPlatform, error)
	Accounts(ctx context.Context) ([]models.ConnectedAccount, error)
	Connect(ctx context.Context, p models.Platform) (string, error)
	Callback(ctx context.Context, p models.Platform, code, state string) error
	Disconnect(ctx context.Context, accountID int64) error
}

// AnalyticsAPI is the subset of [services.AnalyticsService] the engine needs.
type AnalyticsAPI interface {
	List(ctx context.Context) ([]models.Analytics, error)
	Detailed(ctx context.Context, accountID int64) (*models.DetailedAnalytics, error)
}

// Engine runs dashboard and export operations against the backend.
type Engine struct {
	social    SocialAPI
	analytics AnalyticsAPI
	logger    *log.Logger
}

// NewEngine creates an [Engine]. Either API may be nil when the caller never uses its operations.
func NewEngine(social SocialAPI, analytics AnalyticsAPI, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{social: social, analytics: analytics, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
