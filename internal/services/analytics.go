package services

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/ufukcicekdev/syncx/internal/models"
)

// AnalyticsService reads per-account statistics.
type AnalyticsService struct {
	client *Client
}

// NewAnalyticsService creates an [AnalyticsService] on top of client.
func NewAnalyticsService(client *Client) *AnalyticsService {
	return &AnalyticsService{client: client}
}

// List returns the statistics summary for every connected account.
func (s *AnalyticsService) List(ctx context.Context) ([]models.Analytics, error) {
	resp, err := s.client.Get(ctx, PathAnalytics)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return decodeList[models.Analytics](resp)
}

// Account returns the statistics summary for one account.
func (s *AnalyticsService) Account(ctx context.Context, accountID int64) (*models.Analytics, error) {
	var out models.Analytics
	if err := s.client.DoJSON(ctx, http.MethodGet, analyticsPath(accountID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Detailed returns statistics with recent videos and growth metrics.
func (s *AnalyticsService) Detailed(ctx context.Context, accountID int64) (*models.DetailedAnalytics, error) {
	var out models.DetailedAnalytics
	if err := s.client.DoJSON(ctx, http.MethodGet, detailedAnalyticsPath(accountID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh asks the backend to re-pull statistics from the provider.
func (s *AnalyticsService) Refresh(ctx context.Context, accountID int64) error {
	return s.client.DoJSON(ctx, http.MethodPost, refreshAnalyticsPath(accountID), nil, nil)
}

// VideoService edits YouTube video metadata.
type VideoService struct {
	client *Client
	logger *log.Logger
}

// NewVideoService creates a [VideoService] on top of client.
func NewVideoService(client *Client) *VideoService {
	return &VideoService{client: client, logger: client.logger.With("component", "videos")}
}

// DefaultVideoLimit matches the dashboard's page size.
const DefaultVideoLimit = 20

// List returns up to limit recent videos for a YouTube account.
func (s *VideoService) List(ctx context.Context, accountID int64, limit int) ([]models.Video, error) {
	if limit <= 0 {
		limit = DefaultVideoLimit
	}
	resp, err := s.client.Get(ctx, videosPath(accountID, limit))
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return decodeList[models.Video](resp)
}

// Get returns one video's full metadata.
func (s *VideoService) Get(ctx context.Context, accountID int64, videoID string) (*models.Video, error) {
	var out models.Video
	if err := s.client.DoJSON(ctx, http.MethodGet, videoPath(accountID, videoID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces a video's editable metadata.
func (s *VideoService) Update(ctx context.Context, accountID int64, videoID string, update models.VideoUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}
	return s.client.DoJSON(ctx, http.MethodPut, updateVideoPath(accountID, videoID), update, nil)
}

// Categories lists the YouTube categories available to the account.
func (s *VideoService) Categories(ctx context.Context, accountID int64) ([]models.VideoCategory, error) {
	var out []models.VideoCategory
	if err := s.client.DoJSON(ctx, http.MethodGet, categoriesPath(accountID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Languages lists the languages YouTube supports for metadata.
func (s *VideoService) Languages(ctx context.Context, accountID int64) ([]models.Language, error) {
	var out []models.Language
	if err := s.client.DoJSON(ctx, http.MethodGet, languagesPath(accountID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CategoriesOrDefault falls back to [models.DefaultCategories] when the backend cannot list categories.
// fallback reports whether the defaults were used.
func (s *VideoService) CategoriesOrDefault(ctx context.Context, accountID int64) (cats []models.VideoCategory, fallback bool) {
	cats, err := s.Categories(ctx, accountID)
	if err != nil || len(cats) == 0 {
		s.logger.Warn("using default categories", "account", accountID, "err", err)
		return models.DefaultCategories(), true
	}
	return cats, false
}

// LanguagesOrDefault falls back to [models.DefaultLanguages] when the backend cannot list languages.
func (s *VideoService) LanguagesOrDefault(ctx context.Context, accountID int64) (langs []models.Language, fallback bool) {
	langs, err := s.Languages(ctx, accountID)
	if err != nil || len(langs) == 0 {
		s.logger.Warn("using default languages", "account", accountID, "err", err)
		return models.DefaultLanguages(), true
	}
	return langs, false
}
