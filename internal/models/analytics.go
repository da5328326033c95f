package models

import (
	"strings"

	"github.com/ufukcicekdev/syncx/internal/shared"
)

// Analytics is the per-account statistics summary. Counters a platform does not report are nil.
type Analytics struct {
	ID                  int64  `json:"id"`
	AccountID           int64  `json:"account_id"`
	PlatformName        string `json:"platform_name"`
	PlatformDisplayName string `json:"platform_display_name"`
	PlatformUsername    string `json:"platform_username"`
	SubscriberCount     *int64 `json:"subscriber_count,omitempty"`
	VideoCount          *int64 `json:"video_count,omitempty"`
	ViewCount           *int64 `json:"view_count,omitempty"`
	FollowerCount       *int64 `json:"follower_count,omitempty"`
	FollowingCount      *int64 `json:"following_count,omitempty"`
	MediaCount          *int64 `json:"media_count,omitempty"`
	ConnectionCount     *int64 `json:"connection_count,omitempty"`
	LastUpdated         string `json:"last_updated"`
}

// Metric is a labelled counter.
type Metric struct {
	Label string
	Value int64
}

// Metrics returns the counters the platform reported, in a stable order.
func (a Analytics) Metrics() []Metric {
	fields := []struct {
		label string
		v     *int64
	}{
		{"Subscribers", a.SubscriberCount},
		{"Followers", a.FollowerCount},
		{"Following", a.FollowingCount},
		{"Connections", a.ConnectionCount},
		{"Videos", a.VideoCount},
		{"Media", a.MediaCount},
		{"Views", a.ViewCount},
	}

	var out []Metric
	for _, f := range fields {
		if f.v != nil {
			out = append(out, Metric{Label: f.label, Value: *f.v})
		}
	}
	return out
}

// GrowthMetrics are reported by the detailed analytics endpoint.
type GrowthMetrics struct {
	SubscriberGrowth float64 `json:"subscriber_growth"`
	ViewGrowth       float64 `json:"view_growth"`
	EngagementRate   float64 `json:"engagement_rate"`
}

// DetailedAnalytics extends [Analytics] with recent videos and growth figures.
type DetailedAnalytics struct {
	Analytics
	RecentVideos  []Video        `json:"recent_videos,omitempty"`
	GrowthMetrics *GrowthMetrics `json:"growth_metrics,omitempty"`
}

// Privacy statuses accepted by the video editor.
const (
	PrivacyPublic   = "public"
	PrivacyUnlisted = "unlisted"
	PrivacyPrivate  = "private"
)

// Video is a YouTube video's editable metadata plus read-only statistics.
type Video struct {
	VideoID              string   `json:"video_id"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	CategoryID           string   `json:"category_id"`
	Tags                 []string `json:"tags"`
	PrivacyStatus        string   `json:"privacy_status"`
	DefaultLanguage      string   `json:"default_language"`
	DefaultAudioLanguage string   `json:"default_audio_language"`
	Thumbnail            string   `json:"thumbnail"`
	PublishedAt          string   `json:"published_at"`
	URL                  string   `json:"url"`
	ViewCount            *int64   `json:"view_count,omitempty"`
	LikeCount            *int64   `json:"like_count,omitempty"`
	CommentCount         *int64   `json:"comment_count,omitempty"`
	MadeForKids          bool     `json:"made_for_kids"`
}

// Update returns the editable fields of v with the editor's defaults applied.
func (v Video) Update() VideoUpdate {
	privacy := v.PrivacyStatus
	if privacy == "" {
		privacy = PrivacyPrivate
	}
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	return VideoUpdate{
		Title:                v.Title,
		Description:          v.Description,
		CategoryID:           v.CategoryID,
		Tags:                 tags,
		PrivacyStatus:        privacy,
		DefaultLanguage:      v.DefaultLanguage,
		DefaultAudioLanguage: v.DefaultAudioLanguage,
		MadeForKids:          v.MadeForKids,
	}
}

// VideoUpdate is the PUT payload for a video.
type VideoUpdate struct {
	Title                string   `json:"title" validate:"required,max=100"`
	Description          string   `json:"description" validate:"max=5000"`
	CategoryID           string   `json:"category_id"`
	Tags                 []string `json:"tags"`
	PrivacyStatus        string   `json:"privacy_status" validate:"required,oneof=public unlisted private"`
	DefaultLanguage      string   `json:"default_language"`
	DefaultAudioLanguage string   `json:"default_audio_language"`
	MadeForKids          bool     `json:"made_for_kids"`
}

func (u VideoUpdate) Validate() error { return shared.ValidateStruct(u) }

// ParseTags splits a comma separated tag list, dropping blanks.
func ParseTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// VideoCategory is a YouTube category.
type VideoCategory struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Language is a YouTube-supported language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DefaultCategories is used when the backend cannot list categories.
func DefaultCategories() []VideoCategory {
	return []VideoCategory{
		{ID: "10", Title: "Music"},
		{ID: "20", Title: "Gaming"},
		{ID: "22", Title: "People & Blogs"},
		{ID: "23", Title: "Comedy"},
		{ID: "24", Title: "Entertainment"},
		{ID: "26", Title: "Howto & Style"},
		{ID: "27", Title: "Education"},
		{ID: "28", Title: "Science & Technology"},
	}
}

// DefaultLanguages is used when the backend cannot list languages.
func DefaultLanguages() []Language {
	return []Language{
		{Code: "en", Name: "English"},
		{Code: "es", Name: "Spanish"},
		{Code: "fr", Name: "French"},
		{Code: "de", Name: "German"},
		{Code: "tr", Name: "Turkish"},
		{Code: "ar", Name: "Arabic"},
	}
}
