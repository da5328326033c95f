package services

import (
	"fmt"
	"net/url"

	"github.com/ufukcicekdev/syncx/internal/models"
)

// Backend REST paths.
const (
	PathLogin          = "/api/auth/login/"
	PathRegister       = "/api/auth/register/"
	PathTokenVerify    = "/api/auth/token/verify/"
	PathTokenRefresh   = "/api/auth/token/refresh/"
	PathLogout         = "/api/auth/logout/"
	PathProfile        = "/api/auth/profile/"
	PathUser           = "/api/auth/user/"
	PathChangePassword = "/api/auth/change-password/"
	PathDeleteAccount  = "/api/auth/delete-account/"

	PathPlatforms = "/api/social/platforms/"
	PathAccounts  = "/api/social/accounts/"
	PathAnalytics = "/api/social/analytics/"

	PathTokens = "/api/tokens/"
)

// isAuthEndpoint reports paths whose 401 means bad credentials rather than an expired access token.
func isAuthEndpoint(path string) bool {
	switch path {
	case PathLogin, PathRegister, PathTokenVerify, PathTokenRefresh:
		return true
	}
	return false
}

func connectPath(p models.Platform) string  { return fmt.Sprintf("/api/social/connect/%s/", p) }
func callbackPath(p models.Platform) string { return fmt.Sprintf("/api/social/callback/%s/", p) }
func disconnectPath(id int64) string        { return fmt.Sprintf("/api/social/disconnect/%d/", id) }
func tokenPath(id int64) string             { return fmt.Sprintf("/api/tokens/%d/", id) }
func analyticsPath(id int64) string         { return fmt.Sprintf("/api/social/analytics/%d/", id) }
func detailedAnalyticsPath(id int64) string {
	return fmt.Sprintf("/api/social/analytics/%d/detailed/", id)
}
func refreshAnalyticsPath(id int64) string {
	return fmt.Sprintf("/api/social/analytics/%d/refresh/", id)
}
func videosPath(id int64, limit int) string {
	return fmt.Sprintf("/api/social/videos/%d/?max_results=%d", id, limit)
}
func categoriesPath(id int64) string { return fmt.Sprintf("/api/social/youtube/%d/categories/", id) }
func languagesPath(id int64) string  { return fmt.Sprintf("/api/social/youtube/%d/languages/", id) }

func videoPath(id int64, videoID string) string {
	return fmt.Sprintf("/api/social/videos/%d/%s/", id, url.PathEscape(videoID))
}

func updateVideoPath(id int64, videoID string) string {
	return fmt.Sprintf("/api/social/videos/%d/%s/update/", id, url.PathEscape(videoID))
}
