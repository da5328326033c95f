package models

import (
	"time"
)

// AccountStatus is the backend's connection status for a linked account.
type AccountStatus string

const (
	StatusConnected AccountStatus = "connected"
	StatusExpired   AccountStatus = "expired"
	StatusRevoked   AccountStatus = "revoked"
)

// SocialPlatform is a platform row as served by /api/social/platforms/.
type SocialPlatform struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	IconClass   string `json:"icon_class,omitempty"`
	ColorClass  string `json:"color_class,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// Kind maps the row onto the closed [Platform] enumeration.
func (s SocialPlatform) Kind() (Platform, error) { return ParsePlatform(s.Name) }

// ConnectedAccount is a linked third-party account. It is read-only on the client.
type ConnectedAccount struct {
	ID                  int64          `json:"id"`
	Platform            SocialPlatform `json:"platform"`
	PlatformUsername    string         `json:"platform_username"`
	PlatformDisplayName string         `json:"platform_display_name"`
	ProfilePictureURL   string         `json:"profile_picture_url,omitempty"`
	Status              AccountStatus  `json:"status"`
	IsExpired           bool           `json:"is_expired"`
	ConnectedAt         string         `json:"connected_at"`
}

// Active reports whether the account is connected and its provider token is still valid.
func (a ConnectedAccount) Active() bool {
	return a.Status == StatusConnected && !a.IsExpired
}

// Handle returns the best available account label.
func (a ConnectedAccount) Handle() string {
	switch {
	case a.PlatformUsername != "":
		return "@" + a.PlatformUsername
	case a.PlatformDisplayName != "":
		return a.PlatformDisplayName
	default:
		return "(unnamed)"
	}
}

// ConnectedTime parses ConnectedAt.
func (a ConnectedAccount) ConnectedTime() (time.Time, bool) { return ParseTimestamp(a.ConnectedAt) }

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the backend emits.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
