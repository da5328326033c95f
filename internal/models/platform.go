package models

import (
	"fmt"
	"strings"

	"github.com/ufukcicekdev/syncx/internal/shared"
)

// Platform is a supported social platform.
type Platform int

const (
	YouTube Platform = iota
	Instagram
	LinkedIn
	Twitter
	TikTok

	platformCount
)

// PlatformInfo is the static metadata for a [Platform].
type PlatformInfo struct {
	Name        string   // Name is the backend identifier used in URL paths
	DisplayName string   // DisplayName is shown to users
	Color       string   // Color is the brand color used by the TUI
	SetupURL    string   // SetupURL is the provider's developer console
	SetupSteps  []string // SetupSteps are shown when the backend reports setup_required
}

var platformTable = [platformCount]PlatformInfo{
	YouTube: {
		Name:        "youtube",
		DisplayName: "YouTube",
		Color:       "#FF0000",
		SetupURL:    "https://console.cloud.google.com/",
		SetupSteps: []string{
			"Go to Google Cloud Console",
			"Create a new project or select existing project",
			"Enable YouTube Data API v3",
			"Create OAuth 2.0 credentials",
			"Add authorized redirect URIs",
			"Copy Client ID and Client Secret",
		},
	},
	Instagram: {
		Name:        "instagram",
		DisplayName: "Instagram",
		Color:       "#E1306C",
		SetupURL:    "https://developers.facebook.com/apps/",
		SetupSteps: []string{
			"Go to Facebook Developers Console",
			"Create a new app or select existing app",
			"Add Instagram Basic Display product",
			"Configure OAuth redirect URIs",
			"Copy Client ID and Client Secret",
		},
	},
	LinkedIn: {
		Name:        "linkedin",
		DisplayName: "LinkedIn",
		Color:       "#0A66C2",
		SetupURL:    "https://www.linkedin.com/developers/apps",
		SetupSteps: []string{
			"Go to LinkedIn Developer Portal",
			"Create a new app",
			"Add Sign In with LinkedIn product",
			"Configure OAuth 2.0 settings",
			"Copy Client ID and Client Secret",
		},
	},
	Twitter: {
		Name:        "twitter",
		DisplayName: "Twitter/X",
		Color:       "#1DA1F2",
		SetupURL:    "https://developer.twitter.com/apps",
		SetupSteps: []string{
			"Go to Twitter Developer Portal",
			"Create a new app",
			"Configure OAuth 2.0 settings",
			"Add callback URLs",
			"Copy Client ID and Client Secret",
		},
	},
	TikTok: {
		Name:        "tiktok",
		DisplayName: "TikTok",
		Color:       "#25F4EE",
		SetupURL:    "https://developers.tiktok.com/",
		SetupSteps: []string{
			"Go to TikTok Developers Portal",
			"Create a new app",
			"Enable Login Kit",
			"Configure redirect URLs",
			"Copy Client Key and Client Secret",
		},
	},
}

// Platforms returns every supported platform in display order.
func Platforms() []Platform {
	out := make([]Platform, 0, platformCount)
	for p := Platform(0); p < platformCount; p++ {
		out = append(out, p)
	}
	return out
}

// ParsePlatform resolves a backend identifier (case-insensitive) to a [Platform].
func ParsePlatform(name string) (Platform, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "x" {
		n = "twitter"
	}
	for p := Platform(0); p < platformCount; p++ {
		if platformTable[p].Name == n {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", shared.ErrUnknownPlatform, name)
}

// Valid reports whether p is one of the declared platforms.
func (p Platform) Valid() bool { return p >= 0 && p < platformCount }

// Info returns the platform's metadata. It panics for values outside the enumeration.
func (p Platform) Info() PlatformInfo {
	if !p.Valid() {
		panic(fmt.Sprintf("models: invalid platform %d", int(p)))
	}
	return platformTable[p]
}

func (p Platform) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Platform(%d)", int(p))
	}
	return platformTable[p].Name
}

// DisplayName returns the user-facing platform name.
func (p Platform) DisplayName() string { return p.Info().DisplayName }

// MarshalText encodes the platform as its backend identifier.
func (p Platform) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", shared.ErrUnknownPlatform, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a backend identifier.
func (p *Platform) UnmarshalText(b []byte) error {
	v, err := ParsePlatform(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
