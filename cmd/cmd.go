// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ufukcicekdev/syncx/internal/formatter"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func accountArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "account-id", UsageText: "<account-id>"}}
}

// setupCommand handles setup operations for the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the local session database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:  "api-url",
						Usage: "Backend base URL to store in the file",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your SyncContents session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "email",
						Aliases: []string{"e"},
						Usage:   "Account email",
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (prompted when omitted)",
						Sources: cli.EnvVars("SYNCX_PASSWORD"),
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "full-name", Usage: "Your full name"},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password, at least 8 characters"},
					&cli.StringFlag{
						Name:  "tier",
						Usage: "Subscription tier: starter, professional or agency",
					},
					&cli.BoolFlag{Name: "agree-terms", Usage: "Agree to the Terms of Service and Privacy Policy"},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and revoke the refresh token",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the stored session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Check the session against the backend",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in user",
				Flags:  jsonFlags(),
				Action: r.AuthWhoami,
			},
		},
	}
}

// accountsCommand handles social account operations
func accountsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "accounts",
		Aliases: []string{"acc", "social"},
		Usage:   "Connect and manage social accounts",
		Commands: []*cli.Command{
			{
				Name:   "platforms",
				Usage:  "List supported platforms",
				Flags:  jsonFlags(),
				Action: r.AccountsPlatforms,
			},
			{
				Name:   "list",
				Usage:  "List connected accounts",
				Flags:  jsonFlags(),
				Action: r.AccountsList,
			},
			{
				Name:      "connect",
				Usage:     "Connect an account through the provider's OAuth page",
				UsageText: "syncx accounts connect <platform>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "platform"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening it",
					},
				},
				Action: r.AccountsConnect,
			},
			{
				Name:      "disconnect",
				Usage:     "Disconnect an account",
				Arguments: accountArg(),
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
				},
				Action: r.AccountsDisconnect,
			},
		},
	}
}

// tokensCommand handles API token operations
func tokensCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tokens",
		Usage: "Manage API tokens for automation tools",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List API tokens",
				Flags:  jsonFlags(),
				Action: r.TokensList,
			},
			{
				Name:  "create",
				Usage: "Create an API token. The secret is shown once",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Token name",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "copy",
						Usage: "Copy the token to the clipboard",
					},
				},
				Action: r.TokensCreate,
			},
			{
				Name:      "revoke",
				Usage:     "Revoke an API token",
				Arguments: []cli.Argument{&cli.StringArg{Name: "token-id"}},
				Action:    r.TokensRevoke,
			},
		},
	}
}

// analyticsCommand handles account statistics
func analyticsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "analytics",
		Aliases: []string{"stats"},
		Usage:   "Account statistics",
		Commands: []*cli.Command{
			{
				Name:   "summary",
				Usage:  "Show statistics for every connected account",
				Flags:  append(jsonFlags(), &cli.BoolFlag{Name: "csv", Usage: "Output CSV"}),
				Action: r.AnalyticsSummary,
			},
			{
				Name:      "show",
				Usage:     "Show statistics for one account",
				Arguments: accountArg(),
				Flags:     jsonFlags(),
				Action:    r.AnalyticsShow,
			},
			{
				Name:      "detailed",
				Usage:     "Show detailed statistics with recent videos",
				Arguments: accountArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   fmt.Sprintf("Output format: %s", strings.Join(formatter.Formats, ", ")),
						Value:   formatter.FormatText,
					},
				},
				Action: r.AnalyticsDetailed,
			},
			{
				Name:      "refresh",
				Usage:     "Ask the backend to re-fetch statistics from the platform",
				Arguments: accountArg(),
				Action:    r.AnalyticsRefresh,
			},
			{
				Name:  "export",
				Usage: "Export detailed statistics for every account to files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   fmt.Sprintf("Export format: %s", strings.Join(formatter.Formats, ", ")),
						Value:   formatter.FormatJSON,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: syncx_export_<epoch>)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
					},
					&cli.FloatFlag{
						Name:  "rate-limit",
						Usage: "Detailed analytics requests per second",
					},
					&cli.Int64SliceFlag{
						Name:  "account",
						Usage: "Limit the export to these account IDs",
					},
				},
				Action: r.AnalyticsExport,
			},
		},
	}
}

// videosCommand handles YouTube video metadata
func videosCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "videos",
		Aliases: []string{"yt"},
		Usage:   "Browse and edit YouTube videos of a connected channel",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List recent videos",
				Arguments: accountArg(),
				Flags: append(jsonFlags(), &cli.IntFlag{
					Name:  "limit",
					Usage: "Maximum number of videos",
					Value: 25,
				}),
				Action: r.VideosList,
			},
			{
				Name:  "show",
				Usage: "Show a video's metadata",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "account-id"},
					&cli.StringArg{Name: "video-id"},
				},
				Flags:  jsonFlags(),
				Action: r.VideosShow,
			},
			{
				Name:  "update",
				Usage: "Edit a video's metadata. Only the flags given are changed",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "account-id"},
					&cli.StringArg{Name: "video-id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Title, at most 100 characters"},
					&cli.StringFlag{Name: "description", Usage: "Description, at most 5000 characters"},
					&cli.StringFlag{Name: "category", Usage: "Category ID"},
					&cli.StringFlag{Name: "tags", Usage: "Comma separated tags"},
					&cli.StringFlag{Name: "privacy", Usage: "public, unlisted or private"},
					&cli.StringFlag{Name: "language", Usage: "Default language code"},
					&cli.StringFlag{Name: "audio-language", Usage: "Default audio language code"},
					&cli.BoolFlag{Name: "made-for-kids", Usage: "Mark the video as made for kids"},
				},
				Action: r.VideosUpdate,
			},
			{
				Name:      "categories",
				Usage:     "List video categories",
				Arguments: accountArg(),
				Flags:     jsonFlags(),
				Action:    r.VideosCategories,
			},
			{
				Name:      "languages",
				Usage:     "List video languages",
				Arguments: accountArg(),
				Flags:     jsonFlags(),
				Action:    r.VideosLanguages,
			},
		},
	}
}

// profileCommand handles account settings
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Account settings",
		Commands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Change your display name",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "full-name",
						Usage:    "New full name",
						Required: true,
					},
				},
				Action: r.ProfileUpdate,
			},
			{
				Name:   "password",
				Usage:  "Change your password",
				Action: r.ProfilePassword,
			},
			{
				Name:  "delete",
				Usage: "Delete your account",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
				},
				Action: r.ProfileDelete,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui", "dashboard"},
		Usage:   "Launch the interactive account dashboard",
		Action:  r.TUI,
	}
}
