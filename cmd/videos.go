package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ufukcicekdev/syncx/internal/formatter"
	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

func videoArgs(cmd *cli.Command) (int64, string, error) {
	id, err := parseID(cmd, "account-id")
	if err != nil {
		return 0, "", err
	}
	videoID := strings.TrimSpace(cmd.StringArg("video-id"))
	if videoID == "" {
		return 0, "", fmt.Errorf("%w: <video-id>", shared.ErrMissingArgument)
	}
	return id, videoID, nil
}

// VideosList lists recent videos of a YouTube account.
func (r *Runner) VideosList(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "account-id")
	if err != nil {
		return err
	}
	limit := cmd.Int("limit")
	if limit <= 0 {
		return fmt.Errorf("%w: --limit must be positive", shared.ErrInvalidFlag)
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	videos, err := r.videos.List(ctx, id, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch videos: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(videos, cmd.Bool("pretty"))
	}

	if len(videos) == 0 {
		return r.writePlain("No videos found\n")
	}

	r.writePlainHeader(fmt.Sprintf("Videos (%d)", len(videos)))
	for _, v := range videos {
		r.writePlain("%-12s %-9s %7s views  %s\n", v.VideoID, v.PrivacyStatus, formatter.Count(v.ViewCount), v.Title)
	}
	return nil
}

// VideosShow prints one video's metadata.
func (r *Runner) VideosShow(ctx context.Context, cmd *cli.Command) error {
	id, videoID, err := videoArgs(cmd)
	if err != nil {
		return err
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	v, err := r.videos.Get(ctx, id, videoID)
	if err != nil {
		return fmt.Errorf("failed to fetch video %s: %w", videoID, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(v, cmd.Bool("pretty"))
	}

	r.writePlainHeader(v.Title)
	r.writePlain("ID:             %s\n", v.VideoID)
	r.writePlain("URL:            %s\n", v.URL)
	r.writePlain("Published:      %s\n", formatter.Relative(v.PublishedAt))
	r.writePlain("Privacy:        %s\n", v.PrivacyStatus)
	r.writePlain("Category:       %s\n", v.CategoryID)
	r.writePlain("Language:       %s\n", v.DefaultLanguage)
	r.writePlain("Audio language: %s\n", v.DefaultAudioLanguage)
	r.writePlain("Made for kids:  %t\n", v.MadeForKids)
	r.writePlain("Tags:           %s\n", strings.Join(v.Tags, ", "))
	r.writePlain("Views: %s  Likes: %s  Comments: %s\n", formatter.Count(v.ViewCount), formatter.Count(v.LikeCount), formatter.Count(v.CommentCount))
	if v.Description != "" {
		r.writePlainln("%s", v.Description)
	}
	return nil
}

// VideosUpdate loads the video, applies the flags that were given and saves it.
func (r *Runner) VideosUpdate(ctx context.Context, cmd *cli.Command) error {
	id, videoID, err := videoArgs(cmd)
	if err != nil {
		return err
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	v, err := r.videos.Get(ctx, id, videoID)
	if err != nil {
		return fmt.Errorf("failed to fetch video %s: %w", videoID, err)
	}

	update := v.Update()
	changed := 0
	apply := func(flag string, set func()) {
		if cmd.IsSet(flag) {
			set()
			changed++
		}
	}
	apply("title", func() { update.Title = strings.TrimSpace(cmd.String("title")) })
	apply("description", func() { update.Description = cmd.String("description") })
	apply("category", func() { update.CategoryID = cmd.String("category") })
	apply("tags", func() { update.Tags = models.ParseTags(cmd.String("tags")) })
	apply("privacy", func() { update.PrivacyStatus = strings.ToLower(cmd.String("privacy")) })
	apply("language", func() { update.DefaultLanguage = cmd.String("language") })
	apply("audio-language", func() { update.DefaultAudioLanguage = cmd.String("audio-language") })
	apply("made-for-kids", func() { update.MadeForKids = cmd.Bool("made-for-kids") })

	if changed == 0 {
		return fmt.Errorf("%w: nothing to update, pass at least one field flag", shared.ErrMissingArgument)
	}
	if err := update.Validate(); err != nil {
		return err
	}

	if err := r.videos.Update(ctx, id, videoID, update); err != nil {
		return fmt.Errorf("failed to update video %s: %w", videoID, err)
	}
	return r.writePlain("✓ Video updated successfully!\n")
}

// VideosCategories lists video categories, falling back to a built-in list.
func (r *Runner) VideosCategories(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "account-id")
	if err != nil {
		return err
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	cats, fallback := r.videos.CategoriesOrDefault(ctx, id)
	if fallback {
		r.logger.Warn("using built-in categories", "account", id)
	}

	if cmd.Bool("json") {
		return r.writeJSON(cats, cmd.Bool("pretty"))
	}
	for _, c := range cats {
		r.writePlain("%-4s %s\n", c.ID, c.Title)
	}
	return nil
}

// VideosLanguages lists video languages, falling back to a built-in list.
func (r *Runner) VideosLanguages(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "account-id")
	if err != nil {
		return err
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	langs, fallback := r.videos.LanguagesOrDefault(ctx, id)
	if fallback {
		r.logger.Warn("using built-in languages", "account", id)
	}

	if cmd.Bool("json") {
		return r.writeJSON(langs, cmd.Bool("pretty"))
	}
	for _, l := range langs {
		r.writePlain("%-6s %s\n", l.Code, l.Name)
	}
	return nil
}
