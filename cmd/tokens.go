package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ufukcicekdev/syncx/internal/formatter"
	"github.com/ufukcicekdev/syncx/internal/models"
)

// TokensList lists API tokens. Secrets are never returned by the list endpoint.
func (r *Runner) TokensList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	tokens, err := r.tokens.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch API tokens: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tokens, cmd.Bool("pretty"))
	}

	if len(tokens) == 0 {
		return r.writePlain("No API tokens. Create one with `syncx tokens create --name <name>`.\n")
	}

	r.writePlainHeader("API tokens")
	for _, t := range tokens {
		lastUsed := "never"
		if t.LastUsed != nil {
			lastUsed = formatter.Relative(*t.LastUsed)
		}
		status := "active"
		if !t.IsActive {
			status = "revoked"
		}
		r.writePlain("%-6d %-24s created %-16s used %-16s %s\n", t.ID, t.Name, formatter.Relative(t.CreatedAt), lastUsed, status)
	}
	return nil
}

// TokensCreate creates a token and prints its secret once.
func (r *Runner) TokensCreate(ctx context.Context, cmd *cli.Command) error {
	req := models.APITokenCreate{Name: cmd.String("name")}
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	token, err := r.tokens.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create API token: %w", err)
	}

	r.writePlain("✓ Created API token %q (id %d)\n\n", token.Name, token.ID)
	r.writePlain("  %s\n\n", token.Token)
	r.writePlain("Copy it now. It will not be shown again.\n")

	if cmd.Bool("copy") {
		if err := r.copyText(token.Token); err != nil {
			r.logger.Warn("failed to copy token to clipboard", "err", err)
			return nil
		}
		r.writePlain("✓ Copied to clipboard\n")
	}
	return nil
}

// TokensRevoke revokes a token.
func (r *Runner) TokensRevoke(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "token-id")
	if err != nil {
		return err
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	if err := r.tokens.Revoke(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke API token %d: %w", id, err)
	}
	return r.writePlain("✓ API token %d revoked\n", id)
}
