package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ufukcicekdev/syncx/internal/models"
)

const defaultSlot = "default"

// CredentialRepository implements [models.CredentialStore] on the credentials table.
//
// It stores a single token pair per slot; the CLI only ever uses the default slot.
type CredentialRepository struct {
	db   *sql.DB
	slot string
}

// NewCredentialRepository creates a [CredentialRepository] using the default slot.
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db, slot: defaultSlot}
}

// Tokens returns the stored pair, or the zero pair when nothing is stored.
func (r *CredentialRepository) Tokens(ctx context.Context) (models.TokenPair, error) {
	var pair models.TokenPair
	err := r.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token FROM credentials WHERE slot = ?`, r.slot,
	).Scan(&pair.Access, &pair.Refresh)
	if err == sql.ErrNoRows {
		return models.TokenPair{}, nil
	}
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to query credentials: %w", err)
	}
	return pair, nil
}

// SetTokens replaces both tokens.
func (r *CredentialRepository) SetTokens(ctx context.Context, pair models.TokenPair) error {
	query := `
		INSERT INTO credentials (slot, access_token, refresh_token, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, r.slot, pair.Access, pair.Refresh, time.Now()); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}

// SetAccess replaces the access token and keeps the refresh token.
func (r *CredentialRepository) SetAccess(ctx context.Context, access string) error {
	query := `
		INSERT INTO credentials (slot, access_token, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			access_token = excluded.access_token,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, r.slot, access, time.Now()); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	return nil
}

// Clear removes both tokens.
func (r *CredentialRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE slot = ?`, r.slot); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
