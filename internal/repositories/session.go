package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ufukcicekdev/syncx/internal/models"
)

const sessionName = "auth-storage"

// SessionRepository implements [models.SessionRepository] as a JSON document in session_state.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Load returns the persisted snapshot, or the zero snapshot when none exists.
//
// A snapshot claiming authentication without a user is treated as signed out.
func (r *SessionRepository) Load(ctx context.Context) (models.SessionSnapshot, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT state FROM session_state WHERE name = ?`, sessionName).Scan(&raw)
	if err == sql.ErrNoRows {
		return models.SessionSnapshot{}, nil
	}
	if err != nil {
		return models.SessionSnapshot{}, fmt.Errorf("failed to query session: %w", err)
	}

	var snap models.SessionSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return models.SessionSnapshot{}, fmt.Errorf("failed to decode session: %w", err)
	}
	if snap.User == nil {
		snap.IsAuthenticated = false
	}
	return snap, nil
}

// Save persists snap, replacing any previous snapshot.
func (r *SessionRepository) Save(ctx context.Context, snap models.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	query := `
		INSERT INTO session_state (name, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, sessionName, string(data), time.Now()); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
