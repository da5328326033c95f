package models

import "context"

// CredentialStore holds the bearer token pair shared by the session store and the HTTP client.
//
// Implementations must be safe for concurrent use.
type CredentialStore interface {
	Tokens(ctx context.Context) (TokenPair, error)       // Tokens returns the stored pair; a missing pair is the zero value
	SetTokens(ctx context.Context, pair TokenPair) error // SetTokens replaces both tokens
	SetAccess(ctx context.Context, access string) error  // SetAccess replaces only the access token
	Clear(ctx context.Context) error                     // Clear removes both tokens
}

// SessionSnapshot is the persisted subset of session state.
type SessionSnapshot struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"is_authenticated"`
}

// SessionRepository loads and saves the persisted session snapshot.
type SessionRepository interface {
	Load(ctx context.Context) (SessionSnapshot, error)
	Save(ctx context.Context, snap SessionSnapshot) error
}
