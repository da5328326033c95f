// Package session holds the authenticated user and the lifecycle of the bearer tokens.
//
// A [Store] is created once per process with [NewStore] and shared by every command and view.
// It is hydrated from the persisted snapshot (user and authenticated flag only; loading and error
// are transient) and persists that snapshot after every change.
//
// Token pairs never live in the session state itself: they are written through the
// [models.CredentialStore] the HTTP client reads from, so a refresh performed by the client is
// visible to the session and a logout here is visible to the client.
package session
