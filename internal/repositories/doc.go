// Package repositories implements SQLite persistence for local session state.
//
// Key Implementations:
//   - [CredentialRepository] : the access/refresh token pair, implementing [models.CredentialStore]
//   - [SessionRepository] : the persisted session snapshot (user + authenticated flag) as a JSON document
//
// Both tables are created by the embedded migrations in the shared package.
package repositories
