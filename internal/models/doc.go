// Package models defines the client-side data model for the SyncContents backend.
//
// The package contains three categories of types:
//
// 1. Session types: owned by the session store and persisted locally
//   - [User] : the authenticated account as returned by the backend
//   - [TokenPair] : access/refresh bearer credentials
//   - [SessionSnapshot] : the persisted subset of session state
//
// 2. Backend projections: read-only views fetched over REST
//   - [SocialPlatform], [ConnectedAccount] : platforms and linked accounts
//   - [Analytics], [DetailedAnalytics] : per-account statistics
//   - [Video], [VideoCategory], [Language] : YouTube metadata
//   - [APIToken] : automation tokens
//
// 3. Request payloads with client-side validation
//   - [Credentials], [Registration], [ProfileUpdate], [PasswordChange], [VideoUpdate], [APITokenCreate]
//
// [Platform] is a closed enumeration of supported social platforms; every value has an entry in the platform table.
//
// [CredentialStore] and [SessionRepository] are the persistence seams shared by the HTTP client and the session store.
package models
