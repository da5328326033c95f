// Package services is the REST client for the SyncContents backend.
//
// # Client
//
// Every call goes through [Client], the HTTP wrapper shared by all services:
//   - the stored access token is attached as a bearer credential (via [oauth2.Token.SetAuthHeader])
//   - a 401 triggers one refresh and one replay of the original request
//   - a failed refresh clears the credential store and sends the [Navigator] to [RouteLogin]
//   - concurrent refreshes are collapsed with singleflight
//
// The login, register, token verify and token refresh endpoints never trigger a refresh.
//
// # Services
//
//   - [AuthService] : login, registration, token verification, profile and settings
//   - [SocialService] : platforms, connected accounts and the OAuth connect/callback exchange
//   - [TokenService] : API tokens for external automation
//   - [AnalyticsService] : per-account statistics
//   - [VideoService] : YouTube video metadata
//
// # Error Handling
//
// Transport failures wrap [shared.ErrNetwork]. Non-2xx responses become [*APIError], which unwraps to:
//   - [shared.ErrNotAuthenticated] : 401
//   - [shared.ErrServiceUnavailable] : 502, 503, 504
//   - [shared.ErrAPIRequest] : anything else
//
// [ErrorMessage] turns any of these into a user-facing string.
package services
