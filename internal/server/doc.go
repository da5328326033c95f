// Package server runs the local HTTP server that OAuth providers redirect back to.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] implements it on
// top of chi, so routes may carry URL parameters. [DefaultMiddleware] adds request IDs, panic recovery
// and a debug log line per request.
//
// # OAuth Callback Handler
//
// [CallbackHandler] serves /auth/callback/{platform}. Each request drives a [tasks.Callback]
// and renders its state as an HTML page: a success page that refreshes to /dashboard after the redirect
// delay, or an error page with "Back to Dashboard" and "Try Again" links. The handler is also the
// callback's navigator, so the command that started the flow learns about the delayed redirect (or a
// missing session) through [CallbackHandler.Wait].
//
// # Lifecycle
//
// [Start] binds the listener before returning so the redirect URI is reachable as soon as the browser
// opens. `syncx accounts connect` starts a server, waits for the callback, and shuts it down.
package server
