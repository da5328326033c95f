// Package tasks orchestrates the multi-step account operations behind the CLI and TUI.
//
// # Core Operations
//
// [Engine] bundles the operations that span more than one backend call:
//
//  1. [Engine.LoadDashboard] : platforms and connected accounts, fetched concurrently
//     - Each half records its own error so one failing endpoint never hides the other
//     - [Dashboard.IsConnected] and [Dashboard.AccountsFor] group accounts by platform
//
//  2. [Engine.Disconnect] : unlinks an account and refetches the dashboard
//
//  3. [Engine.BulkExport] : detailed analytics for many accounts
//     - Worker pool with a shared rate limiter
//     - One file set per account plus an export_manifest.json
//
// # OAuth Connection
//
// Connecting a platform is split in two halves that run in different places:
//
//   - [ConnectFlow.Initiate] asks the backend for the provider's authorization URL. Failures come back
//     as [*ConnectError] with the platform's setup instructions when the backend lacks credentials.
//   - [Callback] is the state machine behind /auth/callback/{platform}. It moves from loading to
//     success or error, exchanges code and state through the HTTP client, and schedules the
//     dashboard redirect. [Callback.Close] cancels a redirect that has not fired yet.
//
// # Progress Reporting
//
// Long operations take an optional progress channel. Updates ([ProgressUpdate]) are sent with
// select/default so a slow reader never blocks the operation.
package tasks
