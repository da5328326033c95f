// Package ui implements the interactive dashboard using bubbletea's Elm architecture.
//
// The TUI shows every supported platform with its connected accounts:
//  1. [DashboardView] : Browse platforms and linked accounts, refresh the list
//  2. [ConfirmView] : Confirm disconnecting an account
//  3. [ConnectingView] : Wait for the provider authorization in the browser
//  4. [ErrorView] : Connection failure, with setup steps when the backend lacks OAuth credentials
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Dashboard loads and disconnects stream [tasks.ProgressUpdate] values through a channel for the status line.
//
// Keyboard navigation uses vim-style bindings (j/k, c, d, r, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
