package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgDashboardLoaded MsgKind = iota
	MsgProgressUpdate
	MsgConnectComplete
	MsgDisconnectComplete
)

type dashboardResult struct {
	dashboard *tasks.Dashboard
	err       error
}

type connectResult struct {
	platform models.Platform
	result   tasks.CallbackResult
	err      error
}

// dashboardLoadedMsg is the constructor for [MsgDashboardLoaded]
func dashboardLoadedMsg(d *tasks.Dashboard, err error) Msg {
	return Msg{kind: MsgDashboardLoaded, data: dashboardResult{d, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// connectCompleteMsg is the constructor for [MsgConnectComplete]
func connectCompleteMsg(p models.Platform, res tasks.CallbackResult, err error) Msg {
	return Msg{kind: MsgConnectComplete, data: connectResult{p, res, err}}
}

// disconnectCompleteMsg is the constructor for [MsgDisconnectComplete]
func disconnectCompleteMsg(d *tasks.Dashboard, err error) Msg {
	return Msg{kind: MsgDisconnectComplete, data: dashboardResult{d, err}}
}
