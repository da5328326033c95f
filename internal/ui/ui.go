package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DashboardView ViewState = iota
	ConfirmView
	ConnectingView
	ErrorView
)

// DashboardLoader fetches and modifies the dashboard. [*tasks.Engine] implements it.
type DashboardLoader interface {
	LoadDashboard(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.Dashboard, error)
	Disconnect(ctx context.Context, progress chan<- tasks.ProgressUpdate, accountID int64) (*tasks.Dashboard, error)
}

// Connector runs an OAuth connection: it opens the provider page and waits for the callback.
type Connector interface {
	Connect(ctx context.Context, p models.Platform) (tasks.CallbackResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	loader    DashboardLoader
	connector Connector
	user      *models.User

	width     int
	height    int
	accounts  list.Model
	dashboard *tasks.Dashboard
	spinner   spinner.Model
	busy      bool
	status    string
	notice    string
	err       error

	progressChan <-chan tasks.ProgressUpdate
	doneChan     <-chan Msg

	pending    *accountItem
	connecting models.Platform
	cancel     context.CancelFunc
	connectErr *tasks.ConnectError

	help help.Model
	keys keyMap
}

// ModelOpts contains the dependencies of a [Model].
type ModelOpts struct {
	Loader    DashboardLoader
	Connector Connector
	User      *models.User
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	accounts := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	accounts.Title = "Connected Accounts"
	accounts.SetShowHelp(false)

	return &Model{
		ctx:       ctx,
		view:      DashboardView,
		loader:    opts.Loader,
		connector: opts.Connector,
		user:      opts.User,
		accounts:  accounts,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts loading the dashboard.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.accounts.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case DashboardView:
			return m.handleDashboardKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ConnectingView:
			return m.handleConnectingKeys(msg)
		case ErrorView:
			return m.handleErrorKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.accounts, cmd = m.accounts.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.status = msg.data.(tasks.ProgressUpdate).Message
		return m, waitForProgress(m.progressChan, m.doneChan)

	case MsgDashboardLoaded, MsgDisconnectComplete:
		res := msg.data.(dashboardResult)
		m.busy = false
		m.status = ""
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.err = nil
		m.setDashboard(res.dashboard)
		if msg.kind == MsgDisconnectComplete {
			m.notice = styles.ok.Render("✓ Account disconnected")
		}
		return m, nil

	case MsgConnectComplete:
		res := msg.data.(connectResult)
		m.cancel = nil
		m.view = DashboardView

		var cerr *tasks.ConnectError
		switch {
		case errors.As(res.err, &cerr):
			m.connectErr = cerr
			m.view = ErrorView
			return m, nil
		case errors.Is(res.err, context.Canceled):
			m.notice = styles.warn.Render("Connection cancelled")
			return m, nil
		case res.err != nil:
			m.notice = styles.err.Render(fmt.Sprintf("✗ %v", res.err))
			return m, nil
		}

		m.notice = styles.ok.Render("✓ " + res.result.Message)
		return m, m.load()
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConfirmView:
		return m.renderConfirm()
	case ConnectingView:
		return m.renderConnecting()
	case ErrorView:
		return m.renderError()
	default:
		return m.renderDashboard()
	}
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.accounts.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.accounts, cmd = m.accounts.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		if m.busy {
			return m, nil
		}
		m.notice = ""
		return m, m.load()
	case key.Matches(msg, m.keys.connect):
		if p, ok := m.selectedPlatform(); ok && !m.busy {
			return m, m.connect(p)
		}
		return m, nil
	case key.Matches(msg, m.keys.disconnect):
		if item, ok := m.accounts.SelectedItem().(accountItem); ok && !m.busy {
			m.pending = &item
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.accounts, cmd = m.accounts.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		item := m.pending
		m.pending = nil
		m.view = DashboardView
		return m, m.disconnect(item.account.ID)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.pending = nil
		m.view = DashboardView
	}
	return m, nil
}

func (m *Model) handleConnectingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.back) || key.Matches(msg, m.keys.quit) {
		if m.cancel != nil {
			m.cancel()
		}
	}
	return m, nil
}

func (m *Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), msg.String() == "enter":
		m.connectErr = nil
		m.view = DashboardView
	}
	return m, nil
}

func (m *Model) selectedPlatform() (models.Platform, bool) {
	switch item := m.accounts.SelectedItem().(type) {
	case platformItem:
		return item.platform, !item.unavailable
	case accountItem:
		return item.platform, true
	default:
		return 0, false
	}
}

func (m *Model) setDashboard(d *tasks.Dashboard) {
	m.dashboard = d
	m.accounts.SetItems(dashboardItems(d))
	if err := d.Err(); err != nil {
		m.notice = styles.warn.Render(fmt.Sprintf("⚠ %v", err))
	}
}

// load runs [DashboardLoader.LoadDashboard] in the background.
func (m *Model) load() tea.Cmd {
	m.busy = true
	return m.run(func(progress chan<- tasks.ProgressUpdate) Msg {
		d, err := m.loader.LoadDashboard(m.ctx, progress)
		return dashboardLoadedMsg(d, err)
	})
}

func (m *Model) disconnect(id int64) tea.Cmd {
	m.busy = true
	m.notice = ""
	return m.run(func(progress chan<- tasks.ProgressUpdate) Msg {
		d, err := m.loader.Disconnect(m.ctx, progress, id)
		return disconnectCompleteMsg(d, err)
	})
}

func (m *Model) connect(p models.Platform) tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.connecting = p
	m.notice = ""
	m.view = ConnectingView

	return func() tea.Msg {
		defer cancel()
		res, err := m.connector.Connect(ctx, p)
		return connectCompleteMsg(p, res, err)
	}
}

// run starts op in a goroutine and returns a command streaming its progress, then its result.
func (m *Model) run(op func(chan<- tasks.ProgressUpdate) Msg) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan Msg, 1)

	go func() {
		msg := op(progress)
		close(progress)
		done <- msg
	}()

	m.progressChan, m.doneChan = progress, done
	return waitForProgress(progress, done)
}

func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan Msg) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) header() string {
	title := styles.title.Render("SyncContents")
	if m.user == nil {
		return title
	}
	who := m.user.DisplayName()
	if tier := m.user.SubscriptionTier.Label(); tier != "" {
		who = fmt.Sprintf("%s (%s)", who, tier)
	}
	return fmt.Sprintf("%s\n%s", title, styles.help.Render("Signed in as "+who))
}

func (m *Model) renderDashboard() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	case m.dashboard == nil:
		b.WriteString(fmt.Sprintf("%s %s\n\n", m.spinner.View(), m.statusText("Loading dashboard...")))
	default:
		b.WriteString(m.accounts.View())
		b.WriteString("\n")
		if m.busy {
			b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.statusText("Working...")))
		}
	}

	if m.notice != "" {
		b.WriteString(m.notice)
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.connect, m.keys.disconnect, m.keys.refresh, m.keys.quit}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) statusText(fallback string) string {
	if m.status != "" {
		return m.status
	}
	return fallback
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Disconnect %s %s?", m.pending.platform.DisplayName(), m.pending.account.Handle()))
	info := "\nYou can reconnect the account at any time.\n"

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConnecting() string {
	title := styles.title.Render(fmt.Sprintf("Connecting %s", m.connecting.DisplayName()))
	info := fmt.Sprintf("%s Complete the authorization in your browser...", m.spinner.View())

	helpKeys := []key.Binding{m.keys.back}
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderError() string {
	e := m.connectErr

	var b strings.Builder
	b.WriteString(styles.err.Render(fmt.Sprintf("%s Connection Failed", e.Platform.DisplayName())))
	b.WriteString("\n\n")
	b.WriteString(e.Message)

	if e.SetupRequired {
		url, steps := e.Remediation()
		b.WriteString("\n\n")
		b.WriteString(styles.warn.Render("Setup Required"))
		b.WriteString("\n")
		for i, step := range steps {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
		b.WriteString("\n\n")
		b.WriteString(styles.help.Render(url))
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", styles.modal.Render(b.String()), m.help.ShortHelpView(helpKeys))
}
