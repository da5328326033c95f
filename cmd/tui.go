package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/ufukcicekdev/syncx/internal/services"
	"github.com/ufukcicekdev/syncx/internal/shared"
	"github.com/ufukcicekdev/syncx/internal/ui"
)

// TUI launches the interactive account dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: task engine not initialized", shared.ErrServiceUnavailable)
	}

	user, err := r.requireAuth(ctx)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/syncx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)
	r.client.SetNavigator(services.NavigatorFunc(func(route string) {
		if route == services.RouteLogin {
			fileLogger.Warn("session expired during the dashboard, sign in again with `syncx auth login`")
		}
	}))

	model := ui.NewModel(ctx, ui.ModelOpts{
		Loader:    r.engine,
		Connector: callbackConnector{r: r},
		User:      user,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
