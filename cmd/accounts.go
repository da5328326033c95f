package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ufukcicekdev/syncx/internal/formatter"
	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/server"
	"github.com/ufukcicekdev/syncx/internal/shared"
	"github.com/ufukcicekdev/syncx/internal/tasks"
)

const shutdownTimeout = 5 * time.Second

// AccountsPlatforms lists the platforms the backend supports.
func (r *Runner) AccountsPlatforms(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	platforms, err := r.social.Platforms(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch platforms: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(platforms, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Platforms")
	for _, p := range platforms {
		status := "available"
		if !p.IsActive {
			status = "unavailable"
		}
		r.writePlain("%-12s %-12s %s\n", p.Name, p.DisplayName, status)
	}
	return nil
}

// AccountsList lists connected accounts.
func (r *Runner) AccountsList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	accounts, err := r.social.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(accounts, cmd.Bool("pretty"))
	}

	if len(accounts) == 0 {
		return r.writePlain("No connected accounts. Run `syncx accounts connect <platform>` to add one.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Connected accounts (%d)", len(accounts)))
	for _, a := range accounts {
		status := string(a.Status)
		if a.IsExpired {
			status = string(models.StatusExpired)
		}
		r.writePlain("%-6d %-12s %-28s %-10s %s\n", a.ID, a.Platform.DisplayName, a.Handle(), status, formatter.Relative(a.ConnectedAt))
	}
	return nil
}

// AccountsConnect runs the OAuth flow for a platform: it starts the local callback server, opens the
// provider page and waits for the provider to redirect back.
func (r *Runner) AccountsConnect(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("platform")
	if name == "" {
		return fmt.Errorf("%w: <platform>", shared.ErrMissingArgument)
	}
	p, err := models.ParsePlatform(name)
	if err != nil {
		return err
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	noBrowser := cmd.Bool("no-browser")
	res, err := r.connectAccount(ctx, p, func(authURL string) {
		if !noBrowser {
			if err := r.openURL(authURL); err == nil {
				r.writePlain("Opened %s authorization in your browser.\n", p.DisplayName())
				r.writePlain("Waiting for the provider to redirect back...\n")
				return
			}
		}
		r.writePlain("Open this URL to authorize %s:\n\n  %s\n\n", p.DisplayName(), authURL)
		r.writePlain("Waiting for the provider to redirect back...\n")
	}, func(res tasks.CallbackResult) {
		r.writePlain("✗ %s\n", res.Message)
		r.writePlain("Use Try Again in the browser, or Back to Dashboard to stop.\n")
	})
	if err != nil {
		var cerr *tasks.ConnectError
		if errors.As(err, &cerr) {
			r.printRemediation(cerr)
		}
		return err
	}

	return r.writePlain("✓ %s\n", res.Message)
}

// connectAccount serves the callback page until the flow settles.
//
// A failed attempt is passed to onError (when set) while the error page stays up for Try Again.
func (r *Runner) connectAccount(ctx context.Context, p models.Platform, onURL func(string), onError func(tasks.CallbackResult)) (tasks.CallbackResult, error) {
	logger := shared.WithLogger(r.logger, "component", "callback", "platform", p.String())

	handler := server.NewCallbackHandler(server.CallbackHandlerOpts{
		Social:      r.social,
		Credentials: r.client.Store(),
		Delay:       r.config.Callback.RedirectDelay(),
		Logger:      logger,
		OnError:     onError,
	})
	defer handler.Close()

	router := server.NewBasicRouter()
	router.Use(server.DefaultMiddleware(logger)...)
	router.Handler(handler)

	srv, err := server.Start(r.config.Server.Addr(), router, logger)
	if err != nil {
		return tasks.CallbackResult{}, err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Warn("callback server shutdown failed", "err", err)
		}
	}()
	logger.Debug("waiting for callback", "url", server.CallbackURL(srv.URL(), p))

	authURL, err := tasks.NewConnectFlow(r.social).Initiate(ctx, p)
	if err != nil {
		return tasks.CallbackResult{}, err
	}
	onURL(authURL)

	wctx, cancel := context.WithTimeout(ctx, r.config.Callback.WaitTimeout())
	defer cancel()

	select {
	case err := <-srv.Errors():
		return tasks.CallbackResult{}, fmt.Errorf("callback server stopped: %w", err)
	default:
	}
	return handler.Wait(wctx)
}

func (r *Runner) printRemediation(cerr *tasks.ConnectError) {
	if !cerr.SetupRequired {
		return
	}
	setupURL, steps := cerr.Remediation()
	r.writePlainln("Setup Required: %s OAuth credentials are not configured on the server.", cerr.Platform.DisplayName())
	for i, step := range steps {
		r.writePlain("  %d. %s\n", i+1, step)
	}
	r.writePlain("\nDeveloper console: %s\n", setupURL)
}

// AccountsDisconnect removes a connected account after confirmation.
func (r *Runner) AccountsDisconnect(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "account-id")
	if err != nil {
		return err
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		ok, err := r.prompter.Confirm(
			fmt.Sprintf("Disconnect account %d?", id),
			"Are you sure you want to disconnect this account?",
		)
		if err != nil {
			return err
		}
		if !ok {
			return r.writePlain("Cancelled\n")
		}
	}

	progress := make(chan tasks.ProgressUpdate, 8)
	done := r.printProgress(progress)
	dashboard, err := r.engine.Disconnect(ctx, progress, id)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("failed to disconnect account %d: %w", id, err)
	}

	r.writePlain("✓ Account disconnected\n")
	if dashboard != nil && dashboard.AccountsErr == nil {
		r.writePlain("%d account(s) still connected\n", len(dashboard.Accounts))
	}
	return nil
}

// callbackConnector runs the browser flow for the TUI.
type callbackConnector struct {
	r *Runner
}

func (c callbackConnector) Connect(ctx context.Context, p models.Platform) (tasks.CallbackResult, error) {
	return c.r.connectAccount(ctx, p, func(authURL string) {
		if err := c.r.openURL(authURL); err != nil {
			c.r.logger.Warn("failed to open browser", "url", authURL, "err", err)
		}
	}, func(res tasks.CallbackResult) {
		c.r.logger.Warn("connection attempt failed", "platform", p, "message", res.Message)
	})
}
