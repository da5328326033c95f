package tasks

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

// Dashboard is the platform list and the user's connected accounts.
//
// PlatformsErr and AccountsErr are recorded independently; a failed half is left empty.
type Dashboard struct {
	Platforms    []models.SocialPlatform
	Accounts     []models.ConnectedAccount
	PlatformsErr error
	AccountsErr  error
}

// Err returns the first recorded error.
func (d *Dashboard) Err() error {
	if d.PlatformsErr != nil {
		return d.PlatformsErr
	}
	return d.AccountsErr
}

// IsConnected reports whether any account belongs to the platform named name.
func (d *Dashboard) IsConnected(name string) bool {
	for _, a := range d.Accounts {
		if a.Platform.Name == name {
			return true
		}
	}
	return false
}

// AccountsFor returns the accounts linked for p, in backend order.
func (d *Dashboard) AccountsFor(p models.Platform) []models.ConnectedAccount {
	var out []models.ConnectedAccount
	for _, a := range d.Accounts {
		if kind, err := a.Platform.Kind(); err == nil && kind == p {
			out = append(out, a)
		}
	}
	return out
}

// Account looks up a connected account by ID.
func (d *Dashboard) Account(id int64) (models.ConnectedAccount, bool) {
	for _, a := range d.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return models.ConnectedAccount{}, false
}

// LoadDashboard fetches platforms and accounts concurrently.
//
// Neither half cancels the other: the returned error is only non-nil when ctx is done.
func (e *Engine) LoadDashboard(ctx context.Context, progress chan<- ProgressUpdate) (*Dashboard, error) {
	if e.social == nil {
		return nil, fmt.Errorf("%w: social service not initialized", shared.ErrServiceUnavailable)
	}

	d := &Dashboard{}
	var g errgroup.Group

	g.Go(func() error {
		sendProgress(progress, fetchPlatformsUpdate(1, 2))
		platforms, err := e.social.Platforms(ctx)
		if err != nil {
			e.logger.Warn("failed to fetch platforms", "err", err)
			d.PlatformsErr = err
			return nil
		}
		d.Platforms = platforms
		return nil
	})

	g.Go(func() error {
		sendProgress(progress, fetchAccountsUpdate(2, 2))
		accounts, err := e.social.Accounts(ctx)
		if err != nil {
			e.logger.Warn("failed to fetch accounts", "err", err)
			d.AccountsErr = err
			return nil
		}
		d.Accounts = accounts
		return nil
	})

	g.Wait()
	if err := ctx.Err(); err != nil {
		return d, err
	}
	return d, nil
}

// Disconnect unlinks an account and returns the refreshed dashboard.
func (e *Engine) Disconnect(ctx context.Context, progress chan<- ProgressUpdate, accountID int64) (*Dashboard, error) {
	if e.social == nil {
		return nil, fmt.Errorf("%w: social service not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, disconnectUpdate(accountID))
	if err := e.social.Disconnect(ctx, accountID); err != nil {
		return nil, err
	}
	e.logger.Info("account disconnected", "account", accountID)
	return e.LoadDashboard(ctx, progress)
}
