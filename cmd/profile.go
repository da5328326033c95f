package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

// ProfileUpdate changes the account's full name.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	update := models.ProfileUpdate{FullName: cmd.String("full-name")}
	if err := update.Validate(); err != nil {
		return err
	}
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	if err := r.session.UpdateProfile(ctx, update); err != nil {
		return sessionError(err, r.session.State().Error)
	}
	return r.writePlain("✓ Profile updated: %s\n", r.session.State().User.DisplayName())
}

// ProfilePassword changes the account password. Values are always prompted for.
func (r *Runner) ProfilePassword(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireAuth(ctx); err != nil {
		return err
	}

	var change models.PasswordChange
	if err := r.prompter.PasswordChange(&change); err != nil {
		return err
	}
	if err := r.session.ChangePassword(ctx, change); err != nil {
		return sessionError(err, r.session.State().Error)
	}
	return r.writePlain("✓ Password changed\n")
}

// ProfileDelete deletes the account after confirmation and signs out.
func (r *Runner) ProfileDelete(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireAuth(ctx)
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		ok, err := r.prompter.Confirm(
			fmt.Sprintf("Delete the account for %s?", user.Email),
			"This removes your account and every connected platform. It cannot be undone.",
		)
		if err != nil {
			return err
		}
		if !ok {
			return r.writePlain("Cancelled\n")
		}
	}

	if err := r.session.DeleteAccount(ctx); err != nil {
		return sessionError(err, r.session.State().Error)
	}
	r.session.Wait()
	return r.writePlain("✓ Account deleted\n")
}

// sessionError keeps validation failures as they are and reports backend failures with the
// message the session recorded.
func sessionError(err error, message string) error {
	if errors.Is(err, shared.ErrInvalidInput) || errors.Is(err, shared.ErrNotAuthenticated) || message == "" {
		return err
	}
	return fmt.Errorf("%s: %w", message, err)
}
