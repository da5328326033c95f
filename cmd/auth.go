package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

// logoutTimeout bounds how long logout waits for the backend to revoke the refresh token.
const logoutTimeout = 5 * time.Second

// AuthLogin signs in with email and password, prompting for whatever was not passed as a flag.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session store not initialized", shared.ErrServiceUnavailable)
	}

	creds := models.Credentials{
		Email:    strings.TrimSpace(cmd.String("email")),
		Password: cmd.String("password"),
	}
	if err := r.prompter.Login(&creds); err != nil {
		return err
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	r.logger.Info("signing in", "email", creds.Email, "api", r.client.BaseURL())
	if err := r.session.Login(ctx, creds); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, r.session.State().Error)
	}

	user := r.session.State().User
	return r.writePlain("✓ Signed in as %s\n", user.DisplayName())
}

// AuthRegister creates an account and signs in with it.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session store not initialized", shared.ErrServiceUnavailable)
	}

	reg := models.Registration{
		FullName:   cmd.String("full-name"),
		Email:      cmd.String("email"),
		Password:   cmd.String("password"),
		Tier:       models.Tier(strings.ToLower(cmd.String("tier"))),
		AgreeTerms: cmd.Bool("agree-terms"),
	}
	if reg.Password != "" {
		reg.PasswordConfirm = reg.Password
	}
	if err := r.prompter.Register(&reg); err != nil {
		return err
	}

	if err := r.session.Register(ctx, reg); err != nil {
		var verr shared.ValidationErrors
		if errors.As(err, &verr) {
			return err
		}
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, r.session.State().Error)
	}

	user := r.session.State().User
	r.writePlain("✓ Account created for %s\n", user.Email)
	return r.writePlain("Plan: %s\n", user.SubscriptionTier.Label())
}

// AuthLogout clears the local session and waits briefly for the backend to revoke the refresh token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session store not initialized", shared.ErrServiceUnavailable)
	}

	done := r.session.Logout(ctx)
	r.writePlain("✓ Signed out\n")

	select {
	case err := <-done:
		if err != nil {
			r.logger.Warn("refresh token was not revoked", "err", err)
		}
	case <-time.After(logoutTimeout):
		r.logger.Warn("backend logout still running, giving up", "timeout", logoutTimeout)
	}
	return nil
}

// AuthStatus reports whether credentials are stored, when the access token expires and, with
// --verify, whether the backend still accepts them.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	store := r.client.Store()
	if store == nil {
		return fmt.Errorf("%w: credential store not initialized", shared.ErrServiceUnavailable)
	}

	pair, err := store.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	r.writePlain("API: %s\n", r.client.BaseURL())
	if !pair.HasAccess() {
		return r.writePlain("Session: ✗ Not signed in\n")
	}

	r.writePlain("Session: ✓ Credentials stored\n")
	if exp := pair.Token().Expiry; !exp.IsZero() {
		if time.Now().After(exp) {
			r.writePlain("Access token: expired %s\n", humanize.Time(exp))
		} else {
			r.writePlain("Access token: expires %s\n", humanize.Time(exp))
		}
	}
	if pair.HasRefresh() {
		r.writePlain("Refresh token: present\n")
	} else {
		r.writePlain("Refresh token: missing\n")
	}

	if r.session != nil {
		if user := r.session.State().User; user != nil {
			r.writePlain("User: %s <%s>\n", user.DisplayName(), user.Email)
		}
	}

	if !cmd.Bool("verify") {
		return nil
	}

	user, err := r.requireAuth(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("Backend: ✓ Session valid for %s\n", user.Email)
}

// AuthWhoami prints the signed-in user after validating the session.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireAuth(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	r.writePlainHeader(user.DisplayName())
	r.writePlain("Email:    %s\n", user.Email)
	r.writePlain("Plan:     %s\n", user.SubscriptionTier.Label())
	if user.IsVerified {
		r.writePlain("Verified: yes\n")
	} else {
		r.writePlain("Verified: no\n")
	}
	if t, ok := models.ParseTimestamp(user.CreatedAt); ok {
		r.writePlain("Joined:   %s\n", humanize.Time(t))
	}
	return nil
}
