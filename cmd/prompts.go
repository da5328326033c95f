package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/ufukcicekdev/syncx/internal/models"
)

// Prompter asks for values the user did not pass as flags. Fields that are already set are not asked for.
type Prompter interface {
	Login(creds *models.Credentials) error
	Register(reg *models.Registration) error
	PasswordChange(change *models.PasswordChange) error
	Confirm(title, description string) (bool, error)
}

// huhPrompter renders interactive forms with huh.
type huhPrompter struct{}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func (huhPrompter) Login(creds *models.Credentials) error {
	var fields []huh.Field
	if creds.Email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&creds.Email).Validate(required("email")))
	}
	if creds.Password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&creds.Password).Validate(required("password")))
	}
	return runForm(huh.NewGroup(fields...).Title("Sign in to SyncContents"), len(fields))
}

func (huhPrompter) Register(reg *models.Registration) error {
	var fields []huh.Field
	if reg.FullName == "" {
		fields = append(fields, huh.NewInput().Title("Full name").Value(&reg.FullName).Validate(required("full name")))
	}
	if reg.Email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&reg.Email).Validate(required("email")))
	}
	if reg.Password == "" {
		fields = append(fields, huh.NewInput().Title("Password").Description("At least 8 characters").EchoMode(huh.EchoModePassword).Value(&reg.Password))
	}
	if reg.PasswordConfirm == "" {
		fields = append(fields, huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&reg.PasswordConfirm))
	}
	if reg.Tier == "" {
		var opts []huh.Option[models.Tier]
		for _, t := range models.RegistrationTiers {
			opts = append(opts, huh.NewOption(t.Label(), t))
		}
		reg.Tier = models.TierStarter
		fields = append(fields, huh.NewSelect[models.Tier]().Title("Plan").Options(opts...).Value(&reg.Tier))
	}
	if !reg.AgreeTerms {
		fields = append(fields, huh.NewConfirm().Title("I agree to the Terms of Service and Privacy Policy").Value(&reg.AgreeTerms))
	}
	return runForm(huh.NewGroup(fields...).Title("Create your account"), len(fields))
}

func (huhPrompter) PasswordChange(change *models.PasswordChange) error {
	var fields []huh.Field
	if change.OldPassword == "" {
		fields = append(fields, huh.NewInput().Title("Current password").EchoMode(huh.EchoModePassword).Value(&change.OldPassword))
	}
	if change.NewPassword == "" {
		fields = append(fields, huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&change.NewPassword))
	}
	if change.ConfirmPassword == "" {
		fields = append(fields, huh.NewInput().Title("Confirm new password").EchoMode(huh.EchoModePassword).Value(&change.ConfirmPassword))
	}
	return runForm(huh.NewGroup(fields...).Title("Change password"), len(fields))
}

func (huhPrompter) Confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().Title(title).Description(description).Affirmative("Yes").Negative("No").Value(&ok).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func runForm(group *huh.Group, fields int) error {
	if fields == 0 {
		return nil
	}
	if err := huh.NewForm(group).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("cancelled")
		}
		return err
	}
	return nil
}
