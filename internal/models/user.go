package models

import (
	"strings"

	"github.com/ufukcicekdev/syncx/internal/shared"
)

// Tier is a subscription tier.
type Tier string

const (
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierAgency       Tier = "agency"
	TierEnterprise   Tier = "enterprise"
)

// RegistrationTiers lists the tiers a new account can pick.
var RegistrationTiers = []Tier{TierStarter, TierProfessional, TierAgency}

// Label returns a display name for the tier.
func (t Tier) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// User is the authenticated account.
type User struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	FullName         string `json:"full_name"`
	SubscriptionTier Tier   `json:"subscription_tier"`
	IsVerified       bool   `json:"is_verified"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// DisplayName prefers the full name and falls back to the email address.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Email
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (c Credentials) Validate() error { return shared.ValidateStruct(c) }

// Registration is the sign-up form. AgreeTerms is checked locally and never sent.
type Registration struct {
	FullName        string `json:"full_name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Tier            Tier   `json:"subscription_tier,omitempty" validate:"omitempty,oneof=starter professional agency"`
	AgreeTerms      bool   `json:"-" form:"agree_terms" validate:"required"`
}

// Normalize trims whitespace and defaults the tier to starter.
func (r *Registration) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	if r.Tier == "" {
		r.Tier = TierStarter
	}
}

func (r Registration) Validate() error { return shared.ValidateStruct(r) }

// ProfileUpdate is the settings form for the account name.
type ProfileUpdate struct {
	FullName string `json:"full_name" validate:"required,min=2"`
}

func (p ProfileUpdate) Validate() error { return shared.ValidateStruct(p) }

// PasswordChange is the change-password form. ConfirmPassword is checked locally and never sent.
type PasswordChange struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"-" form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

func (p PasswordChange) Validate() error { return shared.ValidateStruct(p) }

// AuthResponse is returned by the login and register endpoints.
type AuthResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// Pair returns the token pair carried by the response.
func (a AuthResponse) Pair() TokenPair {
	return TokenPair{Access: a.Access, Refresh: a.Refresh}
}
