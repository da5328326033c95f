package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

// AuthService wraps the account endpoints under /api/auth/.
type AuthService struct {
	client *Client
}

// NewAuthService creates an [AuthService] on top of client.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// Client returns the underlying HTTP wrapper.
func (s *AuthService) Client() *Client { return s.client }

// Login exchanges credentials for a token pair and the user profile.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := s.client.DoJSON(ctx, http.MethodPost, PathLogin, creds, &out); err != nil {
		return nil, err
	}
	if out.Access == "" {
		return nil, fmt.Errorf("%w: login response has no access token", shared.ErrAuthFailed)
	}
	return &out, nil
}

// Register creates an account and returns its token pair and profile.
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := s.client.DoJSON(ctx, http.MethodPost, PathRegister, reg, &out); err != nil {
		return nil, err
	}
	if out.Access == "" {
		return nil, fmt.Errorf("%w: registration response has no access token", shared.ErrAuthFailed)
	}
	return &out, nil
}

// VerifyToken reports whether the backend accepts token.
//
// A rejected token is (false, nil); only transport failures return an error.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (bool, error) {
	resp, err := s.client.Post(ctx, PathTokenVerify, map[string]string{"token": token})
	if err != nil {
		return false, err
	}
	return resp.OK(), nil
}

// Profile fetches the authenticated user's profile.
func (s *AuthService) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.client.DoJSON(ctx, http.MethodGet, PathProfile, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes refresh on the backend. An empty refresh token is a no-op.
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	if refresh == "" {
		return nil
	}
	return s.client.DoJSON(ctx, http.MethodPost, PathLogout, map[string]string{"refresh": refresh}, nil)
}

// UpdateProfile changes the account name and returns the updated profile when the backend sends one.
func (s *AuthService) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	resp, err := s.client.Patch(ctx, PathUser, update)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var user models.User
	if !resp.IsJSON || resp.Decode(&user) != nil || user.Email == "" {
		return nil, nil
	}
	return &user, nil
}

// ChangePassword changes the account password.
func (s *AuthService) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	return s.client.DoJSON(ctx, http.MethodPost, PathChangePassword, change, nil)
}

// DeleteAccount permanently deletes the account.
func (s *AuthService) DeleteAccount(ctx context.Context) error {
	return s.client.DoJSON(ctx, http.MethodDelete, PathDeleteAccount, nil, nil)
}

// ErrorMessage extracts a user-facing message from err.
//
// Backend messages win; transport failures map to the generic network message; anything else gets fallback.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.MessageOr(fallback)
	case errors.Is(err, shared.ErrNetwork):
		return shared.ErrNetwork.Error()
	default:
		return fallback
	}
}
