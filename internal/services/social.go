package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

// SocialService wraps the platform connection endpoints under /api/social/.
type SocialService struct {
	client *Client
}

// NewSocialService creates a [SocialService] on top of client.
func NewSocialService(client *Client) *SocialService {
	return &SocialService{client: client}
}

// Platforms lists the platforms the backend supports.
func (s *SocialService) Platforms(ctx context.Context) ([]models.SocialPlatform, error) {
	resp, err := s.client.Get(ctx, PathPlatforms)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return decodeList[models.SocialPlatform](resp)
}

// Accounts lists the user's connected accounts.
func (s *SocialService) Accounts(ctx context.Context) ([]models.ConnectedAccount, error) {
	resp, err := s.client.Get(ctx, PathAccounts)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return decodeList[models.ConnectedAccount](resp)
}

// Connect starts the OAuth flow for p and returns the provider authorization URL.
//
// Backend rejections come back as [*APIError] with SetupRequired set when provider credentials are missing.
func (s *SocialService) Connect(ctx context.Context, p models.Platform) (string, error) {
	resp, err := s.client.Post(ctx, connectPath(p), nil)
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}

	var out struct {
		AuthorizationURL string `json:"authorization_url"`
	}
	if err := resp.Decode(&out); err != nil {
		return "", err
	}
	if out.AuthorizationURL == "" {
		return "", fmt.Errorf("%w: response has no authorization_url", shared.ErrConnectFailed)
	}
	return out.AuthorizationURL, nil
}

// Callback completes the OAuth flow by handing the provider's code and state to the backend.
func (s *SocialService) Callback(ctx context.Context, p models.Platform, code, state string) error {
	body := map[string]string{"code": code, "state": state}
	return s.client.DoJSON(ctx, http.MethodPost, callbackPath(p), body, nil)
}

// Disconnect unlinks a connected account.
func (s *SocialService) Disconnect(ctx context.Context, accountID int64) error {
	return s.client.DoJSON(ctx, http.MethodDelete, disconnectPath(accountID), nil, nil)
}
