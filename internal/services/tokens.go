package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

// TokenService manages API tokens used by external automation.
type TokenService struct {
	client *Client
}

// NewTokenService creates a [TokenService] on top of client.
func NewTokenService(client *Client) *TokenService {
	return &TokenService{client: client}
}

// List returns the user's API tokens. The backend may paginate.
func (s *TokenService) List(ctx context.Context) ([]models.APIToken, error) {
	resp, err := s.client.Get(ctx, PathTokens)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return decodeList[models.APIToken](resp)
}

// Create issues a new token. The secret is only present in this response.
func (s *TokenService) Create(ctx context.Context, req models.APITokenCreate) (*models.APIToken, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var tok models.APIToken
	if err := s.client.DoJSON(ctx, http.MethodPost, PathTokens, req, &tok); err != nil {
		return nil, err
	}
	if tok.Token == "" {
		return nil, fmt.Errorf("%w: response has no token", shared.ErrAPIRequest)
	}
	if tok.Name == "" {
		tok.Name = req.Name
	}
	return &tok, nil
}

// Revoke deletes a token.
func (s *TokenService) Revoke(ctx context.Context, id int64) error {
	return s.client.DoJSON(ctx, http.MethodDelete, tokenPath(id), nil, nil)
}
