package models

import (
	"golang.org/x/oauth2"

	"github.com/ufukcicekdev/syncx/internal/shared"
)

// TokenPair is the access/refresh credential pair issued by the backend.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// HasAccess reports whether an access token is present.
func (t TokenPair) HasAccess() bool { return t.Access != "" }

// HasRefresh reports whether a refresh token is present.
func (t TokenPair) HasRefresh() bool { return t.Refresh != "" }

// Token converts the pair to an [oauth2.Token].
//
// Expiry is read from the access token's exp claim when it is a JWT; otherwise it is left zero.
func (t TokenPair) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.Access,
		RefreshToken: t.Refresh,
		TokenType:    "Bearer",
	}
	if exp, ok := shared.AccessTokenExpiry(t.Access); ok {
		tok.Expiry = exp
	}
	return tok
}
