package models

import (
	"strings"

	"github.com/ufukcicekdev/syncx/internal/shared"
)

// APIToken is a long-lived token for external automation such as n8n.
// Token is only populated in the create response.
type APIToken struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Token     string  `json:"token,omitempty"`
	CreatedAt string  `json:"created_at"`
	LastUsed  *string `json:"last_used"`
	IsActive  bool    `json:"is_active"`
}

// APITokenCreate is the create payload.
type APITokenCreate struct {
	Name string `json:"name" validate:"required,max=100"`
}

// Validate trims the name before checking it.
func (c *APITokenCreate) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	return shared.ValidateStruct(c)
}
