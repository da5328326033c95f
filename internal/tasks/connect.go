package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/services"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

// Messages shown when starting a connection fails.
const (
	MsgConnectNetwork = "Network error while connecting. Please try again."
	MsgConnectUnknown = "Unknown error occurred"
)

// ConnectError is a failed attempt to start the OAuth flow for a platform.
type ConnectError struct {
	Platform      models.Platform
	Message       string
	SetupRequired bool // SetupRequired means the backend has no OAuth credentials for the platform
	Err           error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s connection failed: %s", e.Platform.DisplayName(), e.Message)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Remediation returns the setup URL and steps for the platform.
func (e *ConnectError) Remediation() (url string, steps []string) {
	info := e.Platform.Info()
	return info.SetupURL, info.SetupSteps
}

// ConnectFlow starts OAuth connections.
type ConnectFlow struct {
	social SocialAPI
}

// NewConnectFlow creates a [ConnectFlow].
func NewConnectFlow(social SocialAPI) *ConnectFlow {
	return &ConnectFlow{social: social}
}

// Initiate asks the backend for the provider authorization URL. The caller opens it in a browser.
//
// Every failure is a [*ConnectError].
func (f *ConnectFlow) Initiate(ctx context.Context, p models.Platform) (string, error) {
	if !p.Valid() {
		return "", fmt.Errorf("%w: %d", shared.ErrUnknownPlatform, int(p))
	}

	authURL, err := f.social.Connect(ctx, p)
	if err == nil {
		return authURL, nil
	}

	cerr := &ConnectError{Platform: p, Message: MsgConnectUnknown, Err: err}
	var apiErr *services.APIError
	switch {
	case errors.As(err, &apiErr):
		cerr.Message = apiErr.MessageOr(MsgConnectUnknown)
		cerr.SetupRequired = apiErr.SetupRequired
	case errors.Is(err, shared.ErrNetwork):
		cerr.Message = MsgConnectNetwork
	}
	return "", cerr
}
