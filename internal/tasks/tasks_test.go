package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/services"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

type mockSocial struct {
	mu            sync.Mutex
	platforms     []models.SocialPlatform
	accounts      []models.ConnectedAccount
	platformsErr  error
	accountsErr   error
	connectURL    string
	connectErr    error
	callbackErr   error
	disconnectErr error
	callbacks     []string
	disconnected  []int64
}

func (m *mockSocial) Platforms(context.Context) ([]models.SocialPlatform, error) {
	return m.platforms, m.platformsErr
}

func (m *mockSocial) Accounts(context.Context) ([]models.ConnectedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts, m.accountsErr
}

func (m *mockSocial) Connect(_ context.Context, p models.Platform) (string, error) {
	return m.connectURL, m.connectErr
}

func (m *mockSocial) Callback(_ context.Context, p models.Platform, code, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fmt.Sprintf("%s:%s:%s", p, code, state))
	return m.callbackErr
}

func (m *mockSocial) Disconnect(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disconnectErr != nil {
		return m.disconnectErr
	}
	m.disconnected = append(m.disconnected, id)
	kept := m.accounts[:0:0]
	for _, a := range m.accounts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	m.accounts = kept
	return nil
}

func (m *mockSocial) callbackCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.callbacks)
}

func account(id int64, platform string) models.ConnectedAccount {
	return models.ConnectedAccount{
		ID:               id,
		Platform:         models.SocialPlatform{Name: platform},
		PlatformUsername: fmt.Sprintf("user%d", id),
		Status:           models.StatusConnected,
	}
}

func TestEngine_LoadDashboard(t *testing.T) {
	ctx := context.Background()
	platforms := []models.SocialPlatform{{ID: 1, Name: "youtube"}, {ID: 2, Name: "instagram"}}
	accounts := []models.ConnectedAccount{account(10, "youtube"), account(11, "youtube"), account(12, "instagram")}

	tests := []struct {
		name          string
		social        *mockSocial
		wantPlatforms int
		wantAccounts  int
		wantErr       error
	}{
		{
			name:          "both succeed",
			social:        &mockSocial{platforms: platforms, accounts: accounts},
			wantPlatforms: 2,
			wantAccounts:  3,
		},
		{
			name:         "platforms fail, accounts kept",
			social:       &mockSocial{platformsErr: shared.ErrNetwork, accounts: accounts},
			wantAccounts: 3,
			wantErr:      shared.ErrNetwork,
		},
		{
			name:          "accounts fail, platforms kept",
			social:        &mockSocial{platforms: platforms, accountsErr: shared.ErrServiceUnavailable},
			wantPlatforms: 2,
			wantErr:       shared.ErrServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := make(chan ProgressUpdate, 10)
			d, err := NewEngine(tt.social, nil, nil).LoadDashboard(ctx, progress)
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if len(d.Platforms) != tt.wantPlatforms {
				t.Errorf("expected %d platforms, got %d", tt.wantPlatforms, len(d.Platforms))
			}
			if len(d.Accounts) != tt.wantAccounts {
				t.Errorf("expected %d accounts, got %d", tt.wantAccounts, len(d.Accounts))
			}
			if !errors.Is(d.Err(), tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, d.Err())
			}
			if len(progress) != 2 {
				t.Errorf("expected 2 progress updates, got %d", len(progress))
			}
		})
	}

	t.Run("Without service", func(t *testing.T) {
		if _, err := NewEngine(nil, nil, nil).LoadDashboard(ctx, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestDashboard(t *testing.T) {
	d := &Dashboard{Accounts: []models.ConnectedAccount{account(10, "youtube"), account(11, "youtube"), account(12, "twitter")}}

	t.Run("IsConnected", func(t *testing.T) {
		if !d.IsConnected("youtube") || !d.IsConnected("twitter") {
			t.Error("expected youtube and twitter to be connected")
		}
		if d.IsConnected("tiktok") {
			t.Error("tiktok should not be connected")
		}
	})

	t.Run("AccountsFor", func(t *testing.T) {
		yt := d.AccountsFor(models.YouTube)
		if len(yt) != 2 || yt[0].ID != 10 || yt[1].ID != 11 {
			t.Errorf("unexpected youtube accounts %+v", yt)
		}
		if len(d.AccountsFor(models.LinkedIn)) != 0 {
			t.Error("expected no linkedin accounts")
		}
	})

	t.Run("Account", func(t *testing.T) {
		if a, ok := d.Account(12); !ok || a.Platform.Name != "twitter" {
			t.Errorf("unexpected account lookup %+v, %v", a, ok)
		}
		if _, ok := d.Account(99); ok {
			t.Error("expected missing account")
		}
	})
}

func TestEngine_Disconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("Refetches after disconnect", func(t *testing.T) {
		social := &mockSocial{accounts: []models.ConnectedAccount{account(10, "youtube"), account(12, "instagram")}}

		d, err := NewEngine(social, nil, nil).Disconnect(ctx, nil, 10)
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if len(d.Accounts) != 1 || d.Accounts[0].ID != 12 {
			t.Errorf("expected refetched accounts without 10, got %+v", d.Accounts)
		}
	})

	t.Run("Failure skips the refetch", func(t *testing.T) {
		social := &mockSocial{disconnectErr: shared.ErrAPIRequest}
		if _, err := NewEngine(social, nil, nil).Disconnect(ctx, nil, 10); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestConnectFlow_Initiate(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns authorization URL", func(t *testing.T) {
		flow := NewConnectFlow(&mockSocial{connectURL: "https://provider.example/auth"})
		u, err := flow.Initiate(ctx, models.YouTube)
		if err != nil || u != "https://provider.example/auth" {
			t.Errorf("unexpected result %q, %v", u, err)
		}
	})

	tests := []struct {
		name      string
		err       error
		message   string
		setup     bool
		wantCause error
	}{
		{
			name:      "setup required",
			err:       &services.APIError{StatusCode: http.StatusBadRequest, Message: "TikTok OAuth credentials not configured", SetupRequired: true},
			message:   "TikTok OAuth credentials not configured",
			setup:     true,
			wantCause: shared.ErrAPIRequest,
		},
		{
			name:      "backend error without message",
			err:       &services.APIError{StatusCode: http.StatusInternalServerError},
			message:   MsgConnectUnknown,
			wantCause: shared.ErrAPIRequest,
		},
		{
			name:      "network error",
			err:       fmt.Errorf("%w: dial tcp: refused", shared.ErrNetwork),
			message:   MsgConnectNetwork,
			wantCause: shared.ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := NewConnectFlow(&mockSocial{connectErr: tt.err})
			_, err := flow.Initiate(ctx, models.TikTok)

			var cerr *ConnectError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConnectError, got %v", err)
			}
			if cerr.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, cerr.Message)
			}
			if cerr.SetupRequired != tt.setup {
				t.Errorf("expected setup_required %v", tt.setup)
			}
			if cerr.Platform != models.TikTok {
				t.Errorf("expected TikTok, got %v", cerr.Platform)
			}
			if !errors.Is(err, tt.wantCause) {
				t.Errorf("expected %v in chain", tt.wantCause)
			}

			setupURL, steps := cerr.Remediation()
			if setupURL != "https://developers.tiktok.com/" || len(steps) == 0 {
				t.Errorf("unexpected remediation %q %v", setupURL, steps)
			}
		})
	}

	t.Run("Invalid platform", func(t *testing.T) {
		if _, err := NewConnectFlow(&mockSocial{}).Initiate(ctx, models.Platform(99)); !errors.Is(err, shared.ErrUnknownPlatform) {
			t.Errorf("expected ErrUnknownPlatform, got %v", err)
		}
	})
}
