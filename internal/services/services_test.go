package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/shared"
	tu "github.com/ufukcicekdev/syncx/internal/testing"
)

type route struct {
	method string
	status int
	body   string
	check  func(t *testing.T, r *http.Request)
}

// newRoutedClient serves canned responses keyed by request path (including the query string).
func newRoutedClient(t *testing.T, routes map[string]route) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		rt, ok := routes[key]
		if !ok {
			t.Errorf("unexpected request %s %s", r.Method, key)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if rt.method != "" && r.Method != rt.method {
			t.Errorf("%s: expected method %s, got %s", key, rt.method, r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("%s: expected bearer token, got %q", key, r.Header.Get("Authorization"))
		}
		if rt.check != nil {
			rt.check(t, r)
		}
		if rt.status != 0 {
			w.WriteHeader(rt.status)
		}
		w.Write([]byte(rt.body))
	}))
	t.Cleanup(server.Close)

	store := tu.NewMemoryCredentialStore(models.TokenPair{Access: "token", Refresh: "refresh"})
	return NewClient(ClientOpts{BaseURL: server.URL, Store: store})
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	return m
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	userJSON := `{"id":1,"email":"ada@example.com","full_name":"Ada","subscription_tier":"starter","is_verified":true}`

	t.Run("Login", func(t *testing.T) {
		client := newRoutedClient(t, map[string]route{
			PathLogin: {method: http.MethodPost, body: `{"access":"a","refresh":"r","user":` + userJSON + `}`, check: func(t *testing.T, r *http.Request) {
				m := decodeBody(t, r)
				if m["email"] != "ada@example.com" || m["password"] != "secret1" {
					t.Errorf("unexpected login body %v", m)
				}
			}},
		})

		out, err := NewAuthService(client).Login(ctx, models.Credentials{Email: "ada@example.com", Password: "secret1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Pair() != (models.TokenPair{Access: "a", Refresh: "r"}) {
			t.Errorf("unexpected pair %+v", out.Pair())
		}
		if out.User.FullName != "Ada" || !out.User.IsVerified {
			t.Errorf("unexpected user %+v", out.User)
		}
	})

	t.Run("Login rejected", func(t *testing.T) {
		client := newRoutedClient(t, map[string]route{
			PathLogin: {status: http.StatusUnauthorized, body: `{"detail":"No active account found with the given credentials"}`},
		})

		_, err := NewAuthService(client).Login(ctx, models.Credentials{Email: "ada@example.com", Password: "wrong12"})
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.Message != "No active account found with the given credentials" {
			t.Errorf("unexpected message %q", apiErr.Message)
		}
	})

	t.Run("Register sends confirmation and tier", func(t *testing.T) {
		client := newRoutedClient(t, map[string]route{
			PathRegister: {method: http.MethodPost, status: http.StatusCreated, body: `{"access":"a","refresh":"r","user":` + userJSON + `}`, check: func(t *testing.T, r *http.Request) {
				m := decodeBody(t, r)
				if m["password_confirm"] != "password1" || m["subscription_tier"] != "starter" {
					t.Errorf("unexpected register body %v", m)
				}
				if _, ok := m["agree_terms"]; ok {
					t.Error("agree_terms must not be sent")
				}
			}},
		})

		reg := models.Registration{FullName: "Ada", Email: "ada@example.com", Password: "password1", PasswordConfirm: "password1", AgreeTerms: true}
		reg.Normalize()
		if _, err := NewAuthService(client).Register(ctx, reg); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("VerifyToken", func(t *testing.T) {
		client := newRoutedClient(t, map[string]route{
			PathTokenVerify: {method: http.MethodPost, status: http.StatusUnauthorized, body: `{"detail":"Token is invalid or expired"}`},
		})

		ok, err := NewAuthService(client).VerifyToken(ctx, "token")
		if err != nil {
			t.Fatalf("rejected token should not be an error, got %v", err)
		}
		if ok {
			t.Error("expected token to be rejected")
		}
	})

	t.Run("Profile", func(t *testing.T) {
		client := newRoutedClient(t, map[string]route{PathProfile: {method: http.MethodGet, body: userJSON}})

		user, err := NewAuthService(client).Profile(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != 1 || user.SubscriptionTier != models.TierStarter {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("Logout", func(t *testing.T) {
		client := newRoutedClient(t, map[string]route{
			PathLogout: {method: http.MethodPost, status: http.StatusNoContent, check: func(t *testing.T, r *http.Request) {
				if decodeBody(t, r)["refresh"] != "refresh-token" {
					t.Error("expected refresh token in logout body")
				}
			}},
		})

		svc := NewAuthService(client)
		if err := svc.Logout(ctx, "refresh-token"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if err := svc.Logout(ctx, ""); err != nil {
			t.Errorf("empty refresh should be a no-op, got %v", err)
		}
	})

	t.Run("Settings", func(t *testing.T) {
		client := newRoutedClient(t, map[string]route{
			PathUser: {method: http.MethodPatch, body: `{"id":1,"email":"ada@example.com","full_name":"Ada L"}`, check: func(t *testing.T, r *http.Request) {
				if decodeBody(t, r)["full_name"] != "Ada L" {
					t.Error("expected full_name in body")
				}
			}},
			PathChangePassword: {method: http.MethodPost, body: `{"message":"ok"}`, check: func(t *testing.T, r *http.Request) {
				m := decodeBody(t, r)
				if m["old_password"] != "old" || m["new_password"] != "newpassword" {
					t.Errorf("unexpected body %v", m)
				}
				if _, ok := m["confirm_password"]; ok {
					t.Error("confirmation must not be sent")
				}
			}},
			PathDeleteAccount: {method: http.MethodDelete, status: http.StatusNoContent},
		})
		svc := NewAuthService(client)

		user, err := svc.UpdateProfile(ctx, models.ProfileUpdate{FullName: "Ada L"})
		if err != nil || user == nil || user.FullName != "Ada L" {
			t.Errorf("unexpected update result %+v, %v", user, err)
		}
		if err := svc.ChangePassword(ctx, models.PasswordChange{OldPassword: "old", NewPassword: "newpassword", ConfirmPassword: "newpassword"}); err != nil {
			t.Errorf("unexpected change password error %v", err)
		}
		if err := svc.DeleteAccount(ctx); err != nil {
			t.Errorf("unexpected delete error %v", err)
		}
	})
}

func TestSocialService(t *testing.T) {
	ctx := context.Background()

	t.Run("Platforms and Accounts", func(t *testing.T) {
		client := newRoutedClient(t, map[string]route{
			PathPlatforms: {body: `[{"id":1,"name":"youtube","display_name":"YouTube","is_active":true}]`},
			PathAccounts:  {body: `{"results":[{"id":9,"platform":{"id":1,"name":"youtube","display_name":"YouTube"},"platform_username":"ada","status":"connected","is_expired":false}]}`},
		})
		svc := NewSocialService(client)

		platforms, err := svc.Platforms(ctx)
		if err != nil || len(platforms) != 1 {
			t.Fatalf("unexpected platforms %+v, %v", platforms, err)
		}
		if kind, err := platforms[0].Kind(); err != nil || kind != models.YouTube {
			t.Errorf("expected YouTube, got %v, %v", kind, err)
		}

		accounts, err := svc.Accounts(ctx)
		if err != nil || len(accounts) != 1 || !accounts[0].Active() {
			t.Fatalf("unexpected accounts %+v, %v", accounts, err)
		}
	})

	t.Run("Connect", func(t *testing.T) {
		client := newRoutedClient(t, map[string]route{
			"/api/social/connect/youtube/":  {method: http.MethodPost, body: `{"authorization_url":"https://accounts.google.com/o/oauth2/auth?x=1"}`},
			"/api/social/connect/tiktok/":   {status: http.StatusBadRequest, body: `{"error":"TikTok OAuth credentials not configured","setup_required":true}`},
			"/api/social/connect/linkedin/": {body: `{}`},
		})
		svc := NewSocialService(client)

		u, err := svc.Connect(ctx, models.YouTube)
		if err != nil || u != "https://accounts.google.com/o/oauth2/auth?x=1" {
			t.Errorf("unexpected connect result %q, %v", u, err)
		}

		_, err = svc.Connect(ctx, models.TikTok)
		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.SetupRequired {
			t.Errorf("expected setup_required API error, got %v", err)
		}

		_, err = svc.Connect(ctx, models.LinkedIn)
		if !errors.Is(err, shared.ErrConnectFailed) {
			t.Errorf("expected ErrConnectFailed for missing URL, got %v", err)
		}
	})

	t.Run("Callback and Disconnect", func(t *testing.T) {
		client := newRoutedClient(t, map[string]route{
			"/api/social/callback/instagram/": {method: http.MethodPost, body: `{"message":"connected"}`, check: func(t *testing.T, r *http.Request) {
				m := decodeBody(t, r)
				if m["code"] != "c" || m["state"] != "s" {
					t.Errorf("unexpected callback body %v", m)
				}
			}},
			"/api/social/disconnect/9/": {method: http.MethodDelete, body: `{"message":"disconnected"}`},
		})
		svc := NewSocialService(client)

		if err := svc.Callback(ctx, models.Instagram, "c", "s"); err != nil {
			t.Errorf("unexpected callback error %v", err)
		}
		if err := svc.Disconnect(ctx, 9); err != nil {
			t.Errorf("unexpected disconnect error %v", err)
		}
	})
}

func TestTokenService(t *testing.T) {
	ctx := context.Background()
	client := newRoutedClient(t, map[string]route{
		PathTokens:       {body: `{"results":[{"id":1,"name":"n8n","created_at":"2024-01-01T00:00:00Z","last_used":null,"is_active":true}]}`},
		"/api/tokens/1/": {method: http.MethodDelete, status: http.StatusNoContent},
	})
	svc := NewTokenService(client)

	tokens, err := svc.List(ctx)
	if err != nil || len(tokens) != 1 || tokens[0].LastUsed != nil {
		t.Fatalf("unexpected tokens %+v, %v", tokens, err)
	}
	if err := svc.Revoke(ctx, 1); err != nil {
		t.Errorf("unexpected revoke error %v", err)
	}

	t.Run("Create", func(t *testing.T) {
		client := newRoutedClient(t, map[string]route{
			PathTokens: {method: http.MethodPost, status: http.StatusCreated, body: `{"id":2,"token":"sct_secret"}`, check: func(t *testing.T, r *http.Request) {
				if decodeBody(t, r)["name"] != "automation" {
					t.Error("expected trimmed name in body")
				}
			}},
		})

		tok, err := NewTokenService(client).Create(ctx, models.APITokenCreate{Name: " automation "})
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if tok.Token != "sct_secret" || tok.Name != "automation" {
			t.Errorf("unexpected token %+v", tok)
		}
	})

	t.Run("Create validates before sending", func(t *testing.T) {
		_, err := NewTokenService(NewClient(ClientOpts{BaseURL: "http://backend.invalid"})).Create(ctx, models.APITokenCreate{})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestAnalyticsAndVideos(t *testing.T) {
	ctx := context.Background()
	client := newRoutedClient(t, map[string]route{
		PathAnalytics:                          {body: `[{"id":1,"account_id":9,"platform_name":"youtube","subscriber_count":1500,"last_updated":"2024-01-01T00:00:00Z"}]`},
		"/api/social/analytics/9/":             {body: `{"id":1,"account_id":9,"platform_name":"youtube"}`},
		"/api/social/analytics/9/detailed/":    {body: `{"id":1,"account_id":9,"platform_name":"youtube","recent_videos":[{"video_id":"v1","title":"T"}],"growth_metrics":{"subscriber_growth":1.5}}`},
		"/api/social/analytics/9/refresh/":     {method: http.MethodPost, body: `{"message":"refreshed"}`},
		"/api/social/videos/9/?max_results=20": {body: `[{"video_id":"v1","title":"T"}]`},
		"/api/social/videos/9/v1/":             {body: `{"video_id":"v1","title":"T","tags":["a"]}`},
		"/api/social/videos/9/v1/update/": {method: http.MethodPut, body: `{"message":"ok"}`, check: func(t *testing.T, r *http.Request) {
			m := decodeBody(t, r)
			if m["title"] != "New" || m["privacy_status"] != "unlisted" {
				t.Errorf("unexpected update body %v", m)
			}
		}},
		"/api/social/youtube/9/categories/": {status: http.StatusUnauthorized, body: `{}`},
		"/api/social/youtube/9/languages/":  {body: `[{"code":"en","name":"English"}]`},
	})
	analytics := NewAnalyticsService(client)
	videos := NewVideoService(client)

	list, err := analytics.List(ctx)
	if err != nil || len(list) != 1 || *list[0].SubscriberCount != 1500 {
		t.Fatalf("unexpected analytics %+v, %v", list, err)
	}
	if a, err := analytics.Account(ctx, 9); err != nil || a.AccountID != 9 {
		t.Errorf("unexpected account analytics %+v, %v", a, err)
	}
	d, err := analytics.Detailed(ctx, 9)
	if err != nil || len(d.RecentVideos) != 1 || d.GrowthMetrics.SubscriberGrowth != 1.5 {
		t.Errorf("unexpected detailed analytics %+v, %v", d, err)
	}
	if err := analytics.Refresh(ctx, 9); err != nil {
		t.Errorf("unexpected refresh error %v", err)
	}

	vids, err := videos.List(ctx, 9, 0)
	if err != nil || len(vids) != 1 {
		t.Errorf("unexpected videos %+v, %v", vids, err)
	}
	v, err := videos.Get(ctx, 9, "v1")
	if err != nil || v.Tags[0] != "a" {
		t.Fatalf("unexpected video %+v, %v", v, err)
	}

	update := v.Update()
	update.Title = "New"
	update.PrivacyStatus = models.PrivacyUnlisted
	if err := videos.Update(ctx, 9, "v1", update); err != nil {
		t.Errorf("unexpected update error %v", err)
	}

	update.Title = ""
	if err := videos.Update(ctx, 9, "v1", update); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected validation error, got %v", err)
	}

	cats, fallback := videos.CategoriesOrDefault(ctx, 9)
	if !fallback || len(cats) != len(models.DefaultCategories()) {
		t.Errorf("expected default categories, got %d (fallback=%v)", len(cats), fallback)
	}
	langs, fallback := videos.LanguagesOrDefault(ctx, 9)
	if fallback || len(langs) != 1 {
		t.Errorf("expected backend languages, got %d (fallback=%v)", len(langs), fallback)
	}
}
