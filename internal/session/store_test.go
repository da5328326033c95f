package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/services"
	"github.com/ufukcicekdev/syncx/internal/shared"
	tu "github.com/ufukcicekdev/syncx/internal/testing"
)

const userJSON = `{"id":7,"email":"ada@example.com","full_name":"Ada Lovelace","subscription_tier":"professional","is_verified":true}`

// backend is a scripted auth API. Handlers left nil respond 404.
type backend struct {
	mu       sync.Mutex
	calls    map[string]int
	handlers map[string]http.HandlerFunc
	bearers  map[string]string
}

func newBackend() *backend {
	return &backend{calls: map[string]int{}, handlers: map[string]http.HandlerFunc{}, bearers: map[string]string{}}
}

func (b *backend) handle(path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[path] = h
}

func (b *backend) on(path string, status int, body string) {
	b.handle(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *backend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int
	for _, c := range b.calls {
		n += c
	}
	return n
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls[r.URL.Path]++
	b.bearers[r.URL.Path] = r.Header.Get("Authorization")
	h := b.handlers[r.URL.Path]
	b.mu.Unlock()

	if h == nil {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

type fixture struct {
	store   *Store
	backend *backend
	creds   *tu.MemoryCredentialStore
	repo    *tu.MemorySessionRepository
	nav     *tu.RecordingNavigator
}

func newFixture(t *testing.T, pair models.TokenPair, snap models.SessionSnapshot) *fixture {
	t.Helper()
	b := newBackend()
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)

	creds := tu.NewMemoryCredentialStore(pair)
	repo := tu.NewMemorySessionRepository(snap)
	nav := &tu.RecordingNavigator{}
	client := services.NewClient(services.ClientOpts{BaseURL: server.URL, Store: creds, Navigator: nav})

	store, err := NewStore(context.Background(), StoreOpts{Auth: services.NewAuthService(client), Repo: repo})
	require.NoError(t, err)
	return &fixture{store: store, backend: b, creds: creds, repo: repo, nav: nav}
}

func TestNewStore(t *testing.T) {
	t.Run("Hydrates persisted user", func(t *testing.T) {
		user := &models.User{ID: 1, Email: "ada@example.com"}
		f := newFixture(t, models.TokenPair{Access: "a"}, models.SessionSnapshot{User: user, IsAuthenticated: true})

		st := f.store.State()
		assert.True(t, st.IsAuthenticated)
		require.NotNil(t, st.User)
		assert.Equal(t, "ada@example.com", st.User.Email)
		assert.False(t, st.IsLoading)
		assert.Empty(t, st.Error)
		assert.Equal(t, PhaseAuthenticated, st.Phase())
	})

	t.Run("Ignores authenticated flag without user", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{}, models.SessionSnapshot{IsAuthenticated: true})
		assert.False(t, f.store.State().IsAuthenticated)
	})

	t.Run("Requires auth service", func(t *testing.T) {
		_, err := NewStore(context.Background(), StoreOpts{})
		assert.ErrorIs(t, err, shared.ErrInvalidConfig)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	creds := models.Credentials{Email: "ada@example.com", Password: "secret1"}

	t.Run("Success stores tokens and user", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{}, models.SessionSnapshot{})
		f.backend.on(services.PathLogin, http.StatusOK, `{"access":"acc","refresh":"ref","user":`+userJSON+`}`)

		require.NoError(t, f.store.Login(ctx, creds))

		st := f.store.State()
		assert.True(t, st.IsAuthenticated)
		assert.False(t, st.IsLoading)
		assert.Empty(t, st.Error)
		assert.Equal(t, "Ada Lovelace", st.User.FullName)
		assert.Equal(t, models.TokenPair{Access: "acc", Refresh: "ref"}, f.creds.Pair())

		snap := f.repo.Snapshot()
		assert.True(t, snap.IsAuthenticated)
		require.NotNil(t, snap.User)
		assert.Equal(t, int64(7), snap.User.ID)
	})

	t.Run("Failure records backend detail and keeps prior state", func(t *testing.T) {
		prior := &models.User{ID: 1, Email: "old@example.com"}
		f := newFixture(t, models.TokenPair{Access: "old"}, models.SessionSnapshot{User: prior, IsAuthenticated: true})
		f.backend.on(services.PathLogin, http.StatusUnauthorized, `{"detail":"No active account found with the given credentials"}`)

		err := f.store.Login(ctx, creds)
		require.Error(t, err)

		st := f.store.State()
		assert.Equal(t, "No active account found with the given credentials", st.Error)
		assert.False(t, st.IsLoading)
		assert.True(t, st.IsAuthenticated)
		assert.Equal(t, "old@example.com", st.User.Email)
		assert.Equal(t, "old", f.creds.Pair().Access)
		assert.Zero(t, f.backend.count(services.PathTokenRefresh), "login 401 must not refresh")
	})

	t.Run("Failure without message uses fallback", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{}, models.SessionSnapshot{})
		f.backend.on(services.PathLogin, http.StatusInternalServerError, `<html>oops</html>`)

		require.Error(t, f.store.Login(ctx, creds))
		assert.Equal(t, MsgLoginFailed, f.store.State().Error)
	})

	t.Run("Unreachable backend reports the network message", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()

		creds := tu.NewMemoryCredentialStore(models.TokenPair{})
		client := services.NewClient(services.ClientOpts{BaseURL: server.URL, Store: creds})
		store, err := NewStore(ctx, StoreOpts{Auth: services.NewAuthService(client)})
		require.NoError(t, err)

		err = store.Login(ctx, models.Credentials{Email: "ada@example.com", Password: "secret1"})
		require.ErrorIs(t, err, shared.ErrNetwork)

		st := store.State()
		assert.Equal(t, shared.ErrNetwork.Error(), st.Error)
		assert.False(t, st.IsLoading)
		assert.False(t, st.IsAuthenticated)
	})

	t.Run("Loading is observed and reset", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{}, models.SessionSnapshot{})
		f.backend.on(services.PathLogin, http.StatusOK, `{"access":"acc","refresh":"ref","user":`+userJSON+`}`)

		var phases []Phase
		unsubscribe := f.store.Subscribe(func(s State) { phases = append(phases, s.Phase()) })

		require.NoError(t, f.store.Login(ctx, creds))
		unsubscribe()
		f.store.ClearError()

		require.NotEmpty(t, phases)
		assert.Equal(t, PhaseLoading, phases[0])
		assert.Equal(t, PhaseAuthenticated, phases[len(phases)-1])
		assert.Len(t, phases, 3)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	valid := models.Registration{
		FullName:        "Ada Lovelace",
		Email:           "ada@example.com",
		Password:        "password1",
		PasswordConfirm: "password1",
		AgreeTerms:      true,
	}

	t.Run("Password mismatch never reaches the backend", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{}, models.SessionSnapshot{})
		reg := valid
		reg.PasswordConfirm = "different"

		err := f.store.Register(ctx, reg)
		require.ErrorIs(t, err, shared.ErrInvalidInput)

		var verrs shared.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "password_confirm")
		assert.Zero(t, f.backend.total())
		assert.False(t, f.store.State().IsAuthenticated)
		assert.NotEmpty(t, f.store.State().Error)
	})

	t.Run("Lists every failing field", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{}, models.SessionSnapshot{})

		err := f.store.Register(ctx, models.Registration{FullName: "A", Email: "nope", Password: "short", PasswordConfirm: "x", Tier: "gold"})
		var verrs shared.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		for _, field := range []string{"full_name", "email", "password", "password_confirm", "subscription_tier", "agree_terms"} {
			assert.Contains(t, verrs, field)
		}
	})

	t.Run("Success defaults the tier", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{}, models.SessionSnapshot{})
		var tier atomic.Value
		f.backend.handle(services.PathRegister, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			tier.Store(body["subscription_tier"])
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"access":"acc","refresh":"ref","user":` + userJSON + `}`))
		})

		require.NoError(t, f.store.Register(ctx, valid))
		assert.Equal(t, "starter", tier.Load())
		assert.True(t, f.store.State().IsAuthenticated)
		assert.Equal(t, "acc", f.creds.Pair().Access)
	})

	t.Run("Backend field error becomes the message", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{}, models.SessionSnapshot{})
		f.backend.on(services.PathRegister, http.StatusBadRequest, `{"email":["user with this email already exists."]}`)

		require.Error(t, f.store.Register(ctx, valid))
		assert.Equal(t, "email: user with this email already exists.", f.store.State().Error)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: 1, Email: "ada@example.com"}

	t.Run("Clears locally even when the backend fails", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{Access: "acc", Refresh: "ref"}, models.SessionSnapshot{User: user, IsAuthenticated: true})
		f.backend.on(services.PathLogout, http.StatusInternalServerError, `{"detail":"boom"}`)

		done := f.store.Logout(ctx)

		assert.False(t, f.creds.Pair().HasAccess(), "tokens must be cleared before the backend answers")
		assert.False(t, f.store.State().IsAuthenticated)
		assert.Nil(t, f.store.State().User)
		assert.False(t, f.repo.Snapshot().IsAuthenticated)

		assert.Error(t, <-done)
		f.store.Wait()
		assert.False(t, f.store.State().IsAuthenticated)
		assert.Empty(t, f.nav.Routes())
	})

	t.Run("Revokes with the captured tokens", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{Access: "acc", Refresh: "ref"}, models.SessionSnapshot{User: user, IsAuthenticated: true})
		var refresh atomic.Value
		f.backend.handle(services.PathLogout, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			refresh.Store(body["refresh"])
			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, <-f.store.Logout(ctx))
		assert.Equal(t, "ref", refresh.Load())
		f.backend.mu.Lock()
		assert.Equal(t, "Bearer acc", f.backend.bearers[services.PathLogout])
		f.backend.mu.Unlock()
	})

	t.Run("Without tokens skips the backend", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{}, models.SessionSnapshot{})
		require.NoError(t, <-f.store.Logout(ctx))
		assert.Zero(t, f.backend.total())
	})
}

func TestCheckAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("No token is unauthenticated without a request", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{}, models.SessionSnapshot{User: &models.User{ID: 1}, IsAuthenticated: true})

		assert.False(t, f.store.CheckAuth(ctx))
		assert.Zero(t, f.backend.total())
		assert.False(t, f.store.State().IsAuthenticated)
		assert.Nil(t, f.store.State().User)
	})

	t.Run("Valid token loads the profile and is idempotent", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{Access: "acc", Refresh: "ref"}, models.SessionSnapshot{})
		f.backend.on(services.PathTokenVerify, http.StatusOK, `{}`)
		f.backend.on(services.PathProfile, http.StatusOK, userJSON)

		require.True(t, f.store.CheckAuth(ctx))
		first := f.store.State()
		require.True(t, f.store.CheckAuth(ctx))
		second := f.store.State()

		assert.Equal(t, first, second)
		assert.Equal(t, models.TierProfessional, second.User.SubscriptionTier)
		assert.False(t, second.IsLoading)
		assert.Equal(t, "acc", f.creds.Pair().Access)
	})

	t.Run("Invalid token without refresh clears everything", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{Access: "acc"}, models.SessionSnapshot{User: &models.User{ID: 1}, IsAuthenticated: true})
		f.backend.on(services.PathTokenVerify, http.StatusUnauthorized, `{"detail":"Token is invalid or expired"}`)

		assert.False(t, f.store.CheckAuth(ctx))
		assert.False(t, f.store.State().IsAuthenticated)
		assert.False(t, f.creds.Pair().HasAccess())
		assert.False(t, f.repo.Snapshot().IsAuthenticated)
		assert.Zero(t, f.backend.count(services.PathProfile))
	})

	t.Run("Expired token is refreshed once", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{Access: "old", Refresh: "ref"}, models.SessionSnapshot{})
		f.backend.handle(services.PathTokenVerify, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["token"] != "new" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
				return
			}
			w.Write([]byte(`{}`))
		})
		f.backend.on(services.PathTokenRefresh, http.StatusOK, `{"access":"new"}`)
		f.backend.on(services.PathProfile, http.StatusOK, userJSON)

		assert.True(t, f.store.CheckAuth(ctx))
		assert.Equal(t, 1, f.backend.count(services.PathTokenRefresh))
		assert.Equal(t, models.TokenPair{Access: "new", Refresh: "ref"}, f.creds.Pair())
	})

	t.Run("Network failure clears the session", func(t *testing.T) {
		creds := tu.NewMemoryCredentialStore(models.TokenPair{Access: "acc"})
		client := services.NewClient(services.ClientOpts{BaseURL: "http://127.0.0.1:1", Store: creds})
		store, err := NewStore(ctx, StoreOpts{Auth: services.NewAuthService(client)})
		require.NoError(t, err)

		assert.False(t, store.CheckAuth(ctx))
		assert.False(t, creds.Pair().HasAccess())
	})
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: 7, Email: "ada@example.com", FullName: "Ada"}

	t.Run("UpdateProfile uses the returned user", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{Access: "acc"}, models.SessionSnapshot{User: user, IsAuthenticated: true})
		f.backend.on(services.PathUser, http.StatusOK, userJSON)

		require.NoError(t, f.store.UpdateProfile(ctx, models.ProfileUpdate{FullName: "Ada Lovelace"}))
		assert.Equal(t, "Ada Lovelace", f.store.State().User.FullName)
		assert.Equal(t, "Ada Lovelace", f.repo.Snapshot().User.FullName)
	})

	t.Run("UpdateProfile falls back to CheckAuth", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{Access: "acc"}, models.SessionSnapshot{User: user, IsAuthenticated: true})
		f.backend.on(services.PathUser, http.StatusOK, `{"message":"Profile updated"}`)
		f.backend.on(services.PathTokenVerify, http.StatusOK, `{}`)
		f.backend.on(services.PathProfile, http.StatusOK, userJSON)

		require.NoError(t, f.store.UpdateProfile(ctx, models.ProfileUpdate{FullName: "Ada Lovelace"}))
		assert.Equal(t, 1, f.backend.count(services.PathProfile))
		assert.Equal(t, "Ada Lovelace", f.store.State().User.FullName)
	})

	t.Run("ChangePassword validates confirmation locally", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{Access: "acc"}, models.SessionSnapshot{User: user, IsAuthenticated: true})

		err := f.store.ChangePassword(ctx, models.PasswordChange{OldPassword: "old", NewPassword: "newpassword", ConfirmPassword: "other"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Zero(t, f.backend.total())
	})

	t.Run("DeleteAccount signs out", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{Access: "acc", Refresh: "ref"}, models.SessionSnapshot{User: user, IsAuthenticated: true})
		f.backend.on(services.PathDeleteAccount, http.StatusNoContent, ``)
		f.backend.on(services.PathLogout, http.StatusOK, `{}`)

		require.NoError(t, f.store.DeleteAccount(ctx))
		f.store.Wait()
		assert.False(t, f.store.State().IsAuthenticated)
		assert.False(t, f.creds.Pair().HasRefresh())
	})

	t.Run("DeleteAccount failure keeps the session", func(t *testing.T) {
		f := newFixture(t, models.TokenPair{Access: "acc", Refresh: "ref"}, models.SessionSnapshot{User: user, IsAuthenticated: true})
		f.backend.on(services.PathDeleteAccount, http.StatusBadRequest, `{"error":"Cannot delete"}`)

		require.Error(t, f.store.DeleteAccount(ctx))
		assert.True(t, f.store.State().IsAuthenticated)
		assert.Equal(t, "Cannot delete", f.store.State().Error)
	})
}
