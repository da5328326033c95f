package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/services"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

// Fallback messages shown when the backend does not supply one.
const (
	MsgLoginFailed    = "Login failed. Please try again."
	MsgRegisterFailed = "Registration failed. Please try again."
	MsgProfileFailed  = "Failed to update profile."
	MsgPasswordFailed = "Failed to change password."
	MsgDeleteFailed   = "Failed to delete account."
)

// Phase is the coarse authentication state. Loading overlays the other two.
type Phase int

const (
	PhaseUnauthenticated Phase = iota
	PhaseLoading
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// State is a copy of the session. User is nil exactly when IsAuthenticated is false.
type State struct {
	User            *models.User
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// Phase reports the state's place in the unauthenticated/loading/authenticated machine.
func (s State) Phase() Phase {
	switch {
	case s.IsLoading:
		return PhaseLoading
	case s.IsAuthenticated:
		return PhaseAuthenticated
	default:
		return PhaseUnauthenticated
	}
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (s State) snapshot() models.SessionSnapshot {
	c := s.clone()
	return models.SessionSnapshot{User: c.User, IsAuthenticated: c.IsAuthenticated}
}

// StoreOpts configures a [Store].
type StoreOpts struct {
	Auth        *services.AuthService
	Credentials models.CredentialStore   // Credentials defaults to the client's store
	Repo        models.SessionRepository // Repo may be nil to keep the session in memory only
	Logger      *log.Logger
}

// Store is the process-wide session. Methods are safe for concurrent use;
// subscribers are notified outside the lock.
type Store struct {
	mu    sync.Mutex
	state State

	auth   *services.AuthService
	creds  models.CredentialStore
	repo   models.SessionRepository
	logger atomic.Pointer[log.Logger]

	subs    map[int]func(State)
	nextSub int

	background sync.WaitGroup
}

// NewStore creates a [Store] hydrated from opts.Repo.
//
// A snapshot that cannot be read is logged and treated as signed out.
func NewStore(ctx context.Context, opts StoreOpts) (*Store, error) {
	if opts.Auth == nil {
		return nil, fmt.Errorf("%w: session store needs an auth service", shared.ErrInvalidConfig)
	}

	s := &Store{
		auth:  opts.Auth,
		creds: opts.Credentials,
		repo:  opts.Repo,
		subs:  make(map[int]func(State)),
	}
	s.SetLogger(opts.Logger)
	if s.creds == nil {
		s.creds = opts.Auth.Client().Store()
	}
	if s.creds == nil {
		return nil, fmt.Errorf("%w: session store needs a credential store", shared.ErrInvalidConfig)
	}

	if s.repo != nil {
		snap, err := s.repo.Load(ctx)
		if err != nil {
			s.logger.Load().Warn("failed to load session, starting signed out", "err", err)
		} else if snap.IsAuthenticated && snap.User != nil {
			s.state = State{User: snap.User, IsAuthenticated: true}
		}
	}
	return s, nil
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive the state after every change. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Login authenticates with email and password.
//
// On failure the error message is recorded in the state and the previous user is left untouched.
func (s *Store) Login(ctx context.Context, creds models.Credentials) error {
	s.begin()
	defer s.finish()

	resp, err := s.auth.Login(ctx, creds)
	if err != nil {
		s.logger.Load().Warn("login failed", "email", creds.Email, "err", err)
		s.fail(err, MsgLoginFailed)
		return err
	}
	if err := s.authenticate(ctx, resp); err != nil {
		s.fail(err, MsgLoginFailed)
		return err
	}
	s.logger.Load().Info("logged in", "user", resp.User.Email)
	return nil
}

// Register creates an account and signs in with it.
//
// The form is validated locally first; a [shared.ValidationErrors] is returned without contacting the backend.
func (s *Store) Register(ctx context.Context, reg models.Registration) error {
	reg.Normalize()
	if err := reg.Validate(); err != nil {
		s.update(func(st *State) { st.Error = err.Error() })
		return err
	}

	s.begin()
	defer s.finish()

	resp, err := s.auth.Register(ctx, reg)
	if err != nil {
		s.logger.Load().Warn("registration failed", "email", reg.Email, "err", err)
		s.fail(err, MsgRegisterFailed)
		return err
	}
	if err := s.authenticate(ctx, resp); err != nil {
		s.fail(err, MsgRegisterFailed)
		return err
	}
	s.logger.Load().Info("registered", "user", resp.User.Email, "tier", reg.Tier)
	return nil
}

// Logout clears the local session immediately and revokes the refresh token in the background.
//
// The returned channel receives the backend result and is then closed. Its error never affects local state.
func (s *Store) Logout(ctx context.Context) <-chan error {
	pair, err := s.creds.Tokens(ctx)
	if err != nil {
		s.logger.Load().Warn("failed to read credentials during logout", "err", err)
	}

	s.update(func(st *State) { *st = State{} })
	s.clearTokens(ctx)
	s.persist(ctx)

	done := make(chan error, 1)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer close(done)

		bg := services.WithAccessToken(context.WithoutCancel(ctx), pair.Access)
		err := s.auth.Logout(bg, pair.Refresh)
		if err != nil {
			s.logger.Load().Warn("backend logout failed", "err", err)
		}
		done <- err
	}()
	return done
}

// SetLogger replaces the store's logger. A nil logger discards output.
func (s *Store) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	s.logger.Store(l)
}

// Wait blocks until background logout calls finish.
func (s *Store) Wait() { s.background.Wait() }

// CheckAuth verifies the stored access token and loads the profile.
//
// An access token the backend rejects is refreshed once before giving up. Any failure leaves the
// session signed out with no tokens. Calling it repeatedly yields the same state.
func (s *Store) CheckAuth(ctx context.Context) bool {
	pair, err := s.creds.Tokens(ctx)
	if err != nil || !pair.HasAccess() {
		if err != nil {
			s.logger.Load().Warn("failed to read credentials", "err", err)
		}
		s.signOut(ctx)
		return false
	}

	s.begin()
	defer s.finish()

	valid, err := s.auth.VerifyToken(ctx, pair.Access)
	if err == nil && !valid && pair.HasRefresh() {
		s.logger.Load().Debug("access token rejected, refreshing")
		if access, rerr := s.auth.Client().Refresh(ctx); rerr == nil {
			valid, err = s.auth.VerifyToken(ctx, access)
		}
	}
	if err != nil || !valid {
		s.logger.Load().Info("session is no longer valid", "err", err)
		s.signOut(ctx)
		return false
	}

	user, err := s.auth.Profile(ctx)
	if err != nil {
		s.logger.Load().Warn("failed to load profile", "err", err)
		s.signOut(ctx)
		return false
	}

	s.update(func(st *State) {
		st.User = user
		st.IsAuthenticated = true
	})
	s.persist(ctx)
	return true
}

// ClearError resets the error message.
func (s *Store) ClearError() {
	s.update(func(st *State) { st.Error = "" })
}

// UpdateProfile renames the account and refreshes the stored user.
func (s *Store) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	user, err := s.auth.UpdateProfile(ctx, update)
	if err != nil {
		s.fail(err, MsgProfileFailed)
		return err
	}
	if user == nil {
		if !s.CheckAuth(ctx) {
			return shared.ErrNotAuthenticated
		}
		return nil
	}

	s.update(func(st *State) {
		if st.IsAuthenticated {
			st.User = user
		}
	})
	s.persist(ctx)
	return nil
}

// ChangePassword checks the confirmation locally and changes the password.
func (s *Store) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	if err := change.Validate(); err != nil {
		return err
	}
	if err := s.auth.ChangePassword(ctx, change); err != nil {
		s.fail(err, MsgPasswordFailed)
		return err
	}
	return nil
}

// DeleteAccount deletes the account on the backend and then signs out locally.
func (s *Store) DeleteAccount(ctx context.Context) error {
	if err := s.auth.DeleteAccount(ctx); err != nil {
		s.fail(err, MsgDeleteFailed)
		return err
	}
	s.Logout(ctx)
	return nil
}

func (s *Store) authenticate(ctx context.Context, resp *models.AuthResponse) error {
	if err := s.creds.SetTokens(ctx, resp.Pair()); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	user := resp.User
	s.update(func(st *State) {
		st.User = &user
		st.IsAuthenticated = true
		st.Error = ""
	})
	s.persist(ctx)
	return nil
}

func (s *Store) signOut(ctx context.Context) {
	s.clearTokens(ctx)
	s.update(func(st *State) {
		st.User = nil
		st.IsAuthenticated = false
	})
	s.persist(ctx)
}

func (s *Store) clearTokens(ctx context.Context) {
	if err := s.creds.Clear(ctx); err != nil {
		s.logger.Load().Error("failed to clear credentials", "err", err)
	}
}

func (s *Store) begin() {
	s.update(func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})
}

func (s *Store) finish() {
	s.update(func(st *State) { st.IsLoading = false })
}

func (s *Store) fail(err error, fallback string) {
	msg := services.ErrorMessage(err, fallback)
	s.update(func(st *State) { st.Error = msg })
}

func (s *Store) persist(ctx context.Context) {
	if s.repo == nil {
		return
	}
	snap := s.State().snapshot()
	if err := s.repo.Save(ctx, snap); err != nil {
		s.logger.Load().Warn("failed to persist session", "err", err)
	}
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	next := s.state.clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(next.clone())
	}
}
