package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/services"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

// Callback messages.
const (
	MsgMissingParams   = "Missing authorization code or state parameter"
	MsgCallbackFailed  = "Failed to connect account"
	MsgCallbackNetwork = "Network error occurred while connecting account"
)

// DefaultRedirectDelay is how long the success state is shown before moving to the dashboard.
const DefaultRedirectDelay = 2 * time.Second

// CallbackStatus is the state of an OAuth callback.
type CallbackStatus int

const (
	CallbackLoading CallbackStatus = iota
	CallbackSuccess
	CallbackError
)

func (s CallbackStatus) String() string {
	switch s {
	case CallbackSuccess:
		return "success"
	case CallbackError:
		return "error"
	default:
		return "loading"
	}
}

// CallbackParams is what the provider appended to the callback URL. It is never persisted.
type CallbackParams struct {
	Platform string
	Code     string
	State    string
	Error    string
}

// ParseCallbackParams reads code, state and error from the callback query.
func ParseCallbackParams(platform string, q url.Values) CallbackParams {
	return CallbackParams{
		Platform: platform,
		Code:     q.Get("code"),
		State:    q.Get("state"),
		Error:    q.Get("error"),
	}
}

// CallbackResult is a snapshot of the callback state.
type CallbackResult struct {
	Status   CallbackStatus
	Message  string
	Platform string
}

// Timer is the handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. [time.AfterFunc] satisfies it through [RealAfterFunc].
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc wraps [time.AfterFunc].
func RealAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// CallbackOpts configures a [Callback].
type CallbackOpts struct {
	Social      SocialAPI
	Credentials models.CredentialStore
	Navigator   services.Navigator
	Delay       time.Duration // Delay defaults to [DefaultRedirectDelay]
	AfterFunc   AfterFunc     // AfterFunc defaults to [RealAfterFunc]
	Logger      *log.Logger
}

// Callback drives one OAuth callback from loading to success or error.
//
// On success it schedules a navigation to the dashboard. [Callback.Close] cancels it.
type Callback struct {
	social    SocialAPI
	creds     models.CredentialStore
	nav       services.Navigator
	delay     time.Duration
	afterFunc AfterFunc
	logger    *log.Logger

	mu     sync.Mutex
	result CallbackResult
	timer  Timer
	gen    uint64 // bumped by every Handle; a redirect from an older attempt is dropped
	closed bool
}

// NewCallback creates a [Callback] in the loading state.
func NewCallback(opts CallbackOpts) *Callback {
	c := &Callback{
		social:    opts.Social,
		creds:     opts.Credentials,
		nav:       opts.Navigator,
		delay:     opts.Delay,
		afterFunc: opts.AfterFunc,
		logger:    opts.Logger,
	}
	if c.delay <= 0 {
		c.delay = DefaultRedirectDelay
	}
	if c.afterFunc == nil {
		c.afterFunc = RealAfterFunc
	}
	if c.nav == nil {
		c.nav = services.NavigatorFunc(func(string) {})
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// Result returns the current state.
func (c *Callback) Result() CallbackResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Handle processes the callback parameters. Calling it again (Try Again) re-enters loading.
//
// Provider errors and missing parameters fail without contacting the backend. Without an access
// token the navigator is sent to the login route and the state stays loading.
func (c *Callback) Handle(ctx context.Context, params CallbackParams) CallbackResult {
	c.mu.Lock()
	c.stopTimer()
	c.gen++
	c.result = CallbackResult{Status: CallbackLoading, Platform: params.Platform}
	c.mu.Unlock()

	if params.Error != "" {
		return c.fail(params.Platform, "OAuth error: "+params.Error)
	}
	if params.Code == "" || params.State == "" {
		return c.fail(params.Platform, MsgMissingParams)
	}

	if !c.hasAccessToken(ctx) {
		c.logger.Info("callback without a session, sending to login", "platform", params.Platform)
		c.nav.Navigate(services.RouteLogin)
		return c.Result()
	}

	p, err := models.ParsePlatform(params.Platform)
	if err != nil {
		return c.fail(params.Platform, MsgCallbackFailed)
	}

	if err := c.social.Callback(ctx, p, params.Code, params.State); err != nil {
		c.logger.Warn("callback exchange failed", "platform", p, "err", err)
		var apiErr *services.APIError
		switch {
		case errors.As(err, &apiErr):
			return c.fail(params.Platform, apiErr.MessageOr(MsgCallbackFailed))
		case errors.Is(err, shared.ErrNetwork):
			return c.fail(params.Platform, MsgCallbackNetwork)
		default:
			return c.fail(params.Platform, MsgCallbackFailed)
		}
	}

	c.logger.Info("account connected", "platform", p)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = CallbackResult{
		Status:   CallbackSuccess,
		Message:  fmt.Sprintf("Successfully connected your %s account!", params.Platform),
		Platform: params.Platform,
	}
	if !c.closed {
		gen := c.gen
		c.timer = c.afterFunc(c.delay, func() { c.redirect(gen) })
	}
	return c.result
}

// Close cancels a pending dashboard redirect. Later Handle calls never schedule one.
func (c *Callback) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimer()
}

func (c *Callback) redirect(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()

	c.nav.Navigate(services.RouteDashboard)
}

func (c *Callback) fail(platform, msg string) CallbackResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = CallbackResult{Status: CallbackError, Message: msg, Platform: platform}
	return c.result
}

func (c *Callback) hasAccessToken(ctx context.Context) bool {
	if c.creds == nil {
		return false
	}
	pair, err := c.creds.Tokens(ctx)
	if err != nil {
		c.logger.Warn("failed to read credentials", "err", err)
		return false
	}
	return pair.HasAccess()
}

// stopTimer must be called with mu held.
func (c *Callback) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
