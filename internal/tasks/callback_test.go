package tasks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/services"
	"github.com/ufukcicekdev/syncx/internal/shared"
	tu "github.com/ufukcicekdev/syncx/internal/testing"
)

type callbackFixture struct {
	cb     *Callback
	social *mockSocial
	clock  *tu.FakeClock
	nav    *tu.RecordingNavigator
}

func newCallbackFixture(pair models.TokenPair) *callbackFixture {
	f := &callbackFixture{social: &mockSocial{}, clock: &tu.FakeClock{}, nav: &tu.RecordingNavigator{}}
	f.cb = NewCallback(CallbackOpts{
		Social:      f.social,
		Credentials: tu.NewMemoryCredentialStore(pair),
		Navigator:   f.nav,
		AfterFunc:   func(d time.Duration, fn func()) Timer { return f.clock.AfterFunc(d, fn) },
	})
	return f
}

var signedIn = models.TokenPair{Access: "acc", Refresh: "ref"}

func TestParseCallbackParams(t *testing.T) {
	q, _ := url.ParseQuery("code=abc&state=xyz")
	p := ParseCallbackParams("youtube", q)
	assert.Equal(t, CallbackParams{Platform: "youtube", Code: "abc", State: "xyz"}, p)

	q, _ = url.ParseQuery("error=access_denied")
	assert.Equal(t, "access_denied", ParseCallbackParams("youtube", q).Error)
}

func TestCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("Starts loading", func(t *testing.T) {
		f := newCallbackFixture(signedIn)
		assert.Equal(t, CallbackLoading, f.cb.Result().Status)
	})

	t.Run("Provider error fails without backend call", func(t *testing.T) {
		f := newCallbackFixture(signedIn)

		res := f.cb.Handle(ctx, CallbackParams{Platform: "youtube", Error: "access_denied"})
		assert.Equal(t, CallbackError, res.Status)
		assert.Equal(t, "OAuth error: access_denied", res.Message)
		assert.Zero(t, f.social.callbackCount())
	})

	t.Run("Missing code or state fails without backend call", func(t *testing.T) {
		for _, params := range []CallbackParams{
			{Platform: "youtube", State: "s"},
			{Platform: "youtube", Code: "c"},
			{Platform: "youtube"},
		} {
			f := newCallbackFixture(signedIn)
			res := f.cb.Handle(ctx, params)
			assert.Equal(t, CallbackError, res.Status)
			assert.Equal(t, MsgMissingParams, res.Message)
			assert.Zero(t, f.social.callbackCount())
		}
	})

	t.Run("No access token navigates to login", func(t *testing.T) {
		f := newCallbackFixture(models.TokenPair{})

		res := f.cb.Handle(ctx, CallbackParams{Platform: "youtube", Code: "c", State: "s"})
		assert.Equal(t, CallbackLoading, res.Status)
		assert.Equal(t, []string{services.RouteLogin}, f.nav.Routes())
		assert.Zero(t, f.social.callbackCount())
	})

	t.Run("Success schedules the dashboard redirect", func(t *testing.T) {
		f := newCallbackFixture(signedIn)

		res := f.cb.Handle(ctx, CallbackParams{Platform: "instagram", Code: "c", State: "s"})
		require.Equal(t, CallbackSuccess, res.Status)
		assert.Equal(t, "Successfully connected your instagram account!", res.Message)
		assert.Equal(t, []string{"instagram:c:s"}, f.social.callbacks)

		f.clock.Advance(DefaultRedirectDelay - time.Millisecond)
		assert.Empty(t, f.nav.Routes(), "redirect must wait the full delay")

		f.clock.Advance(time.Millisecond)
		assert.Equal(t, []string{services.RouteDashboard}, f.nav.Routes())
	})

	t.Run("Close before the timer prevents navigation", func(t *testing.T) {
		f := newCallbackFixture(signedIn)

		f.cb.Handle(ctx, CallbackParams{Platform: "youtube", Code: "c", State: "s"})
		require.Equal(t, 1, f.clock.Pending())

		f.cb.Close()
		assert.Zero(t, f.clock.Pending())

		f.clock.Advance(time.Minute)
		assert.Empty(t, f.nav.Routes())
	})

	t.Run("Backend rejection uses its message", func(t *testing.T) {
		f := newCallbackFixture(signedIn)
		f.social.callbackErr = &services.APIError{StatusCode: http.StatusBadRequest, Message: "Invalid state parameter"}

		res := f.cb.Handle(ctx, CallbackParams{Platform: "youtube", Code: "c", State: "s"})
		assert.Equal(t, CallbackError, res.Status)
		assert.Equal(t, "Invalid state parameter", res.Message)
		assert.Zero(t, f.clock.Pending())
	})

	t.Run("Backend rejection without message", func(t *testing.T) {
		f := newCallbackFixture(signedIn)
		f.social.callbackErr = &services.APIError{StatusCode: http.StatusInternalServerError}

		res := f.cb.Handle(ctx, CallbackParams{Platform: "youtube", Code: "c", State: "s"})
		assert.Equal(t, MsgCallbackFailed, res.Message)
	})

	t.Run("Network failure", func(t *testing.T) {
		f := newCallbackFixture(signedIn)
		f.social.callbackErr = fmt.Errorf("%w: connection reset", shared.ErrNetwork)

		res := f.cb.Handle(ctx, CallbackParams{Platform: "youtube", Code: "c", State: "s"})
		assert.Equal(t, CallbackError, res.Status)
		assert.Equal(t, MsgCallbackNetwork, res.Message)
	})

	t.Run("Unknown platform fails without backend call", func(t *testing.T) {
		f := newCallbackFixture(signedIn)

		res := f.cb.Handle(ctx, CallbackParams{Platform: "myspace", Code: "c", State: "s"})
		assert.Equal(t, CallbackError, res.Status)
		assert.Zero(t, f.social.callbackCount())
	})

	t.Run("Try again re-enters loading and can succeed", func(t *testing.T) {
		f := newCallbackFixture(signedIn)
		f.social.callbackErr = fmt.Errorf("%w: timeout", shared.ErrNetwork)
		params := CallbackParams{Platform: "linkedin", Code: "c", State: "s"}

		require.Equal(t, CallbackError, f.cb.Handle(ctx, params).Status)

		f.social.callbackErr = nil
		res := f.cb.Handle(ctx, params)
		assert.Equal(t, CallbackSuccess, res.Status)
		assert.Equal(t, 2, f.social.callbackCount())
	})

	t.Run("Redirect already firing is dropped after try again", func(t *testing.T) {
		nav := &tu.RecordingNavigator{}
		var fire func()
		cb := NewCallback(CallbackOpts{
			Social:      &mockSocial{},
			Credentials: tu.NewMemoryCredentialStore(signedIn),
			Navigator:   nav,
			AfterFunc: func(d time.Duration, fn func()) Timer {
				fire = fn
				return firedTimer{}
			},
		})

		require.Equal(t, CallbackSuccess, cb.Handle(ctx, CallbackParams{Platform: "youtube", Code: "c", State: "s"}).Status)
		require.NotNil(t, fire)

		res := cb.Handle(ctx, CallbackParams{Platform: "youtube", Error: "access_denied"})
		require.Equal(t, CallbackError, res.Status)

		fire()
		assert.Zero(t, nav.Count(services.RouteDashboard))
		assert.Equal(t, CallbackError, cb.Result().Status)
	})

	t.Run("Handle after Close never schedules", func(t *testing.T) {
		f := newCallbackFixture(signedIn)
		f.cb.Close()

		res := f.cb.Handle(ctx, CallbackParams{Platform: "youtube", Code: "c", State: "s"})
		assert.Equal(t, CallbackSuccess, res.Status)
		assert.Zero(t, f.clock.Pending())
	})

	t.Run("Custom delay", func(t *testing.T) {
		clock := &tu.FakeClock{}
		nav := &tu.RecordingNavigator{}
		cb := NewCallback(CallbackOpts{
			Social:      &mockSocial{},
			Credentials: tu.NewMemoryCredentialStore(signedIn),
			Navigator:   nav,
			Delay:       500 * time.Millisecond,
			AfterFunc:   func(d time.Duration, fn func()) Timer { return clock.AfterFunc(d, fn) },
		})

		cb.Handle(ctx, CallbackParams{Platform: "twitter", Code: "c", State: "s"})
		clock.Advance(500 * time.Millisecond)
		assert.Equal(t, 1, nav.Count(services.RouteDashboard))
	})
}

// firedTimer is a timer whose callback is already running, so Stop has no effect.
type firedTimer struct{}

func (firedTimer) Stop() bool { return false }
