package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/services"
	"github.com/ufukcicekdev/syncx/internal/shared"
	"github.com/ufukcicekdev/syncx/internal/tasks"
)

// CallbackPath is the route providers redirect to after authorization.
const CallbackPath = "/auth/callback/{platform}"

// CallbackURL returns the redirect URI for platform on a server listening at baseURL.
func CallbackURL(baseURL string, p models.Platform) string {
	return fmt.Sprintf("%s/auth/callback/%s", baseURL, p)
}

// CallbackHandlerOpts configures a [CallbackHandler].
type CallbackHandlerOpts struct {
	Social      tasks.SocialAPI
	Credentials models.CredentialStore
	Delay       time.Duration
	AfterFunc   tasks.AfterFunc
	Logger      *log.Logger

	// Linger is how long Wait keeps serving after the flow settles so the browser can load the
	// page it is redirected to. It defaults to Delay.
	Linger time.Duration

	// OnError is called from Wait for every failed attempt while the error page stays up.
	OnError func(tasks.CallbackResult)
}

// CallbackHandler serves the OAuth callback page and the pages it navigates to.
//
// Every callback request drives the same [tasks.Callback], so "Try Again" re-enters loading.
// Results, navigations and page visits are published on channels for the command waiting on the flow.
type CallbackHandler struct {
	cb      *tasks.Callback
	delay   time.Duration
	linger  time.Duration
	onError func(tasks.CallbackResult)
	results chan tasks.CallbackResult
	routes  chan string
	visits  chan string
	logger  *log.Logger
}

// NewCallbackHandler creates a [CallbackHandler].
func NewCallbackHandler(opts CallbackHandlerOpts) *CallbackHandler {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Delay <= 0 {
		opts.Delay = tasks.DefaultRedirectDelay
	}

	if opts.Linger <= 0 {
		opts.Linger = opts.Delay
	}

	h := &CallbackHandler{
		delay:   opts.Delay,
		linger:  opts.Linger,
		onError: opts.OnError,
		results: make(chan tasks.CallbackResult, 8),
		routes:  make(chan string, 8),
		visits:  make(chan string, 8),
		logger:  opts.Logger,
	}
	h.cb = tasks.NewCallback(tasks.CallbackOpts{
		Social:      opts.Social,
		Credentials: opts.Credentials,
		Navigator:   h,
		Delay:       opts.Delay,
		AfterFunc:   opts.AfterFunc,
		Logger:      opts.Logger,
	})
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{CallbackPath, services.RouteDashboard, services.RouteLogin}
}

// Navigate implements [services.Navigator]. Routes are dropped when nobody is waiting.
func (h *CallbackHandler) Navigate(route string) {
	select {
	case h.routes <- route:
	default:
		h.logger.Debug("navigation dropped", "route", route)
	}
}

// Navigations yields every route the callback navigated to.
func (h *CallbackHandler) Navigations() <-chan string { return h.routes }

// Results yields the state after each handled callback.
func (h *CallbackHandler) Results() <-chan tasks.CallbackResult { return h.results }

// Close cancels a pending dashboard redirect.
func (h *CallbackHandler) Close() { h.cb.Close() }

// Wait blocks until the flow settles.
//
// A success returns once the delayed redirect to the dashboard fires and the browser has loaded it
// (or the linger period passes). A callback without a session returns [shared.ErrNotAuthenticated]
// the same way. A failed attempt keeps the error page and its actions served: "Try Again" starts
// over, "Back to Dashboard" or the end of ctx returns [shared.ErrConnectFailed].
func (h *CallbackHandler) Wait(ctx context.Context) (tasks.CallbackResult, error) {
	var (
		failed  *tasks.CallbackResult
		settled bool
		result  tasks.CallbackResult
		err     error
		linger  <-chan time.Time
	)

	record := func(res tasks.CallbackResult) {
		if res.Status != tasks.CallbackError {
			failed = nil
			return
		}
		failed = &res
		if h.onError != nil {
			h.onError(res)
		}
	}

	// drain applies results published before the event being handled.
	drain := func() {
		for {
			select {
			case res := <-h.results:
				record(res)
			default:
				return
			}
		}
	}

	settle := func(e error) {
		if settled {
			return
		}
		settled, result, err = true, h.cb.Result(), e
		linger = time.After(h.linger)
	}

	for {
		select {
		case <-ctx.Done():
			drain()
			switch {
			case settled:
				return result, err
			case failed != nil:
				return *failed, fmt.Errorf("%w: %s", shared.ErrConnectFailed, failed.Message)
			case errors.Is(ctx.Err(), context.DeadlineExceeded):
				return h.cb.Result(), fmt.Errorf("%w: no callback received", shared.ErrTimeout)
			}
			return h.cb.Result(), ctx.Err()
		case <-linger:
			return result, err
		case route := <-h.routes:
			switch route {
			case services.RouteLogin:
				settle(fmt.Errorf("%w: sign in before connecting an account", shared.ErrNotAuthenticated))
			case services.RouteDashboard:
				settle(nil)
			}
		case visit := <-h.visits:
			drain()
			switch {
			case settled:
				return result, err
			case failed != nil && visit == services.RouteDashboard:
				return *failed, fmt.Errorf("%w: %s", shared.ErrConnectFailed, failed.Message)
			}
		case res := <-h.results:
			record(res)
		}
	}
}

// ServeHTTP renders the callback, dashboard or login page depending on the route.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if platform := chi.URLParam(r, "platform"); platform != "" {
		h.serveCallback(w, r, platform)
		return
	}

	switch r.URL.Path {
	case services.RouteDashboard:
		h.render(w, http.StatusOK, page{
			Title:   "Dashboard",
			Heading: "Back to your dashboard",
			Message: "Return to the terminal to see your connected accounts.",
		})
	default:
		h.render(w, http.StatusUnauthorized, page{
			Title:   "Sign in",
			Heading: "Sign in required",
			Message: "Run `syncx auth login` in your terminal, then connect the account again.",
		})
	}

	select {
	case h.visits <- r.URL.Path:
	default:
	}
}

func (h *CallbackHandler) serveCallback(w http.ResponseWriter, r *http.Request, platform string) {
	params := tasks.ParseCallbackParams(platform, r.URL.Query())
	res := h.cb.Handle(r.Context(), params)

	select {
	case h.results <- res:
	default:
	}

	p := page{Title: "Connecting account", Message: res.Message, Status: res.Status.String()}
	status := http.StatusOK

	switch res.Status {
	case tasks.CallbackSuccess:
		p.Heading = "Connected!"
		p.RedirectTo = services.RouteDashboard
		p.RedirectAfter = int(h.delay.Round(time.Second) / time.Second)
		p.Note = "Redirecting to dashboard..."
	case tasks.CallbackError:
		p.Heading = "Connection Failed"
		p.ShowActions = true
		p.RetryURL = r.URL.RequestURI()
		status = http.StatusBadRequest
	default:
		p.Heading = "Connecting your account..."
		p.Message = "Please wait while we complete the connection."
		p.RedirectTo = services.RouteLogin
	}

	h.render(w, status, p)
}

type page struct {
	Title         string
	Heading       string
	Message       string
	Note          string
	Status        string
	RedirectTo    string
	RedirectAfter int
	ShowActions   bool
	RetryURL      string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}} · syncx</title>
    {{- if .RedirectTo}}
    <meta http-equiv="refresh" content="{{.RedirectAfter}};url={{.RedirectTo}}">
    {{- end}}
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); max-width: 28rem; }
        h1 { margin: 0 0 1rem 0; }
        .success h1 { color: #16a34a; }
        .error h1 { color: #dc2626; }
        p { color: #666; margin: 0 0 1rem 0; }
        a.button { display: inline-block; margin: 0 0.25rem; padding: 0.5rem 1rem; border-radius: 6px;
                   text-decoration: none; background: #2563eb; color: white; }
        a.secondary { background: #e5e7eb; color: #111827; }
    </style>
</head>
<body>
    <div class="container {{.Status}}">
        <h1>{{.Heading}}</h1>
        {{- if .Message}}
        <p>{{.Message}}</p>
        {{- end}}
        {{- if .Note}}
        <p>{{.Note}}</p>
        {{- end}}
        {{- if .ShowActions}}
        <a class="button" href="/dashboard">Back to Dashboard</a>
        <a class="button secondary" href="{{.RetryURL}}">Try Again</a>
        {{- end}}
    </div>
</body>
</html>
`))

func (h *CallbackHandler) render(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, p); err != nil {
		h.logger.Error("failed to render page", "err", err)
	}
}
