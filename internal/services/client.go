package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

// Routes handed to a [Navigator].
const (
	RouteLogin     = "/auth/login"
	RouteDashboard = "/dashboard"
)

// Navigator moves the user to another screen. The CLI prints a notice, the callback server redirects the browser.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}

// ClientOpts configures a [Client].
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      models.CredentialStore
	Navigator  Navigator
	Logger     *log.Logger
}

// Client is the HTTP wrapper every backend call goes through.
//
// It attaches the stored access token as a bearer credential. A 401 on a request that has not been
// retried triggers one refresh against [PathTokenRefresh] and one replay of the original request.
// When the refresh fails (or there is no refresh token) the stored tokens are cleared and the
// navigator is sent to [RouteLogin]. Concurrent refreshes are collapsed into one backend call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      models.CredentialStore

	mu     sync.RWMutex // guards nav and logger
	nav    Navigator
	logger *log.Logger

	refreshes singleflight.Group
}

// NewClient creates a [Client]. BaseURL defaults to [shared.DefaultAPIURL].
func NewClient(opts ClientOpts) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		store:      opts.Store,
		nav:        opts.Navigator,
		logger:     opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = shared.DefaultAPIURL
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.nav == nil {
		c.nav = noopNavigator{}
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// SetLogger replaces the client's logger. The TUI moves it off the terminal.
func (c *Client) SetLogger(l *log.Logger) {
	if l == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
}

// SetNavigator replaces the navigator used when a session expires.
func (c *Client) SetNavigator(nav Navigator) {
	if nav == nil {
		nav = noopNavigator{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nav = nav
}

func (c *Client) log() *log.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

func (c *Client) navigator() Navigator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nav
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Store returns the credential store shared with the session.
func (c *Client) Store() models.CredentialStore { return c.store }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Decode unmarshals the body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// Err returns an [*APIError] for a non-2xx response and nil otherwise.
func (r *APIResponse) Err() error {
	if r.OK() {
		return nil
	}
	return newAPIError(r)
}

// Get performs a GET request to path.
func (c *Client) Get(ctx context.Context, path string) (*APIResponse, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any) (*APIResponse, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body any) (*APIResponse, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Patch performs a PATCH request with body encoded as JSON.
func (c *Client) Patch(ctx context.Context, path string, body any) (*APIResponse, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// DoJSON performs a request and decodes a successful response into out (when non-nil).
// Non-2xx responses are returned as [*APIError].
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	return resp.Decode(out)
}

// Do performs a request. Only transport failures are returned as errors; HTTP error statuses
// come back as an [APIResponse] so callers can inspect the body.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = b
	}

	resp, used, err := c.send(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || isAuthEndpoint(path) {
		return resp, nil
	}

	access, err := c.refreshFrom(ctx, used)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log().Debug("request not replayed", "method", method, "path", path, "err", err)
		return resp, nil
	}

	c.log().Debug("replaying request with refreshed token", "method", method, "path", path)
	replayed, _, err := c.sendWithAccess(ctx, method, path, payload, access)
	if err != nil {
		return nil, err
	}
	return replayed, nil
}

// errCleared means another caller's failed refresh already tore the session down.
var errCleared = fmt.Errorf("%w: credentials cleared by a concurrent refresh", shared.ErrRefreshFailed)

// Refresh exchanges the stored refresh token for a new access token and stores it.
//
// On failure both tokens are cleared and the navigator is sent to [RouteLogin].
func (c *Client) Refresh(ctx context.Context) (string, error) {
	var used string
	if c.store != nil {
		if pair, err := c.store.Tokens(ctx); err == nil {
			used = pair.Access
		}
	}
	return c.refreshFrom(ctx, used)
}

// refreshFrom replaces the access token used by a rejected request.
//
// Callers rejected with the same token share one refresh. A caller that arrives after the token
// was already rotated gets the stored token without another backend call, and the session is torn
// down (tokens cleared, navigator sent to login) at most once per failure.
//
// The shared refresh runs detached from ctx: a caller that gives up returns its context error and
// leaves the refresh to finish for the others. Cancellation never tears the session down.
func (c *Client) refreshFrom(ctx context.Context, used string) (string, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.refreshes.DoChan("refresh:"+used, func() (any, error) {
		access, err := c.refresh(detached, used)
		if err != nil {
			if !errors.Is(err, errCleared) && !isContextError(err) {
				c.expire(detached, err)
			}
			return "", err
		}
		return access, nil
	})

	select {
	case <-ctx.Done():
		c.log().Debug("stopped waiting for token refresh", "err", ctx.Err())
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.log().Debug("joined in-flight token refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) refresh(ctx context.Context, used string) (string, error) {
	if c.store == nil {
		return "", shared.ErrNoRefreshToken
	}

	pair, err := c.store.Tokens(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	switch {
	case pair.HasAccess() && pair.Access != used:
		return pair.Access, nil
	case !pair.HasAccess() && !pair.HasRefresh() && used != "":
		return "", errCleared
	case !pair.HasRefresh():
		return "", shared.ErrNoRefreshToken
	}

	payload, _ := json.Marshal(map[string]string{"refresh": pair.Refresh})
	resp, _, err := c.sendWithAccess(ctx, http.MethodPost, PathTokenRefresh, payload, "")
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("%w: status %d", shared.ErrRefreshFailed, resp.StatusCode)
	}

	var out models.TokenPair
	if err := resp.Decode(&out); err != nil || out.Access == "" {
		return "", fmt.Errorf("%w: response has no access token", shared.ErrRefreshFailed)
	}

	if out.HasRefresh() {
		err = c.store.SetTokens(ctx, out)
	} else {
		err = c.store.SetAccess(ctx, out.Access)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	c.log().Info("access token refreshed")
	return out.Access, nil
}

// expire tears down the stored credentials and sends the user to the login route.
func (c *Client) expire(ctx context.Context, cause error) {
	c.log().Warn("session expired", "err", cause)
	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			c.log().Error("failed to clear credentials", "err", err)
		}
	}
	c.navigator().Navigate(RouteLogin)
}

type accessKey struct{}

// WithAccessToken makes requests carrying ctx use access instead of the stored token.
// Logout uses it to revoke a session whose tokens were already cleared locally.
func WithAccessToken(ctx context.Context, access string) context.Context {
	return context.WithValue(ctx, accessKey{}, access)
}

// send performs a request with the stored access token, returning the token that was used.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*APIResponse, string, error) {
	if access, ok := ctx.Value(accessKey{}).(string); ok {
		return c.sendWithAccess(ctx, method, path, payload, access)
	}

	var access string
	if c.store != nil {
		pair, err := c.store.Tokens(ctx)
		if err != nil {
			c.log().Warn("failed to read credentials", "err", err)
		}
		access = pair.Access
	}
	return c.sendWithAccess(ctx, method, path, payload, access)
}

func (c *Client) sendWithAccess(ctx context.Context, method, path string, payload []byte, access string) (*APIResponse, string, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, access, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", shared.GenerateID())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		models.TokenPair{Access: access}.Token().SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, access, ctxErr
		}
		c.log().Warn("request failed", "method", method, "path", path, "err", err)
		return nil, access, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, access, fmt.Errorf("%w: failed to read response: %v", shared.ErrNetwork, err)
	}

	c.log().Debug("request", "method", method, "path", path, "status", resp.StatusCode, "id", req.Header.Get("X-Request-ID"))

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, access, nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// IsNetworkError reports whether err came from the transport rather than an HTTP status.
func IsNetworkError(err error) bool {
	return errors.Is(err, shared.ErrNetwork)
}
