package ledgersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/ledger/pkg/slogx"
)

// DefaultTimeout bounds a single request when no HTTP client is supplied.
const DefaultTimeout = 10 * time.Second

// Client talks to the ledger REST API. It attaches the stored access token to
// every request and hands 401/403 responses to its AuthGuard.
//
// Client performs no retries. A context deadline is reported like any other
// transport failure.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	tokens  TokenStore
	guard   *AuthGuard
	nav     Navigator
	logger  *slog.Logger
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. The client keeps its own
// copy of hc, sharing only the Transport and Jar. The caller is responsible
// for attaching a cookie jar if cookie-based flows are needed.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.HTTPClient = &cp
	}
}

// WithTimeout sets the per-request timeout of the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithTokenStore sets the token store. The default is an in-memory store.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

// WithNavigator sets where the client navigates when a session ends.
func WithNavigator(nav Navigator) Option {
	return func(c *Client) { c.nav = nav }
}

// WithGuard injects an existing AuthGuard. It must share the client's token
// store.
func WithGuard(g *AuthGuard) Option {
	return func(c *Client) { c.guard = g }
}

// WithLogger sets the fallback logger. A logger attached to the request
// context with slogx.WithContext takes precedence.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimiter makes every request wait on l before it is sent.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient creates a client for the API rooted at baseURL, for example
// "https://ledger.example.com/api/v1".
func NewClient(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil) // never fails with nil options

	c := &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tokens == nil {
		c.tokens = NewMemoryTokenStore(DefaultTokenLifetimes)
	}
	if c.nav == nil {
		c.nav = nopNavigator{}
	}
	if c.guard == nil {
		c.guard = NewAuthGuard(c.tokens, c.nav, c.logger)
	}
	if c.HTTPClient.Transport == nil {
		c.HTTPClient.Transport = slogx.NewTransport(nil, c.logger)
	}

	return c
}

// Tokens returns the client's token store.
func (c *Client) Tokens() TokenStore { return c.tokens }

// Guard returns the client's auth failure guard.
func (c *Client) Guard() *AuthGuard { return c.guard }

// Navigator returns the client's navigator.
func (c *Client) Navigator() Navigator { return c.nav }

// RequestOptions describes a single API call.
type RequestOptions struct {
	// Method defaults to GET
	Method string

	// Query is appended to the URL
	Query url.Values

	// Body is JSON encoded unless it is already an io.Reader
	Body any

	// Headers override the defaults, including Content-Type
	Headers map[string]string

	// BearerToken overrides the stored access token for this request
	BearerToken string

	// SkipAuthGuard stops a 401/403 from ending the session. Used by
	// endpoints where such a status means "wrong credentials".
	SkipAuthGuard bool
}

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string, query url.Values) string {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Do sends a request and decodes a successful JSON response into out, which
// may be nil. Non-2xx responses are returned as *APIError, anything else that
// goes wrong as *RequestError.
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &RequestError{Op: "rate limit", Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, opts.Query), body)
	if err != nil {
		return &RequestError{Op: "failed to create request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	if req.Header.Get("Authorization") == "" {
		token := opts.BearerToken
		if token == "" {
			if token, err = c.tokens.AccessToken(ctx); err != nil {
				return &RequestError{Op: "failed to read access token", Err: err}
			}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &RequestError{Op: "failed to send request", Err: err}
	}

	return c.decode(ctx, resp, out, opts.SkipAuthGuard)
}

// Get is shorthand for a GET with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, path, RequestOptions{Query: query}, out)
}

// Post is shorthand for a JSON POST.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, path, RequestOptions{Method: http.MethodPost, Body: body}, out)
}

// Put is shorthand for a JSON PUT.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, path, RequestOptions{Method: http.MethodPut, Body: body}, out)
}

// Patch is shorthand for a JSON PATCH.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, path, RequestOptions{Method: http.MethodPatch, Body: body}, out)
}

// Delete is shorthand for a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, path, RequestOptions{Method: http.MethodDelete}, nil)
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return b, nil
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			return nil, &RequestError{Op: "failed to encode request", Err: err}
		}
		return bytes.NewReader(buf), nil
	}
}

// decode reads the response once for both error parsing and success decoding.
func (c *Client) decode(ctx context.Context, resp *http.Response, out any, skipGuard bool) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Op: "failed to read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseErrorResponse(resp.StatusCode, bodyBytes)
		if apiErr.IsAuthError() && !skipGuard {
			c.guard.Trip(ctx)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return &RequestError{Op: "failed to decode response", Err: err}
	}
	return nil
}

// log returns the contextual logger.
func (c *Client) log(ctx context.Context) *slog.Logger {
	return slogx.FromContext(ctx, c.logger)
}

// call runs one API request and converts the outcome into an envelope.
// Failures are logged under op; fallback is used when the error carries no
// message of its own.
func call[T any](
	ctx context.Context,
	c *Client,
	op, path string,
	opts RequestOptions,
	fallback string,
	withFields bool,
) Envelope[T] {
	var out T
	if err := c.Do(ctx, path, opts, &out); err != nil {
		c.logFailure(ctx, op, err)
		return failure[T](err, fallback, withFields)
	}
	return Ok(out)
}

func (c *Client) logFailure(ctx context.Context, op string, err error) {
	attrs := []any{"op", op, "error", err}
	if apiErr, ok := AsAPIError(err); ok {
		attrs = append(attrs, "status", apiErr.StatusCode)
	}
	c.log(ctx).Error("request failed", attrs...)
}
