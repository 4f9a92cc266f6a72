package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/example/storefront/internal/cache"
	"github.com/example/storefront/internal/session"
)

// DefaultBaseURL is the Route e-commerce API this storefront fronts.
const DefaultBaseURL = "https://ecommerce.routemisr.com/api/v1"

const (
	defaultTimeout = 15 * time.Second
	publicTimeout  = 25 * time.Second // the public catalog is slower under load

	maxRetries     = 3
	retryBaseDelay = time.Second
)

// tokenHeader carries the access credential. The collaborator API expects
// this custom header, not a standard Authorization bearer; keep it exactly.
const tokenHeader = "token"

// Config configures a Client. Zero values fall back to production defaults.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	RetryBaseDelay time.Duration
	Cache          cache.Cache
}

// Client is the single outbound gateway to the shop API. It comes in two
// modes: public clients never attach a credential (an expired guest token
// makes the remote fail requests that succeed anonymously) and retry
// transient read failures with backoff; authenticated clients attach the session
// credential and recover from 401 via refresh-and-replay.
type Client struct {
	http      *http.Client
	baseURL   string
	cache     cache.Cache
	session   *session.Manager
	retries   int
	retryBase time.Duration
	refresher *refresher
}

// NewPublicClient builds the credential-free client used for catalog reads
// and for signin/signup (where a stale stored token must not leak).
func NewPublicClient(cfg Config) *Client {
	c := newClient(cfg, publicTimeout)
	c.retries = maxRetries
	return c
}

// NewAuthClient builds the credential-attached client for cart, wishlist,
// orders and account operations.
func NewAuthClient(cfg Config, sess *session.Manager) *Client {
	c := newClient(cfg, defaultTimeout)
	c.session = sess
	c.refresher = &refresher{
		http:    c.http,
		baseURL: c.baseURL,
		session: sess,
	}
	return c
}

func newClient(cfg Config, fallbackTimeout time.Duration) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = fallbackTimeout
	}
	retryBase := cfg.RetryBaseDelay
	if retryBase == 0 {
		retryBase = retryBaseDelay
	}
	cch := cfg.Cache
	if cch == nil {
		cch = cache.Noop{}
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		cache:     cch,
		retryBase: retryBase,
	}
}

// get/post/put/delete run one logical request through the client's policies.

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) put(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) delete(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// getCached memoizes a GET by endpoint + query for the given freshness
// window. Entries expire by age only; writes never invalidate them.
func (c *Client) getCached(ctx context.Context, path string, query url.Values, ttl time.Duration) ([]byte, error) {
	key := cacheKey(path, query)
	if data, ok := c.cache.Get(key); ok {
		return data, nil
	}

	data, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, data, ttl)
	return data, nil
}

func cacheKey(path string, query url.Values) string {
	if len(query) == 0 {
		return "shopapi:" + path
	}
	return "shopapi:" + path + "?" + query.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if c.session != nil {
		return c.doAuthenticated(ctx, method, path, query, body)
	}
	// Backoff covers reads only. Mutating calls run exactly once; a retried
	// POST could duplicate its side effect (a second account, a second cart
	// line).
	if method != http.MethodGet {
		return c.doOnce(ctx, method, path, query, body, "")
	}
	return c.doWithRetry(ctx, method, path, query, body)
}

// doWithRetry implements the public client's read backoff: up to 3 retries on
// network failures and 5xx, delays of base, 2×base, 4×base. Retry state is
// local to each call, so concurrent requests back off independently.
func (c *Client) doWithRetry(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := c.retryBase << (attempt - 1)
			log.Printf("[Shop] %s %s failed (%v), retrying in %s (attempt %d/%d)",
				method, path, lastErr, delay, attempt, c.retries)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, err := c.doOnce(ctx, method, path, query, body, "")
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// doAuthenticated attaches the session credential and handles 401 with a
// refresh-and-replay cycle. Each request goes through that cycle at most
// once: a second 401 after replay is terminal.
func (c *Client) doAuthenticated(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	data, err := c.doOnce(ctx, method, path, query, body, c.session.Token())
	if !IsUnauthorized(err) {
		return data, err
	}

	newToken, refreshErr := c.refresher.run(ctx)
	if refreshErr != nil {
		if errors.Is(refreshErr, ErrNoRefreshToken) {
			// Nothing to refresh with: surface the original 401.
			return nil, err
		}
		return nil, refreshErr
	}
	return c.doOnce(ctx, method, path, query, body, newToken)
}

// doOnce performs a single HTTP exchange. token is attached via the custom
// header when non-empty.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body any, token string) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(tokenHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Status: 0, cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Status: 0, cause: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{Status: resp.StatusCode, Message: remoteMessage(data)}
	}
	return data, nil
}

// remoteMessage pulls the human-readable message out of an error payload,
// best effort.
func remoteMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
		Errors  []struct {
			Msg     string `json:"msg"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	if len(payload.Errors) > 0 {
		if payload.Errors[0].Msg != "" {
			return payload.Errors[0].Msg
		}
		return payload.Errors[0].Message
	}
	return ""
}
