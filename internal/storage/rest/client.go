// Package rest implements the hosted-backend client: per-table REST/JSON
// CRUD with bearer-token plus API-key headers, the backend auth endpoints,
// and the remote secret-encryption primitive.
//
// Errors from the backend are returned to callers unchanged (as *APIError);
// there are no retries here. A failed write therefore leaves the caller's
// cache and local state untouched.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tallerhq/backoffice/internal/config"
	"github.com/tallerhq/backoffice/internal/storage"
)

// Compile-time interface checks.
var (
	_ storage.Store        = (*Client)(nil)
	_ storage.SecretCipher = (*Client)(nil)
)

const defaultCallTimeout = 10 * time.Second

// APIError is a non-2xx backend response, preserved as-is for the caller.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

// Client talks to the hosted database service.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	log     *slog.Logger

	mu    sync.RWMutex
	token string
}

// New creates a backend client. callTimeout bounds every call; zero selects
// the default.
func New(backend config.Backend, callTimeout time.Duration, log *slog.Logger) *Client {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout: callTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: strings.TrimRight(backend.URL, "/"),
		apiKey:  backend.APIKey,
		log:     log,
	}
}

// SetToken installs the user's access token. Until a user signs in, requests
// carry the API key as the bearer token (backend row policies then only allow
// public operations).
//
// The client holds one token, so it serves one signed-in backend identity at
// a time; a later sign-in replaces the previous session. This matches the
// single-operator deployment; concurrent hosted identities would need a
// client (or token) per session.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token != "" {
		return c.token
	}
	return c.apiKey
}

// do performs one backend call. prefer, when non-empty, is sent as the
// Prefer header (the backend uses it to decide whether to echo written rows).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, prefer string) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	c.log.Debug("backend request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

// --- auth endpoints ---------------------------------------------------------

// Session is a hosted-backend session: the signed-in user plus the access
// token subsequent calls must carry.
type Session struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignIn exchanges email+password for a backend session and installs its
// access token on the client.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	query := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}

	data, err := c.do(ctx, http.MethodPost, "/auth/v1/token", query, body, "")
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	c.SetToken(session.AccessToken)
	return &session, nil
}

// SignUp registers a new account. Depending on backend settings the session
// may lack an access token until the email is confirmed.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	data, err := c.do(ctx, http.MethodPost, "/auth/v1/signup", nil, body, "")
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if session.AccessToken != "" {
		c.SetToken(session.AccessToken)
	}
	return &session, nil
}

// --- secret encryption boundary ---------------------------------------------
//
// Password material is encrypted by a database-side function; this service
// never holds key material. Both calls are opaque remote procedures.

// EncryptSecret returns the backend-encrypted form of plaintext.
func (c *Client) EncryptSecret(ctx context.Context, plaintext string) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/rest/v1/rpc/encrypt_secret", nil,
		map[string]string{"secret": plaintext}, "")
	if err != nil {
		return "", err
	}

	var encrypted string
	if err := json.Unmarshal(data, &encrypted); err != nil {
		return "", fmt.Errorf("failed to decode encrypted secret: %w", err)
	}
	return encrypted, nil
}

// VerifySecret checks plaintext against previously encrypted material.
func (c *Client) VerifySecret(ctx context.Context, plaintext, encrypted string) (bool, error) {
	data, err := c.do(ctx, http.MethodPost, "/rest/v1/rpc/verify_secret", nil,
		map[string]string{"secret": plaintext, "encrypted": encrypted}, "")
	if err != nil {
		return false, err
	}

	var ok bool
	if err := json.Unmarshal(data, &ok); err != nil {
		return false, fmt.Errorf("failed to decode verification result: %w", err)
	}
	return ok, nil
}
