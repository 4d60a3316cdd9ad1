// Package apiclient is the outbound client for a module REST API that wraps
// every payload in a {code, msg, data} envelope.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	CSRFHeader        = "X-CSRF-Token"
	defaultMaxRetries = 3
	defaultRetryDelay = 300 * time.Millisecond
	loginRedirect     = "/login"
	maxErrorBody      = 2048
)

// TokenSource supplies and forgets the credentials attached to outgoing requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
	CSRFToken(ctx context.Context) (string, error)
}

type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	maxRetries     int
	retryDelay     time.Duration
	onUnauthorized func(ctx context.Context, redirect string)
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

func WithUnauthorizedHook(hook func(ctx context.Context, redirect string)) Option {
	return func(c *Client) {
		c.onUnauthorized = hook
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newHTTPClient traces every outgoing call and propagates the caller's span.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   15 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// WithTokens returns a shallow copy of the client bound to another token source.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Do sends one logical request. A 500 answer is retried up to three times with
// a linearly growing delay, except on login paths, whose errors are returned
// to the caller untouched.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = encoded
	}

	login := isLoginPath(path)
	for attempt := 0; ; attempt++ {
		status, respBody, err := c.send(ctx, method, path, query, payload)
		if err != nil {
			return err
		}

		if status == http.StatusInternalServerError && !login && attempt < c.maxRetries {
			delay := time.Duration(attempt+1) * c.retryDelay
			slog.WarnContext(ctx, "Retrying module API request",
				"method", method, "path", path, "attempt", attempt+1, "delay", delay)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}

		return c.handleResponse(ctx, status, respBody, login, out)
	}
}

// Login posts raw credentials to /{module}/login and stores the returned token.
func (c *Client) Login(ctx context.Context, module, username, password string) (string, error) {
	var data struct {
		Token string `json:"token"`
	}
	err := c.Post(ctx, "/"+strings.Trim(module, "/")+"/login", map[string]string{
		"username": username,
		"password": password,
	}, &data)
	if err != nil {
		return "", err
	}
	if data.Token == "" {
		return "", &BusinessError{Code: -1, Msg: "login response carried no token"}
	}
	if c.tokens != nil {
		if err := c.tokens.SetToken(ctx, data.Token); err != nil {
			return "", fmt.Errorf("store token: %w", err)
		}
	}
	return data.Token, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte) (int, []byte, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.attachCredentials(ctx, req); err != nil {
		return 0, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		return 0, nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) attachCredentials(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if req.Method != http.MethodGet {
		csrf, err := c.tokens.CSRFToken(ctx)
		if err != nil {
			return fmt.Errorf("load csrf token: %w", err)
		}
		if csrf != "" {
			req.Header.Set(CSRFHeader, csrf)
		}
	}
	return nil
}

func (c *Client) handleResponse(ctx context.Context, status int, body []byte, login bool, out any) error {
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		httpErr := &HTTPError{
			Status: status,
			Body:   truncate(strings.TrimSpace(string(body))),
			kind:   classify(status),
		}
		if login {
			return httpErr
		}
		if errors.Is(httpErr, ErrUnauthorized) {
			httpErr.Redirect = loginRedirect
			if c.tokens != nil {
				if err := c.tokens.ClearToken(ctx); err != nil {
					slog.WarnContext(ctx, "Failed to clear token", "error", err)
				}
			}
			if c.onUnauthorized != nil {
				c.onUnauthorized(ctx, loginRedirect)
			}
		}
		slog.WarnContext(ctx, "Module API request failed", "status", status)
		return httpErr
	}

	var envelope models.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Code != 0 {
		return &BusinessError{Code: envelope.Code, Msg: envelope.Msg}
	}
	if out == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func isLoginPath(path string) bool {
	trimmed := strings.TrimRight(strings.SplitN(path, "?", 2)[0], "/")
	return strings.HasSuffix(trimmed, "/login") || trimmed == "login"
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(body string) string {
	if len(body) > maxErrorBody {
		return body[:maxErrorBody]
	}
	return body
}
