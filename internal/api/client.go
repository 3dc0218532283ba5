package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/SyedSaudAli-gh/todochat/internal/log"
	"github.com/SyedSaudAli-gh/todochat/internal/token"
)

const requestTimeout = 60 * time.Second

// Client executes authenticated requests against the backend. Every call
// obtains a bearer credential from the token cache, attaches it, and
// classifies the outcome into an *Error.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *token.Cache
	retryOn401 bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRetryOnUnauthorized enables a single forced credential refresh and
// resend when the backend rejects a credential the cache believed valid.
// The retry is capped at one; a backend that keeps rejecting surfaces the
// 401 to the caller.
func WithRetryOnUnauthorized() Option {
	return func(c *Client) { c.retryOn401 = true }
}

// NewClient creates a request client for the given backend origin
// (e.g. "http://localhost:8001"), without a trailing slash.
func NewClient(baseURL string, tokens *token.Cache, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody is the subset of backend error payloads we extract a message
// from. FastAPI uses "detail"; the Next.js routes use "message"/"error".
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Err     string `json:"error"`
}

// Do executes method on path (e.g. "/api/v1/chat") with the optional query
// and JSON body, decoding a JSON response into out when out is non-nil.
// A 204 or empty body leaves out untouched. All failures are returned as
// *Error; nothing else escapes this method.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	tok := c.tokens.Get(ctx)
	if tok == "" {
		return &Error{Status: http.StatusUnauthorized, Message: "Not authenticated"}
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &Error{Status: 0, Message: fmt.Sprintf("encode request body: %v", err)}
		}
	}

	status, respBody, err := c.send(ctx, method, path, query, payload, tok)
	if err != nil {
		return err
	}

	// The backend rejected a credential the cache believed was valid,
	// e.g. a signature mismatch after a backend key rotation. At most one
	// forced refresh and resend, and only when opted in.
	if status == http.StatusUnauthorized && c.retryOn401 {
		if tok = c.tokens.ForceRefresh(ctx); tok != "" {
			status, respBody, err = c.send(ctx, method, path, query, payload, tok)
			if err != nil {
				return err
			}
		}
	}

	if status == http.StatusUnauthorized {
		return &Error{Status: status, Message: "Not authenticated", Details: respBody}
	}
	if status < 200 || status > 299 {
		return &Error{Status: status, Message: errorMessage(status, respBody), Details: respBody}
	}

	if status == http.StatusNoContent || len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Status: status, Message: fmt.Sprintf("decode response: %v", err), Details: respBody}
	}
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with the given JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Patch issues a PATCH request with the given JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// send performs one HTTP round trip. A transport-level failure (no
// response at all) comes back as *Error with status 0.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, tok string) (int, []byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return 0, nil, &Error{Status: 0, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Logger().Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return 0, nil, &Error{Status: 0, Message: "Network error: Unable to reach server"}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &Error{Status: 0, Message: fmt.Sprintf("read response: %v", err)}
	}

	log.Logger().Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return resp.StatusCode, respBody, nil
}

// errorMessage pulls a message out of an error response body, falling back
// to the bare status.
func errorMessage(status int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		for _, msg := range []string{eb.Detail, eb.Message, eb.Err} {
			if msg != "" {
				return msg
			}
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
