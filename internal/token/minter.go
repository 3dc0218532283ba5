package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const mintTimeout = 15 * time.Second

// HTTPMinter mints credentials from the app's /api/token endpoint using
// the cookie-based login session.
type HTTPMinter struct {
	// BaseURL is the origin serving the token endpoint, without a
	// trailing slash (e.g. "http://localhost:3000").
	BaseURL string

	// Cookie is the raw Cookie header value carrying the login session.
	Cookie string

	// HTTP is the client used for minting. Defaults to a client with a
	// short timeout.
	HTTP *http.Client
}

// mintResponse is the token endpoint's reply.
type mintResponse struct {
	Token     string          `json:"token"`
	ExpiresIn int             `json:"expiresIn"`
	User      json.RawMessage `json:"user"`
}

// Mint requests a fresh credential. A 401 means the login session is gone
// and yields (nil, nil); any other failure is returned as an error.
func (m *HTTPMinter) Mint(ctx context.Context) (*Credential, error) {
	httpClient := m.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: mintTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.BaseURL+"/api/token", nil)
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	if m.Cookie != "" {
		req.Header.Set("Cookie", m.Cookie)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	var mr mintResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if mr.Token == "" {
		return nil, fmt.Errorf("no token in response")
	}

	cred := &Credential{Token: mr.Token}
	if mr.ExpiresIn > 0 {
		cred.Expiry = time.Now().Add(time.Duration(mr.ExpiresIn) * time.Second)
	}
	return cred, nil
}
