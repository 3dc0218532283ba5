// Package token maintains the short-lived bearer credential used to
// authenticate backend calls. The credential is derived from the browser
// login session by an external minting endpoint and cached in memory for
// the lifetime of the process.
package token

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/SyedSaudAli-gh/todochat/internal/log"
)

// DefaultSafetyMargin is how long before actual expiry a credential is
// treated as already expired, forcing proactive renewal.
const DefaultSafetyMargin = 5 * time.Minute

// Credential is an opaque bearer token with an absolute expiry instant.
type Credential struct {
	Token  string
	Expiry time.Time
}

// Minter mints a fresh credential from the current login session.
// A nil credential with a nil error means "not logged in".
type Minter interface {
	Mint(ctx context.Context) (*Credential, error)
}

// Cache holds at most one credential and renews it on demand. Concurrent
// Get calls during a miss collapse into a single mint (single-flight).
// Construct one Cache per authenticated session and share it.
type Cache struct {
	minter Minter
	margin time.Duration
	now    func() time.Time

	mu   sync.Mutex
	cred *Credential

	group singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithSafetyMargin overrides the proactive-renewal margin.
func WithSafetyMargin(d time.Duration) Option {
	return func(c *Cache) { c.margin = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a credential cache backed by the given minter.
func New(minter Minter, opts ...Option) *Cache {
	c := &Cache{
		minter: minter,
		margin: DefaultSafetyMargin,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a valid bearer token, fetching a new one if the cached
// credential is missing or within the safety margin of expiry. It returns
// the empty string when no credential can be obtained; fetch failures are
// logged, never returned as errors.
func (c *Cache) Get(ctx context.Context) string {
	c.mu.Lock()
	if c.valid() {
		tok := c.cred.Token
		c.mu.Unlock()
		return tok
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do("mint", func() (any, error) {
		return c.fetch(ctx), nil
	})
	return v.(string)
}

// Invalidate clears the cached credential immediately. Call on logout.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.cred = nil
	c.mu.Unlock()
	log.Logger().Debug("credential cache cleared")
}

// ForceRefresh clears the cache and mints a new credential. Call after
// login. Returns the new token, or the empty string on failure.
func (c *Cache) ForceRefresh(ctx context.Context) string {
	c.Invalidate()
	v, _, _ := c.group.Do("mint", func() (any, error) {
		return c.fetch(ctx), nil
	})
	return v.(string)
}

// valid reports whether the cached credential is usable. Caller holds mu.
func (c *Cache) valid() bool {
	return c.cred != nil && c.now().Before(c.cred.Expiry.Add(-c.margin))
}

// fetch mints a credential and caches it. Returns "" on any failure.
func (c *Cache) fetch(ctx context.Context) string {
	cred, err := c.minter.Mint(ctx)
	if err != nil {
		log.Logger().Warn("credential mint failed", zap.Error(err))
		return ""
	}
	if cred == nil {
		// Not logged in. The request layer turns this into 401.
		log.Logger().Debug("credential mint returned no session")
		return ""
	}

	expiry, err := resolveExpiry(cred)
	if err != nil {
		log.Logger().Warn("minted credential rejected", zap.Error(err))
		return ""
	}

	c.mu.Lock()
	c.cred = &Credential{Token: cred.Token, Expiry: expiry}
	c.mu.Unlock()

	log.Logger().Debug("credential cached",
		zap.Time("expiry", expiry),
		zap.Int("token_length", len(cred.Token)))
	return cred.Token
}

// resolveExpiry validates the token shape and determines its expiry.
// The minter's expiry wins when set; otherwise the JWT exp claim is used.
// The parse is unverified: the client never holds the signing key, it only
// needs the claim; the backend verifies signatures.
func resolveExpiry(cred *Credential) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(cred.Token, claims); err != nil {
		return time.Time{}, err
	}
	if !cred.Expiry.IsZero() {
		return cred.Expiry, nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, jwt.ErrTokenRequiredClaimMissing
	}
	return exp.Time, nil
}
