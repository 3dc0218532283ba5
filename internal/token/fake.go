package token

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// FakeMinter is a test double for Minter. The zero value mints a
// well-formed unsigned JWT valid for one hour.
//
// Usage:
//
//	minter := &token.FakeMinter{}
//	cache := token.New(minter)
type FakeMinter struct {
	// Token overrides the minted token string. Empty means synthesize
	// a well-formed JWT.
	Token string

	// TTL is the minted credential's lifetime (defaults to one hour).
	TTL time.Duration

	// Err is returned from every Mint when set.
	Err error

	// NotLoggedIn makes Mint return (nil, nil).
	NotLoggedIn bool

	// NumberTokens appends the mint count to each synthesized token's
	// claims so successive tokens differ.
	NumberTokens bool

	// Mints counts Mint calls.
	Mints atomic.Int32
}

// Mint implements Minter.
func (f *FakeMinter) Mint(ctx context.Context) (*Credential, error) {
	n := f.Mints.Add(1)
	if f.Err != nil {
		return nil, f.Err
	}
	if f.NotLoggedIn {
		return nil, nil
	}

	ttl := f.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	expiry := time.Now().Add(ttl)

	tok := f.Token
	if tok == "" {
		tok = synthesizeJWT(expiry, n, f.NumberTokens)
	}
	return &Credential{Token: tok, Expiry: expiry}, nil
}

// synthesizeJWT builds an unsigned but structurally valid JWT.
func synthesizeJWT(exp time.Time, n int32, numbered bool) string {
	enc := func(v any) string {
		b, _ := json.Marshal(v)
		return base64.RawURLEncoding.EncodeToString(b)
	}
	header := enc(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := map[string]any{"sub": "user-1", "exp": exp.Unix()}
	if numbered {
		claims["jti"] = fmt.Sprintf("mint-%d", n)
	}
	return header + "." + enc(claims) + ".sig"
}
