package token

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeJWT builds an unsigned-but-well-formed JWT with the given exp claim.
func makeJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(b)
	}
	header := enc(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := enc(map[string]any{"sub": "user-1", "exp": exp.Unix()})
	return header + "." + claims + ".sig"
}

// fakeMinter counts mints and returns a configurable credential.
type fakeMinter struct {
	mu         sync.Mutex
	mints      atomic.Int32
	delay      time.Duration
	cred       *Credential
	err        error
	notLogged  bool
	tokenPerct bool // return a distinct token per mint
}

func (f *fakeMinter) Mint(ctx context.Context) (*Credential, error) {
	n := f.mints.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.notLogged {
		return nil, nil
	}
	cred := *f.cred
	if f.tokenPerct {
		cred.Token = fmt.Sprintf("%s-%d", cred.Token, n)
	}
	return &cred, nil
}

func TestGetSingleFlight(t *testing.T) {
	jwtStr := makeJWT(t, time.Now().Add(time.Hour))
	minter := &fakeMinter{
		delay: 50 * time.Millisecond,
		cred:  &Credential{Token: jwtStr, Expiry: time.Now().Add(time.Hour)},
	}
	cache := New(minter)

	const callers = 5
	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Get(context.Background())
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, minter.mints.Load(), "concurrent gets must collapse into one mint")
	for _, got := range results {
		assert.Equal(t, jwtStr, got)
	}
}

func TestGetSafetyMargin(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	cases := []struct {
		name      string
		expiresIn time.Duration
		wantMints int32
	}{
		{"within margin is expired", 4 * time.Minute, 2},
		{"outside margin is valid", 10 * time.Minute, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expiry := now.Add(tc.expiresIn)
			minter := &fakeMinter{
				cred: &Credential{Token: makeJWT(t, expiry), Expiry: expiry},
			}
			cache := New(minter, WithSafetyMargin(5*time.Minute), WithClock(clock))

			first := cache.Get(context.Background())
			second := cache.Get(context.Background())
			assert.NotEmpty(t, first)
			assert.Equal(t, first, second)
			assert.Equal(t, tc.wantMints, minter.mints.Load())
		})
	}
}

func TestGetFailuresReturnEmpty(t *testing.T) {
	t.Run("transient error", func(t *testing.T) {
		cache := New(&fakeMinter{err: errors.New("boom")})
		assert.Empty(t, cache.Get(context.Background()))
	})
	t.Run("not logged in", func(t *testing.T) {
		cache := New(&fakeMinter{notLogged: true})
		assert.Empty(t, cache.Get(context.Background()))
	})
	t.Run("malformed token", func(t *testing.T) {
		cache := New(&fakeMinter{cred: &Credential{Token: "not-a-jwt", Expiry: time.Now().Add(time.Hour)}})
		assert.Empty(t, cache.Get(context.Background()))
	})
}

func TestExpiryFromClaimWhenMinterOmitsIt(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	minter := &fakeMinter{cred: &Credential{Token: makeJWT(t, exp)}}
	cache := New(minter)

	got := cache.Get(context.Background())
	require.NotEmpty(t, got)

	// Cached: a second Get must not mint again.
	cache.Get(context.Background())
	assert.EqualValues(t, 1, minter.mints.Load())
}

func TestInvalidateForcesRefetch(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	minter := &fakeMinter{
		cred:       &Credential{Token: makeJWT(t, exp), Expiry: exp},
		tokenPerct: true,
	}
	cache := New(minter)

	first := cache.Get(context.Background())
	require.NotEmpty(t, first)

	cache.Invalidate()
	second := cache.Get(context.Background())
	require.NotEmpty(t, second)

	assert.NotEqual(t, first, second)
	assert.EqualValues(t, 2, minter.mints.Load())
}

func TestForceRefresh(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	minter := &fakeMinter{
		cred:       &Credential{Token: makeJWT(t, exp), Expiry: exp},
		tokenPerct: true,
	}
	cache := New(minter)

	first := cache.Get(context.Background())
	refreshed := cache.ForceRefresh(context.Background())

	assert.NotEqual(t, first, refreshed)
	assert.EqualValues(t, 2, minter.mints.Load())
}

func TestHTTPMinter(t *testing.T) {
	jwtStr := "h.c.s"

	t.Run("success", func(t *testing.T) {
		var gotCookie string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCookie = r.Header.Get("Cookie")
			assert.Equal(t, "/api/token", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"token":     jwtStr,
				"expiresIn": 3600,
				"user":      map[string]string{"id": "user-1"},
			})
		}))
		defer srv.Close()

		minter := &HTTPMinter{BaseURL: srv.URL, Cookie: "session=abc"}
		cred, err := minter.Mint(context.Background())
		require.NoError(t, err)
		require.NotNil(t, cred)
		assert.Equal(t, jwtStr, cred.Token)
		assert.Equal(t, "session=abc", gotCookie)
		assert.WithinDuration(t, time.Now().Add(time.Hour), cred.Expiry, 5*time.Second)
	})

	t.Run("401 means not logged in", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		minter := &HTTPMinter{BaseURL: srv.URL}
		cred, err := minter.Mint(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, cred)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		minter := &HTTPMinter{BaseURL: srv.URL}
		cred, err := minter.Mint(context.Background())
		assert.Error(t, err)
		assert.Nil(t, cred)
	})

	t.Run("missing token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"expiresIn": 3600}`))
		}))
		defer srv.Close()

		minter := &HTTPMinter{BaseURL: srv.URL}
		_, err := minter.Mint(context.Background())
		assert.Error(t, err)
	})
}
