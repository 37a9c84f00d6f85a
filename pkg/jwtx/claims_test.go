package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/hdbdash/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	c := jwtx.NewClaims("1", "alice", jwtx.TokenTypeAccess, time.Minute, now)
	require.True(t, c.Expiry().Equal(now.Add(time.Minute)))

	var empty jwtx.Claims
	require.True(t, empty.Expiry().IsZero())
}

func TestValidateType(t *testing.T) {
	c := jwtx.NewClaims("1", "", jwtx.TokenTypeRefresh, time.Hour, time.Now())
	require.NoError(t, c.ValidateType(jwtx.TokenTypeRefresh))
	require.ErrorIs(t, c.ValidateType(jwtx.TokenTypeAccess), jwtx.ErrWrongType)
}

func TestNewJTIIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		j := jwtx.NewJTI()
		require.False(t, seen[j])
		seen[j] = true
	}
}

func TestHS256RoundTrip(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	h, err := jwtx.NewHS256(testKey, clock)
	require.NoError(t, err)

	claims := jwtx.NewClaims("42", "alice", jwtx.TokenTypeAccess, 5*time.Minute, clock.Now())
	tok, err := h.Sign(claims)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(tok, "."))

	got, err := h.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "42", got.UserID)
	require.Equal(t, jwtx.TokenTypeAccess, got.TokenType)

	t.Run("expires with the clock", func(t *testing.T) {
		clock.Advance(6 * time.Minute)
		_, err := h.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})
}

func TestHS256RejectsForeignTokens(t *testing.T) {
	h, err := jwtx.NewHS256(testKey, nil)
	require.NoError(t, err)

	other, err := jwtx.NewHS256([]byte("ffffffffffffffffffffffffffffffff"), nil)
	require.NoError(t, err)

	tok, err := other.Sign(jwtx.NewClaims("1", "", jwtx.TokenTypeAccess, time.Minute, time.Now()))
	require.NoError(t, err)

	_, err = h.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)

	_, err = h.Verify("garbage")
	require.ErrorIs(t, err, jwtx.ErrMalformed)

	t.Run("none alg is refused", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwtx.NewClaims("1", "", jwtx.TokenTypeAccess, time.Minute, time.Now()))
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = h.Verify(raw)
		require.Error(t, err)
	})
}

func TestNewHS256ShortKey(t *testing.T) {
	_, err := jwtx.NewHS256([]byte("short"), nil)
	require.Error(t, err)
}

func TestInspect(t *testing.T) {
	h, err := jwtx.NewHS256(testKey, nil)
	require.NoError(t, err)

	now := time.Now().Truncate(time.Second)
	tok, err := h.Sign(jwtx.NewClaims("7", "bob", jwtx.TokenTypeAccess, time.Hour, now))
	require.NoError(t, err)

	c, err := jwtx.Inspect(tok)
	require.NoError(t, err)
	require.Equal(t, "bob", c.Username)
	require.WithinDuration(t, now.Add(time.Hour), c.Expiry(), time.Second)

	t.Run("opaque tokens are rejected", func(t *testing.T) {
		_, err := jwtx.Inspect("opaque-access-token")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}
