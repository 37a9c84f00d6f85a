package resalesdk

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hdbdash/pkg/jwtx"
)

func TestStateNotifiesInRegistrationOrder(t *testing.T) {
	t.Parallel()

	s := NewState()

	var order []string
	s.Subscribe(func(Snapshot) { order = append(order, "first") })
	s.Subscribe(func(Snapshot) { order = append(order, "second") })

	s.set(Snapshot{Authenticated: true, Username: "alice"})
	require.Equal(t, []string{"first", "second"}, order)
}

func TestStateSkipsNoopUpdates(t *testing.T) {
	t.Parallel()

	s := NewState()

	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })

	s.clear()
	require.Zero(t, calls)

	s.set(Snapshot{Authenticated: true, Username: "alice"})
	s.set(Snapshot{Authenticated: true, Username: "alice"})
	require.Equal(t, 1, calls)
}

func TestStateUnsubscribe(t *testing.T) {
	t.Parallel()

	s := NewState()

	calls := 0
	unsubscribe := s.Subscribe(func(Snapshot) { calls++ })
	s.set(Snapshot{Authenticated: true})

	unsubscribe()
	unsubscribe()
	s.clear()
	require.Equal(t, 1, calls)
}

func TestStateSubscriberMayReadState(t *testing.T) {
	t.Parallel()

	s := NewState()

	var seen Snapshot
	var unsubscribe func()
	unsubscribe = s.Subscribe(func(Snapshot) {
		seen = s.Snapshot()
		unsubscribe()
	})

	s.set(Snapshot{Authenticated: true, Username: "bob"})
	require.Equal(t, "bob", seen.Username)
}

func TestStateRenamedAndRefreshedRequireLogin(t *testing.T) {
	t.Parallel()

	exp := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}).SignedString([]byte("irrelevant-key-irrelevant-key-32"))
	require.NoError(t, err)

	s := NewState()
	s.renamed("ghost")
	s.tokenRefreshed(token)
	require.Equal(t, Snapshot{}, s.Snapshot())

	s.set(Snapshot{Authenticated: true, Username: "alice"})
	s.renamed("alice2")
	s.tokenRefreshed(token)

	got := s.Snapshot()
	require.Equal(t, "alice2", got.Username)
	require.True(t, exp.Equal(got.AccessExpiresAt))
}

func TestAccessExpiryOfOpaqueToken(t *testing.T) {
	t.Parallel()

	require.True(t, accessExpiry("A1").IsZero())
	require.True(t, accessExpiry("").IsZero())
}
