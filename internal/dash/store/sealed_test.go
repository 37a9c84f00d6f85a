package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hdbdash/internal/dash/store"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk/resaletest"
)

func TestSealedContract(t *testing.T) {
	t.Parallel()

	resaletest.TestStorage(t, func(t *testing.T) resalesdk.Storage {
		s, err := store.NewSealed(context.Background(), store.NewMemory(), "passphrase")
		require.NoError(t, err)
		return s
	})
}

func TestSealedEncryptsValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := store.NewMemory()

	s, err := store.NewSealed(ctx, inner, "passphrase")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, resalesdk.KeyAccessToken, "eyJhbGciOiJIUzI1NiJ9.secret"))

	raw := inner.Snapshot()[resalesdk.KeyAccessToken]
	require.NotEmpty(t, raw)
	require.False(t, strings.Contains(raw, "secret"))
}

func TestSealedReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := store.NewMemory()

	s, err := store.NewSealed(ctx, inner, "passphrase")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, resalesdk.KeyRefreshToken, "R1"))

	t.Run("same passphrase", func(t *testing.T) {
		reopened, err := store.NewSealed(ctx, inner, "passphrase")
		require.NoError(t, err)

		v, err := reopened.Get(ctx, resalesdk.KeyRefreshToken)
		require.NoError(t, err)
		require.Equal(t, "R1", v)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		_, err := store.NewSealed(ctx, inner, "other")
		require.ErrorIs(t, err, store.ErrWrongPassphrase)
	})

	t.Run("empty passphrase", func(t *testing.T) {
		_, err := store.NewSealed(ctx, inner, "")
		require.Error(t, err)
	})
}

func TestSealedBindsValueToKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := store.NewMemory()

	s, err := store.NewSealed(ctx, inner, "passphrase")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, resalesdk.KeyAccessToken, "A1"))

	// Move the sealed access token under the refresh key.
	raw := inner.Snapshot()[resalesdk.KeyAccessToken]
	require.NoError(t, inner.Set(ctx, resalesdk.KeyRefreshToken, raw))

	_, err = s.Get(ctx, resalesdk.KeyRefreshToken)
	require.ErrorIs(t, err, store.ErrWrongPassphrase)
}
