package resaletest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
)

// TestStorage runs the behaviour every resalesdk.Storage must have against
// a fresh instance from newStorage.
func TestStorage(t *testing.T, newStorage func(t *testing.T) resalesdk.Storage) {
	t.Helper()

	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := newStorage(t)

		_, err := s.Get(ctx, resalesdk.KeyAccessToken)
		require.ErrorIs(t, err, resalesdk.ErrNotFound)
	})

	t.Run("set get overwrite", func(t *testing.T) {
		s := newStorage(t)

		require.NoError(t, s.Set(ctx, resalesdk.KeyAccessToken, "A1"))
		v, err := s.Get(ctx, resalesdk.KeyAccessToken)
		require.NoError(t, err)
		require.Equal(t, "A1", v)

		require.NoError(t, s.Set(ctx, resalesdk.KeyAccessToken, "A2"))
		v, err = s.Get(ctx, resalesdk.KeyAccessToken)
		require.NoError(t, err)
		require.Equal(t, "A2", v)
	})

	t.Run("empty value is stored", func(t *testing.T) {
		s := newStorage(t)

		require.NoError(t, s.Set(ctx, resalesdk.KeyUsername, ""))
		v, err := s.Get(ctx, resalesdk.KeyUsername)
		require.NoError(t, err)
		require.Empty(t, v)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStorage(t)

		require.NoError(t, s.Set(ctx, resalesdk.KeyRefreshToken, "R1"))
		require.NoError(t, s.Delete(ctx, resalesdk.KeyRefreshToken))

		_, err := s.Get(ctx, resalesdk.KeyRefreshToken)
		require.ErrorIs(t, err, resalesdk.ErrNotFound)

		// Deleting again is not an error.
		require.NoError(t, s.Delete(ctx, resalesdk.KeyRefreshToken))
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStorage(t)

		require.NoError(t, s.Set(ctx, resalesdk.KeyAccessToken, "A1"))
		require.NoError(t, s.Set(ctx, resalesdk.KeyRefreshToken, "R1"))
		require.NoError(t, s.Delete(ctx, resalesdk.KeyAccessToken))

		v, err := s.Get(ctx, resalesdk.KeyRefreshToken)
		require.NoError(t, err)
		require.Equal(t, "R1", v)
	})

	t.Run("large json value", func(t *testing.T) {
		s := newStorage(t)

		value := `[{"districts":["ANG MO KIO","BEDOK"],"startTime":"2020-01","endTime":"2024-12"}]`
		require.NoError(t, s.Set(ctx, resalesdk.KeyRecentComparisons, value))
		v, err := s.Get(ctx, resalesdk.KeyRecentComparisons)
		require.NoError(t, err)
		require.JSONEq(t, value, v)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		s := newStorage(t)

		var wg sync.WaitGroup
		errs := make([]error, 16)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = s.Set(ctx, resalesdk.KeyAccessToken, fmt.Sprintf("A%d", i))
			}()
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		v, err := s.Get(ctx, resalesdk.KeyAccessToken)
		require.NoError(t, err)
		require.Regexp(t, `^A\d+$`, v)
	})
}
