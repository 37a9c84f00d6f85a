package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
)

func TestOpenStoreRedisURL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := Config{Storage: StorageConfig{
		Driver:      DriverRedis,
		RedisURL:    "redis://" + mr.Addr() + "/0",
		RedisAddr:   "127.0.0.1:1",
		RedisPrefix: "dash:",
	}}

	s, err := OpenStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(ctx, resalesdk.KeyUsername, "alice"))
	v, err := mr.Get("dash:" + resalesdk.KeyUsername)
	require.NoError(t, err)
	require.Equal(t, "alice", v)

	t.Run("malformed url", func(t *testing.T) {
		bad := cfg
		bad.Storage.RedisURL = "http://" + mr.Addr()

		_, err := OpenStore(ctx, bad)
		require.ErrorContains(t, err, "failed to open redis storage")
	})
}

func TestOpenStoreSQLiteMigrates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := Config{Storage: StorageConfig{
		Driver: DriverSQLite,
		Path:   t.TempDir() + "/nested/session.db",
	}}

	s, err := OpenStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(ctx, resalesdk.KeyRefreshToken, "R1"))
	v, err := s.Get(ctx, resalesdk.KeyRefreshToken)
	require.NoError(t, err)
	require.Equal(t, "R1", v)
}
