package dash_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hdbdash/internal/dash/app"
	redisstore "github.com/aussiebroadwan/hdbdash/internal/dash/store/drivers/redis"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk/resaletest"
)

// TestRedisStorageContract runs the storage contract against a real
// server rather than miniredis.
func TestRedisStorageContract(t *testing.T) {
	addr, cleanup := setupRedisContainer(t)
	defer cleanup()

	n := 0
	resaletest.TestStorage(t, func(t *testing.T) resalesdk.Storage {
		n++
		s, err := redisstore.NewStore(context.Background(), redisstore.Options{
			Addr:   addr,
			Prefix: "contract-" + strings.Repeat("x", n) + ":",
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

// TestSharedSession logs in once and uses the session from later
// invocations, then checks nothing readable was left in redis.
func TestSharedSession(t *testing.T) {
	addr, cleanup := setupRedisContainer(t)
	defer cleanup()

	d := newDashboard(t, addr, "shared:", "e2e passphrase")

	out := d.mustRun("login", testUsername, "--password", testPassword)
	require.Contains(t, out, "Logged in as "+testUsername)

	out = d.mustRun("whoami")
	require.Equal(t, testUsername+"\n", out)

	// Tokens are sealed at rest.
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	raw, err := rdb.Get(context.Background(), "shared:"+resalesdk.KeyUsername).Result()
	require.NoError(t, err)
	require.NotContains(t, raw, testUsername)

	// A session whose access token lapsed recovers through refresh.
	d.api.ExpireAccessTokens()
	d.api.ResetRequests()

	out = d.mustRun("--json", "profile")
	var profile resalesdk.Profile
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	require.Equal(t, testEmail, profile.Email)
	require.Equal(t, 1, d.api.Calls("/account/refresh/"))

	d.mustRun("logout")
	_, err = d.run("whoami")
	require.Equal(t, "Not logged in.", app.ErrorMessage(err))
}

// TestRecentComparisonsShared checks the recent list survives across
// invocations and stays bounded.
func TestRecentComparisonsShared(t *testing.T) {
	addr, cleanup := setupRedisContainer(t)
	defer cleanup()

	d := newDashboard(t, addr, "recent:", "")

	towns := []string{"ang mo kio", "bedok", "bishan", "queenstown", "tampines", "bedok"}
	for _, town := range towns {
		d.mustRun("compare", town, "--start", "2019-01", "--end", "2020-12")
	}

	out := d.mustRun("--json", "recent")
	var recent []resalesdk.Comparison
	require.NoError(t, json.Unmarshal([]byte(out), &recent))

	require.Len(t, recent, resalesdk.MaxRecentComparisons)
	require.Equal(t, []string{"BEDOK"}, recent[0].Districts)
	require.Equal(t, []string{"TAMPINES"}, recent[1].Districts)
	require.Equal(t, []string{"ANG MO KIO"}, recent[4].Districts)
}

// TestWrongPassphrase refuses to open a sealed session with another key.
func TestWrongPassphrase(t *testing.T) {
	addr, cleanup := setupRedisContainer(t)
	defer cleanup()

	first := newDashboard(t, addr, "sealed:", "right")
	first.mustRun("login", testUsername, "--password", testPassword)

	second := newDashboard(t, addr, "sealed:", "wrong")
	_, err := second.run("whoami")
	require.Error(t, err)
	require.Contains(t, app.ErrorMessage(err), "wrong passphrase")
}
