package dash_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/hdbdash/internal/dash/app"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk/resaletest"
)

/*
 * End-to-end tests run the dashboard in-process against the fake resale API
 * with session storage in a real redis container.
 */

const (
	redisImage = "redis:7-alpine"

	testUsername = "alice"
	testEmail    = "alice@example.com"
	testPassword = "correct-horse"
)

// setupRedisContainer starts redis and returns its address.
func setupRedisContainer(t *testing.T) (string, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	addr := fmt.Sprintf("%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return addr, cleanup
}

// dashboard runs hdbdash invocations sharing one config file, the way
// separate shells on different machines would share a redis session.
type dashboard struct {
	t      *testing.T
	config string
	api    *resaletest.Server
}

func newDashboard(t *testing.T, redisAddr, prefix, passphrase string) *dashboard {
	t.Helper()

	api := resaletest.New(t)
	api.AddUser(testUsername, testEmail, testPassword)

	config := filepath.Join(t.TempDir(), "hdbdash.yaml")
	body := fmt.Sprintf(`
api:
  url: %s
storage:
  driver: redis
  redis_addr: %s
  redis_prefix: %q
  passphrase: %q
`, api.BaseURL(), redisAddr, prefix, passphrase)
	require.NoError(t, os.WriteFile(config, []byte(body), 0o600))

	return &dashboard{t: t, config: config, api: api}
}

func (d *dashboard) run(args ...string) (string, error) {
	d.t.Helper()

	var stdout, stderr bytes.Buffer
	err := app.Execute(context.Background(), append([]string{"--config", d.config}, args...), app.Streams{
		In:  strings.NewReader(""),
		Out: &stdout,
		Err: &stderr,
	})
	return stdout.String(), err
}

func (d *dashboard) mustRun(args ...string) string {
	d.t.Helper()

	out, err := d.run(args...)
	require.NoError(d.t, err, "hdbdash %v", args)
	return out
}
