package app

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hdbdash/pkg/jwtx"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk/resaletest"
)

func newTestApplication(t *testing.T, srv *resaletest.Server, out *bytes.Buffer) *Application {
	t.Helper()

	cfg := Config{
		API: APIConfig{URL: srv.BaseURL(), RateLimit: 0},
		Storage: StorageConfig{
			Driver:     DriverMemory,
			Passphrase: "hunter22",
		},
	}

	app, err := New(context.Background(), cfg, Streams{Out: out})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	app.SetClock(srv.Clock)
	return app
}

func TestStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv := resaletest.New(t)
	srv.AddUser("alice", "alice@example.com", "correct-horse")

	var out bytes.Buffer
	app := newTestApplication(t, srv, &out)
	rc := &runContext{ctx: ctx, app: app}

	require.NoError(t, (&StatusCmd{}).Run(rc))
	require.Contains(t, out.String(), "logged out")
	require.Contains(t, out.String(), "memory (sealed)")

	_, err := app.Client().Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, (&StatusCmd{}).Run(rc))
	require.Contains(t, out.String(), "logged in as alice")
	require.Contains(t, out.String(), "expires in "+jwtx.DefaultAccessTokenTTL.String())

	srv.ExpireAccessTokens()
	out.Reset()
	require.NoError(t, (&StatusCmd{}).Run(rc))
	require.Contains(t, out.String(), "expired")

	out.Reset()
	rc.json = true
	require.NoError(t, (&StatusCmd{}).Run(rc))

	var report statusReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.True(t, report.Authenticated)
	require.True(t, report.Sealed)
	require.NotNil(t, report.AccessExpires)
}

func TestPromptReadsLines(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	app := newTestApplication(t, resaletest.New(t), &out)
	app.in.Reset(bytes.NewBufferString("first\r\nsecond"))

	v, err := app.prompt("", "Password")
	require.NoError(t, err)
	require.Equal(t, "first", v)

	v, err = app.prompt("", "Password")
	require.NoError(t, err)
	require.Equal(t, "second", v)

	v, err = app.prompt("given", "Password")
	require.NoError(t, err)
	require.Equal(t, "given", v)

	v, err = app.prompt("", "Password")
	require.NoError(t, err)
	require.Empty(t, v)
}
