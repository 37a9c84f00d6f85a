package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/hdbdash/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	logger := slogx.New(slogx.Config{
		Service: "hdbdash",
		Version: "test",
		Env:     "test",
		Level:   "debug",
		Format:  "json",
		Writer:  &buf,
	})
	logger.Debug("hello", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "hello", line["msg"])
	require.Equal(t, "hdbdash", line["service"])
	require.Equal(t, "v", line["k"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, slogx.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, slogx.ParseLevel("warning"))
	require.Equal(t, slog.LevelError, slogx.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, slogx.ParseLevel("nonsense"))
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := slogx.WithContext(context.Background(), base)
	ctx = slogx.With(ctx, "req_id", "req-1")
	slogx.FromContext(ctx).Info("x")

	require.Contains(t, buf.String(), "req_id=req-1")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.Default(), slogx.FromContext(context.Background()))
}

func TestTransport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client := &http.Client{Transport: slogx.Transport(logger)(http.DefaultTransport)}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/resale/towns/?token=secret", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "01ABC")

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	out := buf.String()
	require.Contains(t, out, "msg=http_request")
	require.Contains(t, out, "status=418")
	require.Contains(t, out, "path=/resale/towns/")
	require.Contains(t, out, "req_id=01ABC")
	require.False(t, strings.Contains(out, "secret"), "query string must not be logged")
}

func TestTransportLogsErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	failing := slogx.Transport(logger)(roundTripper(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	_, err := failing.RoundTrip(req)
	require.Error(t, err)
	require.Contains(t, buf.String(), "error=boom")
}

type roundTripper func(*http.Request) (*http.Response, error)

func (f roundTripper) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
