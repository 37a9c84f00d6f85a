package resalesdk

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRequestBuild(t *testing.T) {
	t.Parallel()

	req, err := NewJSONRequest(http.MethodPost, "/account/login/", LoginRequest{Username: "a", Password: "b"})
	require.NoError(t, err)

	t.Run("with token", func(t *testing.T) {
		httpReq, err := req.build(context.Background(), "http://api.test/api", "A1")
		require.NoError(t, err)

		require.Equal(t, "http://api.test/api/account/login/", httpReq.URL.String())
		require.Equal(t, "Bearer A1", httpReq.Header.Get("Authorization"))
		require.Equal(t, "application/json", httpReq.Header.Get("Content-Type"))
		require.Equal(t, "application/json", httpReq.Header.Get("Accept"))

		body, err := io.ReadAll(httpReq.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"username":"a","password":"b"}`, string(body))
	})

	t.Run("replay sends identical body", func(t *testing.T) {
		first, err := req.build(context.Background(), "http://api.test", "A1")
		require.NoError(t, err)
		second, err := req.build(context.Background(), "http://api.test", "A2")
		require.NoError(t, err)

		b1, _ := io.ReadAll(first.Body)
		b2, _ := io.ReadAll(second.Body)
		require.Equal(t, b1, b2)
		require.Equal(t, "Bearer A2", second.Header.Get("Authorization"))
	})

	t.Run("without token", func(t *testing.T) {
		httpReq, err := req.build(context.Background(), "http://api.test", "")
		require.NoError(t, err)
		require.Empty(t, httpReq.Header.Get("Authorization"))
	})
}

func TestGetRequestQuery(t *testing.T) {
	t.Parallel()

	q := url.Values{}
	q.Add("towns", "BEDOK")
	q.Add("towns", "BISHAN")

	httpReq, err := NewGetRequest("/resale/resale_comparison/", q).build(context.Background(), "http://api.test", "")
	require.NoError(t, err)
	require.Equal(t, []string{"BEDOK", "BISHAN"}, httpReq.URL.Query()["towns"])
	require.Nil(t, httpReq.Body)
	require.Empty(t, httpReq.Header.Get("Content-Type"))
}

func TestRequestTimeout(t *testing.T) {
	t.Parallel()

	req := NewGetRequest("/", nil)
	require.Equal(t, 3*time.Second, req.timeout(3*time.Second))
	require.Equal(t, time.Second, req.WithTimeout(time.Second).timeout(3*time.Second))
	require.True(t, req.WithTimeout(-1).timeout(3*time.Second) < 0)

	// WithTimeout returns a copy.
	require.Zero(t, req.Timeout)
}

func TestNewSDKClientDefaults(t *testing.T) {
	t.Parallel()

	c := NewSDKClient("http://api.test/api/", nil)
	require.Equal(t, "http://api.test/api", c.BaseURL)
	require.IsType(t, &MemoryStorage{}, c.Storage)
	require.Equal(t, DefaultRequestTimeout, c.RequestTimeout)
	require.Zero(t, c.HTTPClient.Timeout)
	require.NotNil(t, c.State())
}
