package resalesdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aussiebroadwan/hdbdash/pkg/slogx"
)

// maxRetries is the number of times a request is re-dispatched after its
// access token was rejected.
const maxRetries = 1

// Send dispatches req with the stored access token attached as a bearer
// credential, if there is one.
//
// Any response other than 401 is returned unmodified; the caller owns and
// must close its body. A 401 triggers Refresh; when that yields a new
// access token the request is dispatched once more with it. A 401 that
// cannot be recovered is returned as an *APIError with StatusCode 401 and
// no response. Transport errors are never retried.
func (c *SDKClient) Send(ctx context.Context, req Request) (*http.Response, error) {
	token, err := lookup(ctx, c.Storage, KeyAccessToken)
	if err != nil {
		return nil, err
	}

	return c.send(ctx, req, token, 0)
}

// send performs one attempt. attempt counts prior dispatches of req, which
// is what bounds the retry: it lives on the stack of this call chain, so
// concurrent Sends each get their own single retry.
func (c *SDKClient) send(ctx context.Context, req Request, token string, attempt int) (*http.Response, error) {
	resp, err := c.dispatch(ctx, req, token, attempt)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	rejected := readErrorResponse(resp)
	if attempt >= maxRetries {
		return nil, rejected
	}

	log := slogx.FromContext(ctx)
	log.Debug("access token rejected, refreshing", "path", req.Path, "attempt", attempt)

	fresh, err := c.Refresh(ctx)
	if err != nil {
		log.Debug("refresh did not recover session", "path", req.Path, "error", err)
		rejected.Err = err
		return nil, rejected
	}

	return c.send(ctx, req, fresh, attempt+1)
}

// dispatch sends a single attempt under its own deadline. The deadline is
// released when the response body is closed, so it also bounds reading it.
func (c *SDKClient) dispatch(ctx context.Context, req Request, token string, attempt int) (*http.Response, error) {
	cancel := context.CancelFunc(func() {})
	if d := req.timeout(c.RequestTimeout); d > 0 {
		ctx, cancel = context.WithTimeout(ctx, d)
	}
	ctx = slogx.With(ctx, "attempt", attempt)

	httpReq, err := req.build(ctx, c.BaseURL, token)
	if err != nil {
		cancel()
		return nil, err
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// ============================================================================
// Refresh
// ============================================================================

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
	// Refresh is only present when the server rotates refresh tokens.
	Refresh string `json:"refresh,omitempty"`
}

// Refresh exchanges the stored refresh token for a new access token and
// stores it, replacing the previous one.
//
// Without a stored refresh token it returns ErrNoRefreshToken and makes no
// network call. Any other failure leaves the session unrecoverable: both
// tokens are deleted, the session state is cleared and the returned error
// wraps ErrRefreshFailed.
func (c *SDKClient) Refresh(ctx context.Context) (string, error) {
	refresh, err := lookup(ctx, c.Storage, KeyRefreshToken)
	if err != nil {
		return "", err
	}
	if refresh == "" {
		return "", ErrNoRefreshToken
	}

	out, err := c.exchangeRefresh(ctx, refresh)
	if err != nil {
		if derr := deleteKeys(ctx, c.Storage, KeyAccessToken, KeyRefreshToken); derr != nil {
			err = errors.Join(err, derr)
		}
		c.state.clear()
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	if err := c.Storage.Set(ctx, KeyAccessToken, out.Access); err != nil {
		return "", fmt.Errorf("failed to store access token: %w", err)
	}
	if out.Refresh != "" {
		if err := c.Storage.Set(ctx, KeyRefreshToken, out.Refresh); err != nil {
			return "", fmt.Errorf("failed to store refresh token: %w", err)
		}
	}
	c.state.tokenRefreshed(out.Access)

	return out.Access, nil
}

// exchangeRefresh posts the refresh token without a bearer header and
// outside the retry path, so a rejected refresh never recurses.
func (c *SDKClient) exchangeRefresh(ctx context.Context, refresh string) (*refreshResponse, error) {
	req, err := NewJSONRequest(http.MethodPost, "/account/refresh/", refreshRequest{Refresh: refresh})
	if err != nil {
		return nil, err
	}

	resp, err := c.dispatch(ctx, req, "", 0)
	if err != nil {
		return nil, err
	}

	var out refreshResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	if out.Access == "" {
		return nil, errors.New("refresh response did not include an access token")
	}

	return &out, nil
}
