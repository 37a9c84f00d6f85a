package resalesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Request describes an outbound call. It is a value: the session client
// never mutates it, so the same descriptor can be dispatched again after a
// refresh and yields an identical request apart from the bearer token.
type Request struct {
	Method string
	// Path is relative to SDKClient.BaseURL, e.g. "/account/user-profile/".
	Path  string
	Query url.Values
	// Body is sent verbatim with Content-Type application/json.
	Body   []byte
	Header http.Header

	// Timeout overrides SDKClient.RequestTimeout for this request.
	// Negative disables the per-attempt deadline.
	Timeout time.Duration
}

// NewGetRequest builds a GET descriptor.
func NewGetRequest(path string, query url.Values) Request {
	return Request{Method: http.MethodGet, Path: path, Query: query}
}

// NewJSONRequest marshals payload once so every attempt sends the same bytes.
func NewJSONRequest(method, path string, payload any) (Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	return Request{Method: method, Path: path, Body: body}, nil
}

// WithTimeout returns a copy of r with a per-attempt timeout.
func (r Request) WithTimeout(d time.Duration) Request {
	r.Timeout = d
	return r
}

// build creates a fresh *http.Request for one attempt.
func (r Request) build(ctx context.Context, baseURL, token string) (*http.Request, error) {
	u := baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var body *bytes.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, r.Method, u, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, r.Method, u, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func (r Request) timeout(fallback time.Duration) time.Duration {
	if r.Timeout != 0 {
		return r.Timeout
	}
	return fallback
}
