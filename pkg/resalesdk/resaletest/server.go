// Package resaletest runs an in-process fake of the HDB resale API for
// tests. It issues real HS256 tokens against an injectable clock, keeps a
// small fixed dataset and records every request so tests can assert on
// call counts and headers.
package resaletest

import (
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aussiebroadwan/hdbdash/pkg/httpx"
	"github.com/aussiebroadwan/hdbdash/pkg/jwtx"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
)

// Epoch is the fake clock's starting instant.
var Epoch = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

// Request is what the server saw of one call.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
}

// Server is a fake resale API. Paths are served under /api, so the SDK's
// base URL is Server.BaseURL().
type Server struct {
	httpServer *httptest.Server
	mux        *http.ServeMux

	Clock      *clockwork.FakeClock
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	signer *jwtx.HS256

	mu          sync.Mutex
	users       map[string]*user // by id
	resets      map[string]string // fingerprint -> user id
	outbox      map[string]string // email -> last reset token sent
	requests    []Request
	rejectNext  int
	refreshDown bool
	rotate      bool
	delay       time.Duration
	listings    []resalesdk.Listing
}

// New starts a server and stops it when t finishes.
func New(t testing.TB) *Server {
	t.Helper()

	key := make([]byte, 32)
	_, _ = rand.Read(key)

	clock := clockwork.NewFakeClockAt(Epoch)
	signer, err := jwtx.NewHS256(key, clock)
	if err != nil {
		t.Fatalf("resaletest: %v", err)
	}

	s := &Server{
		mux:        http.NewServeMux(),
		Clock:      clock,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
		signer:     signer,
		users:      make(map[string]*user),
		resets:     make(map[string]string),
		outbox:     make(map[string]string),
		listings:   sampleListings(),
	}
	s.routes()

	s.httpServer = httptest.NewServer(s)
	t.Cleanup(s.httpServer.Close)

	return s
}

// BaseURL is the API root to hand to resalesdk.NewSDKClient.
func (s *Server) BaseURL() string {
	return s.httpServer.URL + "/api"
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Path:          strings.TrimPrefix(r.URL.Path, "/api"),
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
	})
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/account/login/", s.handleLogin)
	s.mux.HandleFunc("POST /api/account/signup/", s.handleSignup)
	s.mux.HandleFunc("POST /api/account/refresh/", s.handleRefresh)
	s.mux.HandleFunc("GET /api/account/user-profile/", s.authenticated(s.handleProfile))
	s.mux.HandleFunc("PUT /api/account/update-profile/", s.authenticated(s.handleUpdateProfile))
	s.mux.HandleFunc("POST /api/account/forgot-password/", s.handleForgotPassword)
	s.mux.HandleFunc("POST /api/account/reset-password/", s.handleResetPassword)

	s.mux.HandleFunc("GET /api/resale/towns/", s.optionalAuth(s.handleTowns))
	s.mux.HandleFunc("GET /api/resale/years/", s.optionalAuth(s.handleYears))
	s.mux.HandleFunc("GET /api/resale/resale_analysis/", s.optionalAuth(s.handleAnalysis))
	s.mux.HandleFunc("GET /api/resale/resale_roomtype_trends/", s.optionalAuth(s.handleRoomTypeTrends))
	s.mux.HandleFunc("GET /api/resale/resale_comparison/", s.optionalAuth(s.handleComparison))
	s.mux.HandleFunc("GET /api/resale/comparison_graph/", s.optionalAuth(s.handleComparisonGraph))
	s.mux.HandleFunc("GET /api/resale/raw_data_by_town/", s.optionalAuth(s.handleRawData))
	s.mux.HandleFunc("GET /api/resale/ai_predict/", s.optionalAuth(s.handlePredict))
}

// ============================================================================
// Hooks
// ============================================================================

// RejectNext makes the next n bearer-authenticated requests fail with 401
// regardless of the token presented.
func (s *Server) RejectNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectNext = n
}

// SetRefreshDown makes the refresh endpoint reject every token.
func (s *Server) SetRefreshDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDown = down
}

// SetRotateRefresh makes the refresh endpoint return a new refresh token
// alongside the access token.
func (s *Server) SetRotateRefresh(rotate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotate = rotate
}

// SetDelay holds every request for d before handling it.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// ExpireAccessTokens moves the clock past the access token lifetime.
// Refresh tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.Clock.Advance(s.AccessTTL + time.Second)
}

// ============================================================================
// Inspection
// ============================================================================

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the requests received for path, e.g. "/account/refresh/".
func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Calls counts the requests received for path.
func (s *Server) Calls(path string) int {
	return len(s.RequestsTo(path))
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// ============================================================================
// Authentication
// ============================================================================

// authenticated requires a valid access token.
func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := httpx.BearerToken(r)
		if !ok {
			httpx.WriteDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		u, ok := s.verifyAccess(raw)
		if !ok {
			httpx.WriteBearerError(w, "Given token not valid for any token type")
			return
		}

		next(w, r, u)
	}
}

// optionalAuth lets anonymous requests through but rejects a bad token,
// the way the real API's authentication layer does.
func (s *Server) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := httpx.BearerToken(r); ok {
			if _, ok := s.verifyAccess(raw); !ok {
				httpx.WriteBearerError(w, "Given token not valid for any token type")
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) verifyAccess(raw string) (*user, bool) {
	s.mu.Lock()
	if s.rejectNext > 0 {
		s.rejectNext--
		s.mu.Unlock()
		return nil, false
	}
	s.mu.Unlock()

	claims, err := s.signer.Verify(raw)
	if err != nil || claims.ValidateType(jwtx.TokenTypeAccess) != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[claims.UserID]
	return u, ok
}

func (s *Server) issue(u *user, tokenType string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	id, username := u.id, u.username
	s.mu.Unlock()

	return s.signer.Sign(jwtx.NewClaims(id, username, tokenType, ttl, s.Clock.Now()))
}
