package resalesdk

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultRequestTimeout bounds a single dispatch when neither the client
// nor the request configures one.
const DefaultRequestTimeout = 10 * time.Second

// SDKClient is a client for the HDB resale API. It owns the credential
// lifecycle: tokens live in Storage, every request carries the access
// token when present, and a rejected access token is refreshed once.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Storage    Storage

	// RequestTimeout applies to each dispatch separately, so a request that
	// is retried after a refresh may take up to twice as long overall.
	// Zero or negative disables the per-attempt deadline; the caller's
	// context still applies.
	RequestTimeout time.Duration

	state *State

	// recentMu serialises read-modify-write of the recent comparisons list
	// within this process.
	recentMu sync.Mutex
}

// NewSDKClient creates a client. A nil storage falls back to MemoryStorage.
func NewSDKClient(baseURL string, storage Storage) *SDKClient {
	if storage == nil {
		storage = NewMemoryStorage()
	}

	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		// No client-wide Timeout: deadlines are set per attempt in dispatch.
		HTTPClient:     &http.Client{},
		Storage:        storage,
		RequestTimeout: DefaultRequestTimeout,
		state:          NewState(),
	}
}

// State returns the session state shared by every operation on this client.
func (c *SDKClient) State() *State {
	return c.state
}
