/*
Package resalesdk provides a client SDK for the HDB resale API: account
management, resale price data and AI price predictions.

# Overview

Everything goes through a single SDKClient. It owns the credential
lifecycle: the access and refresh tokens live in an injected Storage, every
request carries the access token as a bearer credential when one is stored,
and a rejected access token is refreshed and the request retried once.

	client := resalesdk.NewSDKClient("http://127.0.0.1:8000/api", storage)

	// Log in; both tokens are stored and the session state updated
	_, err := client.Login(ctx, "alice", "correct-horse")

	// Authenticated calls need no further ceremony
	profile, err := client.Profile(ctx)
	towns, err := client.Towns(ctx)

# Session Client

Send dispatches a Request descriptor:

 1. If an access token is stored it is attached as "Authorization: Bearer".
 2. Any response other than 401 is returned unmodified.
 3. On a 401 the client calls Refresh and, if that yields a new access
    token, dispatches the same descriptor once more.
 4. A second 401, or a refresh that fails, is returned as an *APIError
    with StatusCode 401.

The retry bound is an attempt count threaded through the call, not state on
the Request, so concurrent requests each get exactly one retry. Concurrent
refreshes are not deduplicated.

Refresh makes no network call when no refresh token is stored. When the
refresh endpoint rejects the token, or cannot be reached, both tokens are
deleted: the session cannot be recovered without logging in again.

Every dispatch runs under its own deadline (SDKClient.RequestTimeout, or
Request.Timeout) derived from the caller's context.

# Storage

Storage is a string key-value store with Get, Set and Delete. The SDK uses
the keys access_token, refresh_token, username and recentComparisons.
MemoryStorage is provided for tests and short-lived processes; persistent
drivers live with the dashboard.

# Session State

State is the observable login state. Subscribers are called on every change
(login, logout, rehydration, profile update, failed refresh):

	unsubscribe := client.State().Subscribe(func(s resalesdk.Snapshot) {
		fmt.Println("logged in:", s.Authenticated, s.Username)
	})
	defer unsubscribe()

	// On startup, derive the state from stored tokens
	snap, err := client.Rehydrate(ctx)

# Error Handling

  - *ValidationError: input failed client-side checks; nothing was sent
  - *APIError: the server answered with an error status
  - ErrNoRefreshToken, ErrRefreshFailed: wrapped by a 401 *APIError to say
    why the session could not be recovered

UserMessage renders any of these into text fit for a user, falling back to
GenericErrorMessage for transport and server failures.

# Thread Safety

SDKClient and State are safe for concurrent use.
*/
package resalesdk
