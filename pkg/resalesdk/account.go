package resalesdk

import (
	"context"
	"fmt"
	"net/http"
)

// ============================================================================
// Login / Logout
// ============================================================================

// Login exchanges username and password for a credential pair, stores
// both tokens and rehydrates the session state from the profile. If the
// profile cannot be fetched the session state stays logged out and the
// error is returned.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	body := LoginRequest{Username: username, Password: password}
	if err := invalid(body.Validate()); err != nil {
		return nil, err
	}

	req, err := NewJSONRequest(http.MethodPost, "/account/login/", body)
	if err != nil {
		return nil, err
	}

	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	var pair TokenPair
	if err := decodeJSON(resp, &pair, http.StatusOK); err != nil {
		return nil, err
	}

	if err := c.storeTokens(ctx, pair.Access, pair.Refresh); err != nil {
		return nil, err
	}

	if _, err := c.Rehydrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to load profile after login: %w", err)
	}

	return &pair, nil
}

// Logout forgets the session locally. The API keeps no server-side
// session, so nothing is sent.
func (c *SDKClient) Logout(ctx context.Context) error {
	err := deleteKeys(ctx, c.Storage, KeyAccessToken, KeyRefreshToken, KeyUsername)
	c.state.clear()
	return err
}

func (c *SDKClient) storeTokens(ctx context.Context, access, refresh string) error {
	if access == "" {
		return ErrMissingAccessToken
	}
	if err := c.Storage.Set(ctx, KeyAccessToken, access); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if refresh != "" {
		if err := c.Storage.Set(ctx, KeyRefreshToken, refresh); err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}
	}
	return nil
}

// ============================================================================
// Session rehydration
// ============================================================================

// Rehydrate derives the session state from storage: with an access token
// present the profile is fetched and, on success, the user is considered
// logged in and their username stored. Anything else leaves the state
// logged out. The returned snapshot is the state after the update.
func (c *SDKClient) Rehydrate(ctx context.Context) (Snapshot, error) {
	token, err := lookup(ctx, c.Storage, KeyAccessToken)
	if err != nil {
		c.state.clear()
		return c.state.Snapshot(), err
	}
	if token == "" {
		c.state.clear()
		return c.state.Snapshot(), nil
	}

	profile, err := c.Profile(ctx)
	if err != nil {
		c.state.clear()
		return c.state.Snapshot(), err
	}

	if err := c.Storage.Set(ctx, KeyUsername, profile.Username); err != nil {
		return c.state.Snapshot(), fmt.Errorf("failed to store username: %w", err)
	}

	// A refresh may have happened inside Profile; read the current token.
	token, _ = lookup(ctx, c.Storage, KeyAccessToken)
	c.state.set(Snapshot{
		Authenticated:   true,
		Username:        profile.Username,
		AccessExpiresAt: accessExpiry(token),
	})

	return c.state.Snapshot(), nil
}

// ============================================================================
// Signup / Profile
// ============================================================================

// Signup creates an account. If the server also returns a credential pair
// the user is logged in.
func (c *SDKClient) Signup(ctx context.Context, in SignupRequest) (*SignupResponse, error) {
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}

	req, err := NewJSONRequest(http.MethodPost, "/account/signup/", in)
	if err != nil {
		return nil, err
	}

	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	var out SignupResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	if out.Access != "" {
		if err := c.storeTokens(ctx, out.Access, out.Refresh); err != nil {
			return nil, err
		}
		_, _ = c.Rehydrate(ctx)
	}

	return &out, nil
}

// Profile fetches the current user.
func (c *SDKClient) Profile(ctx context.Context) (*Profile, error) {
	resp, err := c.Send(ctx, NewGetRequest("/account/user-profile/", nil))
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := decodeJSON(resp, &p, http.StatusOK); err != nil {
		return nil, err
	}

	return &p, nil
}

// UpdateProfile changes the username and/or email. The stored username and
// session state follow the server's answer.
func (c *SDKClient) UpdateProfile(ctx context.Context, in UpdateProfileRequest) (*UpdateProfileResponse, error) {
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}

	req, err := NewJSONRequest(http.MethodPut, "/account/update-profile/", in)
	if err != nil {
		return nil, err
	}

	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	var out UpdateProfileResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	if out.Username != "" {
		if err := c.Storage.Set(ctx, KeyUsername, out.Username); err != nil {
			return nil, fmt.Errorf("failed to store username: %w", err)
		}
		c.state.renamed(out.Username)
	}

	return &out, nil
}

// ============================================================================
// Password reset
// ============================================================================

// ForgotPassword asks the server to email a reset link.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) (*DetailResponse, error) {
	return c.postDetail(ctx, "/account/forgot-password/", ForgotPasswordRequest{Email: email})
}

// ResetPassword sets a new password using the token from the reset email.
func (c *SDKClient) ResetPassword(ctx context.Context, in ResetPasswordRequest) (*DetailResponse, error) {
	return c.postDetail(ctx, "/account/reset-password/", in)
}

type validatable interface {
	Validate() map[string]string
}

func (c *SDKClient) postDetail(ctx context.Context, path string, in validatable) (*DetailResponse, error) {
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}

	req, err := NewJSONRequest(http.MethodPost, path, in)
	if err != nil {
		return nil, err
	}

	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	var out DetailResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}
