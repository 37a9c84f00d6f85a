package resaletest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/hdbdash/pkg/cryptox"
	"github.com/aussiebroadwan/hdbdash/pkg/httpx"
	"github.com/aussiebroadwan/hdbdash/pkg/idx"
	"github.com/aussiebroadwan/hdbdash/pkg/jwtx"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
)

type user struct {
	id           string
	username     string
	email        string
	firstName    string
	lastName     string
	passwordHash string
	joined       string
}

// AddUser registers an account directly, bypassing signup.
func (s *Server) AddUser(username, email, password string) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.addUserLocked(username, email, hash)
}

func (s *Server) addUserLocked(username, email, hash string) *user {
	u := &user{
		id:           idx.New().String(),
		username:     username,
		email:        email,
		passwordHash: hash,
		joined:       s.Clock.Now().Format("2006-01-02"),
	}
	s.users[u.id] = u
	return u
}

// IssueTokens mints a credential pair for an existing user.
func (s *Server) IssueTokens(username string) (access, refresh string) {
	s.mu.Lock()
	u := s.userByNameLocked(username)
	s.mu.Unlock()
	if u == nil {
		panic("resaletest: unknown user " + username)
	}

	access, err := s.issue(u, jwtx.TokenTypeAccess, s.AccessTTL)
	if err != nil {
		panic(err)
	}
	refresh, err = s.issue(u, jwtx.TokenTypeRefresh, s.RefreshTTL)
	if err != nil {
		panic(err)
	}
	return access, refresh
}

// ResetToken returns the most recent password reset token sent to email.
func (s *Server) ResetToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outbox[email]
}

func (s *Server) userByNameLocked(username string) *user {
	for _, u := range s.users {
		if u.username == username {
			return u
		}
	}
	return nil
}

func (s *Server) userByEmailLocked(email string) *user {
	for _, u := range s.users {
		if strings.EqualFold(u.email, email) {
			return u
		}
	}
	return nil
}

// ============================================================================
// Handlers
// ============================================================================

// fieldErrors mirrors the API's {"field": ["message"]} validation bodies.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) { f[field] = append(f[field], msg) }

func (f fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, "This field is required.")
	}
}

func (f fieldErrors) write(w http.ResponseWriter) bool {
	if len(f) == 0 {
		return false
	}
	httpx.WriteJSON(w, http.StatusBadRequest, f)
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, "JSON parse error.")
		return false
	}
	return true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in resalesdk.LoginRequest
	if !decodeBody(w, r, &in) {
		return
	}

	errs := fieldErrors{}
	errs.required("username", in.Username)
	errs.required("password", in.Password)
	if errs.write(w) {
		return
	}

	s.mu.Lock()
	u := s.userByNameLocked(in.Username)
	var hash string
	if u != nil {
		hash = u.passwordHash
	}
	s.mu.Unlock()
	if u == nil || cryptox.VerifyPassword(in.Password, hash) != nil {
		httpx.WriteDetail(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	access, err := s.issue(u, jwtx.TokenTypeAccess, s.AccessTTL)
	if err != nil {
		httpx.WriteDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	refresh, err := s.issue(u, jwtx.TokenTypeRefresh, s.RefreshTTL)
	if err != nil {
		httpx.WriteDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resalesdk.TokenPair{
		Access:  access,
		Refresh: refresh,
		Detail:  "Login successful!",
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in resalesdk.SignupRequest
	if !decodeBody(w, r, &in) {
		return
	}

	errs := fieldErrors{}
	errs.required("username", in.Username)
	errs.required("email", in.Email)
	errs.required("password", in.Password)
	if in.Password != in.ConfirmPassword {
		errs.add("password", "Passwords do not match.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Username != "" && s.userByNameLocked(in.Username) != nil {
		errs.add("username", "A user with that username already exists.")
	}
	if in.Email != "" && s.userByEmailLocked(in.Email) != nil {
		errs.add("email", "This email is already in use.")
	}
	if errs.write(w) {
		return
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		httpx.WriteDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.addUserLocked(in.Username, in.Email, hash)

	httpx.WriteDetail(w, http.StatusCreated, "Signup successful!")
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	s.mu.Lock()
	down, rotate := s.refreshDown, s.rotate
	s.mu.Unlock()

	claims, err := s.signer.Verify(in.Refresh)
	if down || err != nil || claims.ValidateType(jwtx.TokenTypeRefresh) != nil {
		httpx.WriteDetail(w, http.StatusUnauthorized, "Invalid refresh token.")
		return
	}

	s.mu.Lock()
	u := s.users[claims.UserID]
	s.mu.Unlock()
	if u == nil {
		httpx.WriteDetail(w, http.StatusUnauthorized, "Invalid refresh token.")
		return
	}

	out := map[string]string{}
	if out["access"], err = s.issue(u, jwtx.TokenTypeAccess, s.AccessTTL); err != nil {
		httpx.WriteDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rotate {
		if out["refresh"], err = s.issue(u, jwtx.TokenTypeRefresh, s.RefreshTTL); err != nil {
			httpx.WriteDetail(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	p := resalesdk.Profile{
		Username:   u.username,
		Email:      u.email,
		FirstName:  u.firstName,
		LastName:   u.lastName,
		DateJoined: u.joined,
	}
	s.mu.Unlock()

	httpx.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, u *user) {
	var in resalesdk.UpdateProfileRequest
	if !decodeBody(w, r, &in) {
		return
	}

	errs := fieldErrors{}
	errs.required("password", in.Password)
	if errs.write(w) {
		return
	}
	s.mu.Lock()
	hash := u.passwordHash
	s.mu.Unlock()
	if cryptox.VerifyPassword(in.Password, hash) != nil {
		errs.add("password", "Incorrect password.")
		errs.write(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Username != "" && in.Username != u.username && s.userByNameLocked(in.Username) != nil {
		errs.add("username", "A user with that username already exists.")
	}
	if errs.write(w) {
		return
	}

	if in.Username != "" {
		u.username = in.Username
	}
	if in.Email != "" {
		u.email = in.Email
	}

	httpx.WriteJSON(w, http.StatusOK, resalesdk.UpdateProfileResponse{Username: u.username, Email: u.email})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in resalesdk.ForgotPasswordRequest
	if !decodeBody(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByEmailLocked(in.Email)
	if u == nil {
		fieldErrors{"email": {"No user is registered with this email address."}}.write(w)
		return
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		httpx.WriteDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	for t, id := range s.resets {
		if id == u.id {
			delete(s.resets, t)
		}
	}
	s.resets[cryptox.FingerprintToken(token)] = u.id
	s.outbox[u.email] = token

	httpx.WriteDetail(w, http.StatusOK, "Password reset instructions sent to your email.")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resalesdk.ResetPasswordRequest
	if !decodeBody(w, r, &in) {
		return
	}

	errs := fieldErrors{}
	errs.required("token", in.Token)
	errs.required("new_password", in.NewPassword)
	if in.NewPassword != in.ConfirmNewPassword {
		errs.add("confirm_new_password", "Passwords do not match.")
	}
	if errs.write(w) {
		return
	}

	hash, err := cryptox.HashPassword(in.NewPassword)
	if err != nil {
		httpx.WriteDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fp := cryptox.FingerprintToken(in.Token)
	id, ok := s.resets[fp]
	u := s.users[id]
	if !ok || u == nil {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid token.")
		return
	}
	u.passwordHash = hash
	delete(s.resets, fp)
	delete(s.outbox, u.email)

	httpx.WriteDetail(w, http.StatusOK, "Password has been reset successfully.")
}
