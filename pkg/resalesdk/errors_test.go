package resalesdk

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantFields map[string][]string
	}{
		{
			name:       "detail",
			status:     http.StatusUnauthorized,
			body:       `{"detail": "Invalid credentials."}`,
			wantDetail: "Invalid credentials.",
		},
		{
			name:       "resale error",
			status:     http.StatusBadRequest,
			body:       `{"error": "Invalid date format. Use YYYY-MM."}`,
			wantDetail: "Invalid date format. Use YYYY-MM.",
		},
		{
			name:   "field lists",
			status: http.StatusBadRequest,
			body:   `{"username": ["A user with that username already exists."], "email": ["Enter a valid email address.", "Too long."]}`,
			wantFields: map[string][]string{
				"username": {"A user with that username already exists."},
				"email":    {"Enter a valid email address.", "Too long."},
			},
		},
		{
			name:       "field string",
			status:     http.StatusBadRequest,
			body:       `{"non_field_errors": "Passwords do not match."}`,
			wantFields: map[string][]string{"non_field_errors": {"Passwords do not match."}},
		},
		{
			name:   "html",
			status: http.StatusBadGateway,
			body:   `<html>Bad Gateway</html>`,
		},
		{
			name:   "array body",
			status: http.StatusBadRequest,
			body:   `["nope"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := parseErrorResponse(&http.Response{StatusCode: tt.status}, []byte(tt.body))
			require.Equal(t, tt.status, err.StatusCode)
			require.Equal(t, tt.wantDetail, err.Detail)
			require.Equal(t, tt.wantFields, err.Fields)
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "api error (status 400): boom", (&APIError{StatusCode: 400, Detail: "boom"}).Error())
	require.Equal(t, "api error (status 400): a, b", (&APIError{
		StatusCode: 400,
		Fields:     map[string][]string{"y": {"b"}, "x": {"a"}},
	}).Error())
	require.Equal(t, "api error (status 503): Service Unavailable", (&APIError{StatusCode: 503}).Error())
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{
			"validation",
			&ValidationError{Fields: map[string]string{"password": "Too short.", "email": "Bad email."}},
			"Bad email., Too short.",
		},
		{
			"server fields",
			&APIError{StatusCode: 400, Fields: map[string][]string{"username": {"Taken."}}},
			"Taken.",
		},
		{"server detail", &APIError{StatusCode: 401, Detail: "Invalid credentials."}, "Invalid credentials."},
		{"wrapped", fmt.Errorf("login: %w", &APIError{StatusCode: 400, Detail: "Nope."}), "Nope."},
		{"server error", &APIError{StatusCode: 500, Detail: "Traceback..."}, GenericErrorMessage},
		{"empty 4xx", &APIError{StatusCode: 404}, GenericErrorMessage},
		{"transport", errors.New("dial tcp: connection refused"), GenericErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	t.Parallel()

	err := &APIError{StatusCode: http.StatusUnauthorized, Err: ErrNoRefreshToken}
	require.True(t, IsUnauthorized(err))
	require.ErrorIs(t, err, ErrNoRefreshToken)

	require.False(t, IsUnauthorized(&APIError{StatusCode: http.StatusForbidden}))
	require.False(t, IsUnauthorized(errors.New("x")))
}
