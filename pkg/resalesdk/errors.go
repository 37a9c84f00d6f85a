package resalesdk

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// GenericErrorMessage is shown when the server gave nothing presentable.
const GenericErrorMessage = "An error occurred. Please try again."

var (
	// ErrNoRefreshToken is returned by Refresh when no refresh token is stored.
	ErrNoRefreshToken = errors.New("resalesdk: no refresh token stored")

	// ErrRefreshFailed wraps any failure of the refresh exchange itself.
	ErrRefreshFailed = errors.New("resalesdk: token refresh failed")

	// ErrMissingAccessToken is returned when a login or signup response
	// carries no access token.
	ErrMissingAccessToken = errors.New("resalesdk: response did not include an access token")

	// ErrNotAuthenticated is returned by operations that need a logged-in
	// session when no access token is stored.
	ErrNotAuthenticated = errors.New("resalesdk: not authenticated")
)

// ============================================================================
// APIError
// ============================================================================

// APIError is a non-success response from the API.
//
// The account endpoints answer with {"detail": "..."} or with a map of
// field name to a list of messages; the resale endpoints use
// {"error": "..."}. Detail carries whichever single message was present.
type APIError struct {
	StatusCode int
	Detail     string
	Fields     map[string][]string

	// Err is set on a 401 that could not be recovered and explains why the
	// refresh did not help (ErrNoRefreshToken or ErrRefreshFailed).
	Err error
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" && len(e.Fields) > 0 {
		msg = strings.Join(e.FieldMessages(), ", ")
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, msg)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is an unrecovered 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// FieldMessages flattens Fields in field name order.
func (e *APIError) FieldMessages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var out []string
	for _, k := range keys {
		out = append(out, e.Fields[k]...)
	}
	return out
}

// ============================================================================
// ValidationError
// ============================================================================

// ValidationError is returned before any network call when input fails
// client-side checks. Fields maps the JSON field name to a message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), ", ")
}

// Messages returns the messages in field name order.
func (e *ValidationError) Messages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.Fields[k])
	}
	return out
}

// ============================================================================
// Presentation
// ============================================================================

// UserMessage turns err into a string fit to show a user. Validation
// messages and server supplied messages are returned verbatim; anything
// else (transport failures, 5xx, unparsable bodies) becomes
// GenericErrorMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return strings.Join(valErr.Messages(), ", ")
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		if len(apiErr.Fields) > 0 {
			return strings.Join(apiErr.FieldMessages(), ", ")
		}
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
	}

	return GenericErrorMessage
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse builds an *APIError from a response body.
func parseErrorResponse(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	if !gjson.ValidBytes(body) {
		return apiErr
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return apiErr
	}

	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		switch {
		case name == "detail" || name == "error":
			if apiErr.Detail == "" {
				apiErr.Detail = value.String()
			}
		case value.IsArray():
			for _, m := range value.Array() {
				if s := m.String(); s != "" {
					apiErr.addField(name, s)
				}
			}
		case value.Type == gjson.String:
			apiErr.addField(name, value.String())
		}
		return true
	})

	return apiErr
}

func (e *APIError) addField(name, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[name] = append(e.Fields[name], msg)
}
