package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// HS256 signs and verifies tokens with a shared secret, which is how the
// account API issues them. Used by the resaletest fake server; a clock is
// injected so tests can expire tokens without sleeping.
type HS256 struct {
	key   []byte
	clock clockwork.Clock
}

func NewHS256(key []byte, clock clockwork.Clock) (*HS256, error) {
	if len(key) < 32 {
		return nil, fmt.Errorf("jwtx: hs256 key must be at least 32 bytes, got %d", len(key))
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HS256{key: key, clock: clock}, nil
}

func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

func (h *HS256) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(h.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and time claims against the injected clock.
func (h *HS256) Verify(token string) (Claims, error) {
	var c Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{h.Alg()}),
		jwt.WithTimeFunc(h.clock.Now),
	)

	_, err := parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return h.key, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return Claims{}, ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrMalformed
	default:
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}

	return c, nil
}
