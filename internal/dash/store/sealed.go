package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/hdbdash/pkg/cryptox"
)

// Reserved keys used by Sealed inside the wrapped store.
const (
	sealSaltKey  = "_seal_salt"
	sealCheckKey = "_seal_check"
	sealCheck    = "hdbdash"
)

// ErrWrongPassphrase is returned when stored values were sealed under a
// different passphrase.
var ErrWrongPassphrase = errors.New("store: wrong passphrase")

// Sealed encrypts every value before handing it to the wrapped Store. The
// key is derived from a passphrase and a random salt kept alongside the
// data, and each value is bound to its storage key.
type Sealed struct {
	inner  Store
	sealer *cryptox.Sealer
}

// NewSealed wraps inner. On first use a salt is generated and stored; later
// opens must use the same passphrase or fail with ErrWrongPassphrase.
func NewSealed(ctx context.Context, inner Store, passphrase string) (*Sealed, error) {
	if passphrase == "" {
		return nil, errors.New("store: empty passphrase")
	}

	salt, fresh, err := loadSalt(ctx, inner)
	if err != nil {
		return nil, err
	}

	sealer, err := cryptox.NewSealer(cryptox.DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	s := &Sealed{inner: inner, sealer: sealer}

	if fresh {
		if err := s.Set(ctx, sealCheckKey, sealCheck); err != nil {
			return nil, err
		}
		return s, nil
	}

	check, err := s.Get(ctx, sealCheckKey)
	if err != nil {
		return nil, err
	}
	if check != sealCheck {
		return nil, ErrWrongPassphrase
	}

	return s, nil
}

func loadSalt(ctx context.Context, inner Store) (salt []byte, fresh bool, err error) {
	encoded, err := inner.Get(ctx, sealSaltKey)
	switch {
	case err == nil:
		salt, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, false, fmt.Errorf("store: corrupt salt: %w", err)
		}
		return salt, false, nil
	case errors.Is(err, ErrNotFound):
	default:
		return nil, false, err
	}

	salt, err = cryptox.NewSalt()
	if err != nil {
		return nil, false, err
	}
	if err := inner.Set(ctx, sealSaltKey, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, false, fmt.Errorf("store: failed to save salt: %w", err)
	}
	return salt, true, nil
}

func (s *Sealed) Get(ctx context.Context, key string) (string, error) {
	encoded, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("store: corrupt value for %s: %w", key, err)
	}

	plain, err := s.sealer.Open(sealed, []byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrWrongPassphrase, key, err)
	}
	return string(plain), nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	sealed, err := s.sealer.Seal([]byte(value), []byte(key))
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *Sealed) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

func (s *Sealed) Close() error { return s.inner.Close() }
