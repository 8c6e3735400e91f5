package ports

import (
	"time"

	"github.com/busops/identity-service/internal/core/domain"
)

// PasswordHasher hashes credentials at rest.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify never fails loudly: a malformed digest simply does not match.
	Verify(password, digest string) bool
}

// TokenCodec mints and verifies signed bearer tokens.
type TokenCodec interface {
	Issue(claims domain.TokenClaims, ttl time.Duration) (token string, expiresAt time.Time, err error)
	// Verify returns an error wrapping domain.ErrInvalidToken on any failure.
	Verify(token string) (*domain.TokenClaims, error)
}
