package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/busops/identity-service/internal/core/domain"
)

// TokenConfig configures JWTCodec.
type TokenConfig struct {
	Secret string
	// Now overrides the clock used for issuance and expiry checks.
	Now func() time.Time
}

// JWTCodec signs and verifies HS256 bearer tokens.
type JWTCodec struct {
	secret []byte
	now    func() time.Time
}

type jwtClaims struct {
	Email string           `json:"email,omitempty"`
	Type  domain.TokenType `json:"type"`
	jwt.RegisteredClaims
}

func NewJWTCodec(cfg TokenConfig) (*JWTCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &JWTCodec{secret: []byte(cfg.Secret), now: now}, nil
}

// Issue signs claims with a lifetime of ttl and returns the token and its
// expiry. Subject and Type are required; ID, IssuedAt and ExpiresAt are
// assigned by the codec.
func (c *JWTCodec) Issue(claims domain.TokenClaims, ttl time.Duration) (string, time.Time, error) {
	if ttl < time.Second {
		return "", time.Time{}, fmt.Errorf("token ttl must be at least one second, got %s", ttl)
	}
	if claims.Subject == "" {
		return "", time.Time{}, errors.New("token subject is required")
	}
	if !claims.Type.Valid() {
		return "", time.Time{}, fmt.Errorf("unknown token type %q", claims.Type)
	}

	// JWT dates have second precision.
	issuedAt := c.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Email: claims.Email,
		Type:  claims.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature, algorithm and expiry of token and returns its
// claims. Every failure wraps domain.ErrInvalidToken.
func (c *JWTCodec) Verify(token string) (*domain.TokenClaims, error) {
	var parsed jwtClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !parsed.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown token type %q", domain.ErrInvalidToken, parsed.Type)
	}

	claims := &domain.TokenClaims{
		ID:      parsed.ID,
		Subject: parsed.Subject,
		Email:   parsed.Email,
		Type:    parsed.Type,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, nil
}
