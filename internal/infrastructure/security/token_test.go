package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busops/identity-service/internal/core/domain"
)

const testSecret = "test-secret-key"

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newCodec(t *testing.T, secret string, clock *fakeClock) *JWTCodec {
	t.Helper()
	c, err := NewJWTCodec(TokenConfig{Secret: secret, Now: clock.Now})
	require.NoError(t, err)
	return c
}

func accessClaims() domain.TokenClaims {
	return domain.TokenClaims{Subject: "user-1", Email: "driver@busops.io", Type: domain.TokenTypeAccess}
}

func TestJWTCodec_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	codec := newCodec(t, testSecret, clock)

	token, exp, err := codec.Issue(accessClaims(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(30*time.Minute), exp)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "driver@busops.io", claims.Email)
	assert.Equal(t, domain.TokenTypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.IssuedAt.Equal(clock.now))
	assert.True(t, claims.ExpiresAt.Equal(exp))
}

func TestJWTCodec_PreservesTokenType(t *testing.T) {
	codec := newCodec(t, testSecret, &fakeClock{now: time.Now()})

	in := accessClaims()
	in.Type = domain.TokenTypeRefresh
	token, _, err := codec.Issue(in, 7*24*time.Hour)
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenTypeRefresh, claims.Type)
}

func TestJWTCodec_ExpiryBoundary(t *testing.T) {
	issued := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issued}
	codec := newCodec(t, testSecret, clock)

	token, _, err := codec.Issue(accessClaims(), 30*time.Minute)
	require.NoError(t, err)

	clock.now = issued.Add(30*time.Minute - time.Second)
	_, err = codec.Verify(token)
	require.NoError(t, err)

	clock.now = issued.Add(30 * time.Minute)
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	clock.now = issued.Add(31 * time.Minute)
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_RejectsForeignKey(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	token, _, err := newCodec(t, "other-key", clock).Issue(accessClaims(), time.Hour)
	require.NoError(t, err)

	_, err = newCodec(t, testSecret, clock).Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_RejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	codec := newCodec(t, testSecret, clock)
	claims := jwt.MapClaims{
		"sub":  "user-1",
		"type": "access",
		"iat":  clock.now.Unix(),
		"exp":  clock.now.Add(time.Hour).Unix(),
	}

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = codec.Verify(hs384)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = codec.Verify(none)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_RejectsMissingExpiry(t *testing.T) {
	codec := newCodec(t, testSecret, &fakeClock{now: time.Now()})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-1",
		"type": "access",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_RejectsUnknownType(t *testing.T) {
	now := time.Now()
	codec := newCodec(t, testSecret, &fakeClock{now: now})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-1",
		"type": "session",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_RejectsGarbage(t *testing.T) {
	codec := newCodec(t, testSecret, &fakeClock{now: time.Now()})

	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := codec.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "token %q", tok)
	}
}

func TestJWTCodec_UniqueTokenIDs(t *testing.T) {
	codec := newCodec(t, testSecret, &fakeClock{now: time.Now()})

	a, _, err := codec.Issue(accessClaims(), time.Hour)
	require.NoError(t, err)
	b, _, err := codec.Issue(accessClaims(), time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestJWTCodec_IssueValidation(t *testing.T) {
	codec := newCodec(t, testSecret, &fakeClock{now: time.Now()})

	_, _, err := codec.Issue(accessClaims(), 0)
	assert.Error(t, err)

	_, _, err = codec.Issue(domain.TokenClaims{Type: domain.TokenTypeAccess}, time.Hour)
	assert.Error(t, err)

	_, _, err = codec.Issue(domain.TokenClaims{Subject: "u", Type: "bogus"}, time.Hour)
	assert.Error(t, err)

	_, err = NewJWTCodec(TokenConfig{})
	assert.Error(t, err)
}
