package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/busops/identity-service/internal/core/domain"
	"github.com/busops/identity-service/internal/core/ports"
)

const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// AuthConfig holds the token lifetimes and registration defaults. It is
// copied at construction and never changes afterwards.
type AuthConfig struct {
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	DefaultRole domain.Role
}

// AuthService implements registration, login, token refresh and identity
// resolution.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenCodec
	cfg    AuthConfig
	log    zerolog.Logger

	// verified against when the email is unknown so login timing does not
	// depend on whether the account exists
	dummyHash string
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenCodec,
	cfg AuthConfig,
	log zerolog.Logger,
) (*AuthService, error) {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.DefaultRole == "" {
		cfg.DefaultRole = domain.RoleDriver
	}
	if !cfg.DefaultRole.Valid() {
		return nil, fmt.Errorf("invalid default role %q", cfg.DefaultRole)
	}

	dummy, err := hasher.Hash("busops-login-timing")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		cfg:       cfg,
		log:       log,
		dummyHash: dummy,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := normalizeEmail(in.Email)
	phone := strings.TrimSpace(in.Phone)
	if email == "" || phone == "" {
		return nil, domain.Invalid("email and phone are required")
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, domain.Invalid("first and last name are required")
	}

	role := s.cfg.DefaultRole
	if in.Role != "" {
		r, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}

	// Email is checked first so a double conflict reports the email.
	if err := s.ensureAvailable(ctx, s.users.FindByEmail, email, domain.ErrEmailTaken); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, s.users.FindByPhone, phone, domain.ErrPhoneTaken); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	// The store constraint is authoritative; a concurrent registration that
	// slipped past the checks above surfaces here as the same conflict.
	user, err := s.users.Create(ctx, domain.NewUser{
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		s.log.Error().Err(err).Msg("failed to create user")
		return nil, fmt.Errorf("register: %w", err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return &ports.AuthResult{User: user.Sanitized(), Tokens: *pair}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		return nil, domain.Unauthorized(domain.MsgInvalidCredentials)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("login lookup failed")
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.Unauthorized(domain.MsgInvalidCredentials)
	}

	if !user.Status.CanAuthenticate() {
		return nil, domain.AccountNotActive(user.Status)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.AuthResult{User: user.Sanitized(), Tokens: *pair}, nil
}

// RefreshToken exchanges a refresh token for a new pair. The presented token
// stays valid until it expires.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("refresh token rejected")
		return nil, domain.Unauthorized(domain.MsgInvalidRefresh)
	}
	if claims.Type != domain.TokenTypeRefresh {
		return nil, domain.Unauthorized(domain.MsgInvalidTokenType)
	}

	user, err := s.lookupSubject(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	return s.issuePair(user)
}

// ResolveIdentity returns the active identity an access token was issued to.
func (s *AuthService) ResolveIdentity(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("access token rejected")
		return nil, domain.Unauthorized(domain.MsgInvalidToken)
	}
	if claims.Type != domain.TokenTypeAccess {
		return nil, domain.Unauthorized(domain.MsgInvalidTokenType)
	}
	if claims.Subject == "" {
		return nil, domain.Invalid(domain.MsgInvalidPayload)
	}

	user, err := s.lookupSubject(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !user.Status.CanAuthenticate() {
		return nil, domain.AccountNotActive(user.Status)
	}

	return user.Sanitized(), nil
}

func (s *AuthService) ensureAvailable(
	ctx context.Context,
	find func(context.Context, string) (*domain.User, error),
	key string,
	taken error,
) error {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		s.log.Error().Err(err).Msg("uniqueness lookup failed")
		return fmt.Errorf("register: %w", err)
	}
}

func (s *AuthService) lookupSubject(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.Unauthorized(domain.MsgUserNotFound)
	}
	if err != nil {
		s.log.Error().Err(err).Str("user_id", id).Msg("subject lookup failed")
		return nil, fmt.Errorf("lookup subject: %w", err)
	}
	return user, nil
}

func (s *AuthService) issuePair(user *domain.User) (*domain.TokenPair, error) {
	access, _, err := s.tokens.Issue(domain.TokenClaims{
		Subject: user.ID,
		Email:   user.Email,
		Type:    domain.TokenTypeAccess,
	}, s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, _, err := s.tokens.Issue(domain.TokenClaims{
		Subject: user.ID,
		Email:   user.Email,
		Type:    domain.TokenTypeRefresh,
	}, s.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    domain.BearerTokenType,
		ExpiresIn:    int64(s.cfg.AccessTTL / time.Second),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
