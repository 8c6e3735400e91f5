package ports

import (
	"context"

	"github.com/busops/identity-service/internal/core/domain"
)

// RegisterInput carries the fields accepted at self-registration. Role may be
// empty, in which case the configured default role is assigned.
type RegisterInput struct {
	Email     string
	Phone     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User   *domain.User
	Tokens domain.TokenPair
}

// AuthService is the credential issuance and verification boundary.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	// ResolveIdentity returns the active user behind an access token.
	ResolveIdentity(ctx context.Context, accessToken string) (*domain.User, error)
}
