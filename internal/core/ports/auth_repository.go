package ports

import (
	"context"

	"github.com/busops/identity-service/internal/core/domain"
)

// UserRepository is the credential store gateway. Lookups return
// domain.ErrUserNotFound when nothing matches. Create must enforce email and
// phone uniqueness itself and report violations as domain.ErrEmailTaken or
// domain.ErrPhoneTaken.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user domain.NewUser) (*domain.User, error)
}
