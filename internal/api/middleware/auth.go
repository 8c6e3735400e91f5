package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/busops/identity-service/internal/api/metrics"
	"github.com/busops/identity-service/internal/core/domain"
)

// ContextKeyUser is the echo.Context key holding the authenticated *domain.User.
const ContextKeyUser = "user"

// IdentityResolver turns an access token into an active identity.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (*domain.User, error)
}

// Auth resolves the bearer token and injects the identity into context.
func Auth(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.Unauthorized("missing authorization header")
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				return domain.Unauthorized("invalid authorization header")
			}

			start := time.Now()
			user, err := resolver.ResolveIdentity(c.Request().Context(), token)
			metrics.Observe(metrics.OpResolve, start, err)
			if err != nil {
				return err
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

// CurrentUser returns the identity stored by Auth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	u, ok := c.Get(ContextKeyUser).(*domain.User)
	return u, ok && u != nil
}
