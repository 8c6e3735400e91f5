package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/busops/identity-service/internal/core/domain"
)

type stubResolver struct {
	user *domain.User
	err  error
	got  string
}

func (s *stubResolver) ResolveIdentity(_ context.Context, token string) (*domain.User, error) {
	s.got = token
	return s.user, s.err
}

func runAuth(t *testing.T, resolver IdentityResolver, header string) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := Auth(resolver)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return c, called, err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	resolver := &stubResolver{user: &domain.User{ID: "u1", Email: "a@x.com", Status: domain.StatusActive}}

	c, called, err := runAuth(t, resolver, "Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if resolver.got != "abc.def.ghi" {
		t.Fatalf("resolver got %q", resolver.got)
	}
	u, ok := CurrentUser(c)
	if !ok || u.ID != "u1" {
		t.Fatalf("user not set in context: %+v", u)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	resolver := &stubResolver{user: &domain.User{ID: "u1"}}

	if _, called, err := runAuth(t, resolver, "bearer tok"); err != nil || !called {
		t.Fatalf("expected lowercase scheme to pass, err=%v", err)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	_, called, err := runAuth(t, &stubResolver{}, "")
	if called {
		t.Fatalf("should not reach next")
	}
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, h := range []string{"Token abc", "Bearer", "Bearer   "} {
		_, called, err := runAuth(t, &stubResolver{}, h)
		if called {
			t.Fatalf("%q: should not reach next", h)
		}
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%q: expected unauthorized, got %v", h, err)
		}
	}
}

func TestAuthMiddleware_ResolverErrorPassesThrough(t *testing.T) {
	forbidden := domain.AccountNotActive(domain.StatusSuspended)

	c, called, err := runAuth(t, &stubResolver{err: forbidden}, "Bearer tok")
	if called {
		t.Fatalf("should not reach next")
	}
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, ok := CurrentUser(c); ok {
		t.Fatalf("user must not be set on failure")
	}
}
