package domain

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(string(r))
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", r, err)
		}
		if got != r {
			t.Fatalf("ParseRole(%q) = %q", r, got)
		}
	}

	if got, err := ParseRole(" Depot_Manager "); err != nil || got != RoleDepotManager {
		t.Fatalf("expected case-insensitive match, got %q, %v", got, err)
	}

	if _, err := ParseRole("pilot"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected invalid kind for unknown role, got %v", err)
	}
}

func TestParseUserStatus(t *testing.T) {
	if st, err := ParseUserStatus("SUSPENDED"); err != nil || st != StatusSuspended {
		t.Fatalf("unexpected result: %q, %v", st, err)
	}
	if _, err := ParseUserStatus("banned"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
}

func TestUserStatus_CanAuthenticate(t *testing.T) {
	cases := map[UserStatus]bool{
		StatusActive:    true,
		StatusInactive:  false,
		StatusSuspended: false,
		UserStatus(""):  false,
	}
	for st, want := range cases {
		if got := st.CanAuthenticate(); got != want {
			t.Errorf("%q.CanAuthenticate() = %v, want %v", st, got, want)
		}
	}
}

func TestUser_Sanitized(t *testing.T) {
	u := &User{ID: "u1", Email: "a@x.com", PasswordHash: "$2a$12$abc"}
	clean := u.Sanitized()

	if clean.PasswordHash != "" {
		t.Fatalf("expected hash to be stripped")
	}
	if u.PasswordHash == "" {
		t.Fatalf("original must not be mutated")
	}
	if clean.ID != u.ID || clean.Email != u.Email {
		t.Fatalf("identity fields lost: %+v", clean)
	}
	if (*User)(nil).Sanitized() != nil {
		t.Fatalf("nil user should stay nil")
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	err := AccountNotActive(StatusSuspended)

	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden kind")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatalf("forbidden must not match unauthorized")
	}
	if err.Error() != "account is suspended" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if KindOf(err) != KindForbidden {
		t.Fatalf("unexpected kind: %q", KindOf(err))
	}

	wrapped := errors.Join(errors.New("context"), ErrEmailTaken)
	if !errors.Is(wrapped, ErrConflict) || !errors.Is(wrapped, ErrEmailTaken) {
		t.Fatalf("wrapped conflict not matched")
	}
	if errors.Is(ErrEmailTaken, ErrPhoneTaken) {
		t.Fatalf("distinct conflict messages must not match each other")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatalf("plain errors have no kind")
	}
}
