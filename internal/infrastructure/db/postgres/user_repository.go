package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/busops/identity-service/internal/core/domain"
)

const (
	constraintEmail = "busops_users_email_key"
	constraintPhone = "busops_users_phone_key"

	userColumns = `user_id::text, email, phone, password_hash, first_name, last_name,
		role::text, status::text, profile_image, date_of_birth, gender,
		email_verified, phone_verified, created_at, updated_at`
)

// poolIface is the subset of pgxpool.Pool used by the repository.
type poolIface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	pool poolIface
}

func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email", `SELECT `+userColumns+` FROM busops_users_tbl WHERE email = $1`, email)
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, "phone", `SELECT `+userColumns+` FROM busops_users_tbl WHERE phone = $1`, phone)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	// ids are UUIDs; anything else cannot match a row
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, "user_id", `SELECT `+userColumns+` FROM busops_users_tbl WHERE user_id = $1`, id)
}

// Create inserts a new active user. The email and phone unique constraints are
// authoritative; a violation is reported as the matching conflict.
func (r *UserRepository) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO busops_users_tbl (user_id, email, phone, password_hash, first_name, last_name, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		uuid.NewString(),
		in.Email,
		in.Phone,
		in.PasswordHash,
		in.FirstName,
		in.LastName,
		string(in.Role),
		string(domain.StatusActive),
	)

	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if pgErr.ConstraintName == constraintPhone {
				return nil, domain.ErrPhoneTaken
			}
			return nil, domain.ErrEmailTaken
		}
		return nil, oops.Code("USER_INSERT_FAILED").With("table", "busops_users_tbl").Wrap(err)
	}
	return u, nil
}

func (r *UserRepository) findOne(ctx context.Context, key, query string, arg any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, oops.Code("USER_LOOKUP_FAILED").With("key", key).Wrap(err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u      domain.User
		role   string
		status string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&role,
		&status,
		&u.ProfileImage,
		&u.DateOfBirth,
		&u.Gender,
		&u.EmailVerified,
		&u.PhoneVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Role = domain.Role(role)
	if !u.Role.Valid() {
		return nil, oops.Code("USER_CORRUPT").With("user_id", u.ID).Errorf("unknown role %q", role)
	}
	u.Status = domain.UserStatus(status)
	switch u.Status {
	case domain.StatusActive, domain.StatusInactive, domain.StatusSuspended:
	default:
		return nil, oops.Code("USER_CORRUPT").With("user_id", u.ID).Errorf("unknown status %q", status)
	}
	return &u, nil
}
