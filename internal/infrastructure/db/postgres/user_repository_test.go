package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busops/identity-service/internal/core/domain"
)

const testUserID = "0b8f2c1e-6a4d-4c1b-9f3e-2d7a5b9c8e10"

var columns = []string{
	"user_id", "email", "phone", "password_hash", "first_name", "last_name",
	"role", "status", "profile_image", "date_of_birth", "gender",
	"email_verified", "phone_verified", "created_at", "updated_at",
}

func userRow(role, status string) *pgxmock.Rows {
	ts := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	return pgxmock.NewRows(columns).AddRow(
		testUserID, "a@x.com", "5551234567", "$2a$04$hash", "A", "B",
		role, status, nil, nil, nil,
		true, false, ts, ts,
	)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		check     func(t *testing.T, u *domain.User)
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM busops_users_tbl WHERE email = \$1`).
					WithArgs("a@x.com").
					WillReturnRows(userRow("depot_manager", "active"))
			},
			check: func(t *testing.T, u *domain.User) {
				assert.Equal(t, testUserID, u.ID)
				assert.Equal(t, domain.RoleDepotManager, u.Role)
				assert.Equal(t, domain.StatusActive, u.Status)
				assert.Equal(t, "$2a$04$hash", u.PasswordHash)
				assert.True(t, u.EmailVerified)
				assert.Nil(t, u.ProfileImage)
			},
		},
		{
			name: "not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM busops_users_tbl WHERE email = \$1`).
					WithArgs("a@x.com").
					WillReturnRows(pgxmock.NewRows(columns))
			},
			wantErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			u, err := NewUserRepository(mock).FindByEmail(context.Background(), "a@x.com")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				tt.check(t, u)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_FindByPhone_StoreError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .+ FROM busops_users_tbl WHERE phone = \$1`).
		WithArgs("5551234567").
		WillReturnError(errors.New("connection refused"))

	_, err = NewUserRepository(mock).FindByPhone(context.Background(), "5551234567")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUserNotFound)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .+ FROM busops_users_tbl WHERE user_id = \$1`).
		WithArgs(testUserID).
		WillReturnRows(userRow("driver", "suspended"))

	repo := NewUserRepository(mock)

	u, err := repo.FindByID(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuspended, u.Status)

	// malformed ids never reach the database
	_, err = repo.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID_CorruptRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .+ FROM busops_users_tbl WHERE user_id = \$1`).
		WithArgs(testUserID).
		WillReturnRows(userRow("pilot", "active"))

	_, err = NewUserRepository(mock).FindByID(context.Background(), testUserID)
	require.Error(t, err)
	assert.Empty(t, domain.KindOf(err))
}

func TestUserRepository_Create(t *testing.T) {
	input := domain.NewUser{
		Email:        "a@x.com",
		Phone:        "5551234567",
		PasswordHash: "$2a$04$hash",
		FirstName:    "A",
		LastName:     "B",
		Role:         domain.RoleDriver,
	}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO busops_users_tbl .+ RETURNING`).
					WithArgs(pgxmock.AnyArg(), "a@x.com", "5551234567", "$2a$04$hash", "A", "B", "driver", "active").
					WillReturnRows(userRow("driver", "active"))
			},
		},
		{
			name: "duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO busops_users_tbl`).
					WithArgs(pgxmock.AnyArg(), "a@x.com", "5551234567", "$2a$04$hash", "A", "B", "driver", "active").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintEmail})
			},
			wantErr: domain.ErrEmailTaken,
		},
		{
			name: "duplicate phone",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO busops_users_tbl`).
					WithArgs(pgxmock.AnyArg(), "a@x.com", "5551234567", "$2a$04$hash", "A", "B", "driver", "active").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintPhone})
			},
			wantErr: domain.ErrPhoneTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			u, err := NewUserRepository(mock).Create(context.Background(), input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrConflict)
			} else {
				require.NoError(t, err)
				assert.Equal(t, testUserID, u.ID)
				assert.Equal(t, domain.StatusActive, u.Status)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Create_OtherConstraint(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO busops_users_tbl`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "first_name"})

	_, err = NewUserRepository(mock).Create(context.Background(), domain.NewUser{Role: domain.RoleDriver})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/busops", migrateURL("postgres://u:p@db:5432/busops"))
	assert.Equal(t, "pgx5://u:p@db/busops", migrateURL("postgresql://u:p@db/busops"))
	assert.Equal(t, "pgx5://db/busops", migrateURL("pgx5://db/busops"))
}
