package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"msgboard/internal/common"
	"msgboard/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPgUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users\b.*RETURNING\s+created_at`).
		WithArgs("u1", "alice", "alice@example.com", "hash", model.RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	u := &model.User{ID: "u1", Username: "alice", Email: "alice@example.com", HashedPassword: "hash", Role: model.RoleUser}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, created, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_Create_UniqueViolation(t *testing.T) {
	tests := []struct {
		constraint string
		message    string
	}{
		{"users_email_key", "Email is already registered"},
		{"users_username_key", "Username is already taken"},
		{"", "User with this username or email already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewPgUserRepository(db)

			mock.ExpectQuery(`INSERT\s+INTO\s+users`).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			err := repo.Create(context.Background(), &model.User{ID: "u1"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrConflict))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestPgUserRepository_Create_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &model.User{ID: "u1"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrConflict))
	assert.Regexp(t, regexp.MustCompile(`pgUserRepository.Create: db down`), err.Error())
}

func TestPgUserRepository_Find(t *testing.T) {
	created := time.Now().UTC()
	cols := []string{"id", "username", "email", "hashed_password", "role", "created_at"}

	t.Run("by email", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPgUserRepository(db)
		mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "alice", "alice@example.com", "hash", "user", created))

		u, err := repo.FindByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.Equal(t, "hash", u.HashedPassword)
	})

	t.Run("by id not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPgUserRepository(db)
		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(context.Background(), "missing")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("by id not a uuid", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPgUserRepository(db)
		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
			WithArgs("not-a-uuid").
			WillReturnError(&pgconn.PgError{Code: "22P02"})

		_, err := repo.FindByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("by username db error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPgUserRepository(db)
		mock.ExpectQuery(`SELECT .* FROM users WHERE username = \$1`).
			WithArgs("alice").
			WillReturnError(errors.New("boom"))

		_, err := repo.FindByUsername(context.Background(), "alice")
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrNotFound)
		assert.Contains(t, err.Error(), "pgUserRepository.FindByUsername")
	})
}
