package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/membersonly/forum/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "first_name", "last_name", "email", "membership_status", "password_hash", "created_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`FROM users\s+WHERE username = \$1`).
		WithArgs("ada").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(7, "ada", "Ada", "Lovelace", "ada@example.com", "admin", "$2a$10$hash", created))

	user, err := repo.GetByUsername(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "Lovelace", user.LastName)
	assert.Equal(t, types.RoleAdmin, user.MembershipStatus)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)
	assert.Equal(t, created, user.CreatedAt)
}

func TestUserRepository_GetByUsernameNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM users\s+WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_GetByIDBackendError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnError(boom)

	_, err := repo.GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM users\s+ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(1, "ada", "Ada", "L", "a@x", "admin", "h1", now).
			AddRow(2, "bob", "Bob", "B", "b@x", "member", "h2", now))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, types.RoleMember, users[1].MembershipStatus)
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ada", "Ada", "Lovelace", "ada@example.com", "member", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))

	user, err := repo.Create(context.Background(), types.User{
		Username:         "ada",
		FirstName:        "Ada",
		LastName:         "Lovelace",
		Email:            "ada@example.com",
		MembershipStatus: types.RoleMember,
		PasswordHash:     "hash",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), user.ID)
	assert.Equal(t, now, user.CreatedAt)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.Create(context.Background(), types.User{Username: "ada", MembershipStatus: types.RoleMember})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`UPDATE users SET membership_status = \$1 WHERE username = \$2`).
		WithArgs("admin", "ada").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET membership_status = \$1 WHERE username = \$2`).
		WithArgs("admin", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateRole(context.Background(), "ada", types.RoleAdmin))
	assert.ErrorIs(t, repo.UpdateRole(context.Background(), "ghost", types.RoleAdmin), ErrNotFound)
}
