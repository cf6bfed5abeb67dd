package userrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/pkg/paging"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func userRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "username", "password_hash", "role"})
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		id        int64
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name: "User found",
			id:   1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
					WithArgs(int64(1)).
					WillReturnRows(userRows().AddRow(int64(1), "test_user", "hashed_password", domain.RoleUser))
			},
			result: &domain.User{
				ID:           1,
				Username:     "test_user",
				PasswordHash: "hashed_password",
				Role:         domain.RoleUser,
			},
		},
		{
			name: "User not found",
			id:   99,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
					WithArgs(int64(99)).
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name: "Database error",
			id:   1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
					WithArgs(int64(1)).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByID(context.Background(), tt.id)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, result)
			}
		})
	}
}

func TestRepository_FindByUsername(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		username  string
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name:     "User found",
			username: "test_user",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE username = $1")).
					WithArgs("test_user").
					WillReturnRows(userRows().AddRow(int64(1), "test_user", "hashed_password", domain.RoleUser))
			},
			result: &domain.User{
				ID:           1,
				Username:     "test_user",
				PasswordHash: "hashed_password",
				Role:         domain.RoleUser,
			},
		},
		{
			name:     "User not found",
			username: "ghost",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE username = $1")).
					WithArgs("ghost").
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByUsername(context.Background(), tt.username)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, result)
			}
		})
	}
}

func TestRepository_ExistsByUsername(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		username  string
		mockSetup func()
		expectErr bool
		exists    bool
	}{
		{
			name:     "Username taken",
			username: "test_user",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
					WithArgs("test_user").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
			exists: true,
		},
		{
			name:     "Username free",
			username: "new_user",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
					WithArgs("new_user").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			},
			exists: false,
		},
		{
			name:     "Database error",
			username: "test_user",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
					WithArgs("test_user").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			exists, err := repo.ExistsByUsername(context.Background(), tt.username)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.exists, exists)
			}
		})
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name           string
		user           *domain.User
		mockSetup      func()
		expectErr      bool
		expectConflict bool
		result         *domain.User
	}{
		{
			name: "Successful creation",
			user: &domain.User{Username: "test_user", PasswordHash: "hashed_password", Role: domain.RoleUser},
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
					WithArgs("test_user", "hashed_password", domain.RoleUser).
					WillReturnRows(userRows().AddRow(int64(1), "test_user", "hashed_password", domain.RoleUser))
			},
			result: &domain.User{
				ID:           1,
				Username:     "test_user",
				PasswordHash: "hashed_password",
				Role:         domain.RoleUser,
			},
		},
		{
			name: "Unique violation becomes conflict",
			user: &domain.User{Username: "test_user", PasswordHash: "hashed_password", Role: domain.RoleUser},
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
					WithArgs("test_user", "hashed_password", domain.RoleUser).
					WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})
			},
			expectErr:      true,
			expectConflict: true,
		},
		{
			name: "Database error",
			user: &domain.User{Username: "test_user", PasswordHash: "hashed_password", Role: domain.RoleUser},
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
					WithArgs("test_user", "hashed_password", domain.RoleUser).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.Create(context.Background(), tt.user)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Equal(t, tt.expectConflict, domain.IsConflict(err))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, result)
			}
		})
	}
}

func TestRepository_Update(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs("renamed", "hashed_password", domain.RoleAdmin, int64(1)).
		WillReturnRows(userRows().AddRow(int64(1), "renamed", "hashed_password", domain.RoleAdmin))

	updated, err := repo.Update(context.Background(), &domain.User{
		ID:           1,
		Username:     "renamed",
		PasswordHash: "hashed_password",
		Role:         domain.RoleAdmin,
	})
	assert.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := NewMock(t)

	t.Run("Successful delete", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).
			WithArgs(int64(1)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.Delete(context.Background(), 1))
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).
			WithArgs(int64(1)).
			WillReturnError(errors.New("database error"))

		assert.Error(t, repo.Delete(context.Background(), 1))
	})
}

func TestRepository_List(t *testing.T) {
	repo, mock := NewMock(t)
	p := paging.Default()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY id ASC")).
		WithArgs(p.Limit(), p.Offset()).
		WillReturnRows(userRows().
			AddRow(int64(1), "alice", "hash_a", domain.RoleUser).
			AddRow(int64(2), "bob", "hash_b", domain.RoleAdmin))

	users, total, err := repo.List(context.Background(), p)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
}
