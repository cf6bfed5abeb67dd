package userrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/internal/pg"
	"github.com/avoronov/bankcards/pkg/paging"
)

// uniqueViolationCode is the postgres error code for a unique constraint hit.
const uniqueViolationCode = "23505"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
        SELECT id, username, password_hash, role
        FROM users
        WHERE id = $1
    `
	row := r.db.QueryRow(ctx, query, id)
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find user by id", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
        SELECT id, username, password_hash, role
        FROM users
        WHERE username = $1
    `
	row := r.db.QueryRow(ctx, query, username)
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find user by username", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *Repository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `
        SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)
    `
	var exists bool
	if err := r.db.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		zap.L().Error("can't check username existence", zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (username, password_hash, role)
        VALUES ($1, $2, $3)
        RETURNING id, username, password_hash, role
    `
	row := r.db.QueryRow(ctx, query, user.Username, user.PasswordHash, user.Role)
	var created domain.User
	if err := row.Scan(&created.ID, &created.Username, &created.PasswordHash, &created.Role); err != nil {
		// Two registrations may pass the exists-check concurrently; the
		// unique index decides the loser.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, domain.NewConflictError("username '%s' is already taken", user.Username)
		}
		zap.L().Error("can't create user", zap.Error(err))
		return nil, err
	}
	return &created, nil
}

func (r *Repository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        UPDATE users
        SET username = $1, password_hash = $2, role = $3
        WHERE id = $4
        RETURNING id, username, password_hash, role
    `
	row := r.db.QueryRow(ctx, query, user.Username, user.PasswordHash, user.Role, user.ID)
	var updated domain.User
	if err := row.Scan(&updated.ID, &updated.Username, &updated.PasswordHash, &updated.Role); err != nil {
		zap.L().Error("can't update user", zap.Error(err))
		return nil, err
	}
	return &updated, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	query := `
        DELETE FROM users
        WHERE id = $1
    `
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		zap.L().Error("can't delete user", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) List(ctx context.Context, p paging.Params) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		zap.L().Error("can't count users", zap.Error(err))
		return nil, 0, err
	}

	query := `
        SELECT id, username, password_hash, role
        FROM users
        ORDER BY ` + sortColumn(p) + `
        LIMIT $1 OFFSET $2
    `
	rows, err := r.db.Query(ctx, query, p.Limit(), p.Offset())
	if err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role); err != nil {
			zap.L().Error("can't scan user row", zap.Error(err))
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, nil
}

var sortColumns = map[string]string{
	"id":       "id",
	"username": "username",
	"role":     "role",
}

// sortColumn maps the caller-supplied sort field onto a whitelisted column.
// Anything unknown falls back to id to keep the query injection-safe.
func sortColumn(p paging.Params) string {
	column, ok := sortColumns[p.Sort]
	if !ok {
		column = "id"
	}
	if p.Desc {
		return column + " DESC"
	}
	return column + " ASC"
}
