package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/user"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

const userColumns = "id, username, name, email, created_at, updated_at"

var userSortColumns = map[string]string{
	"id":        "id",
	"username":  "username",
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// UserRepository stores users in the users table. The uk_users_username key
// enforces username uniqueness.
type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewUserRepository creates a UserRepository on db.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func usernameConflict(username string) error {
	return &domain.ConflictError{Resource: user.Resource, Field: "username", Value: username}
}

func (r *UserRepository) List(ctx context.Context, filter user.Filter, req domain.PageRequest) (domain.Page[user.User], error) {
	w := &where{}
	if filter.NameContains != "" {
		w.add("LOWER(name) LIKE ?", containsPattern(filter.NameContains))
	}

	total, err := count(r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+w.String(), w.args...))
	if err != nil {
		return domain.Page[user.User]{}, fmt.Errorf("count users: %w", err)
	}

	tail, pageArgs := orderBy(userSortColumns, req)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users"+w.String()+tail,
		append(w.args, pageArgs...)...,
	)
	if err != nil {
		return domain.Page[user.User]{}, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	items := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return domain.Page[user.User]{}, fmt.Errorf("scan user: %w", err)
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[user.User]{}, fmt.Errorf("iterate users: %w", err)
	}
	return domain.NewPage(items, total, req), nil
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(user.Resource, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: user.Resource, Key: "username", Value: username}
	}
	if err != nil {
		return nil, fmt.Errorf("query user by username: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	now := timestamp(r.now)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Name, u.Email, now, now,
	)
	if isDuplicate(err) {
		return nil, usernameConflict(u.Username)
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user id: %w", err)
	}

	out := *u
	out.ID = id
	out.CreatedAt = now
	out.UpdatedAt = now
	return &out, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, u *user.User) (*user.User, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET username = ?, name = ?, email = ?, updated_at = ?
		WHERE id = ?`,
		u.Username, u.Name, u.Email, timestamp(r.now), id,
	)
	if isDuplicate(err) {
		return nil, usernameConflict(u.Username)
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, domain.NotFound(user.Resource, id)
	}
	return r.Get(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.NotFound(user.Resource, id)
	}
	return nil
}
