package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/model"
	"github.com/sakif/sql-manager/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const selectUser = `SELECT id, email, password_hash, display_name, avatar_url, created_at FROM users`

// CreateUser inserts a new user and fills in its ID and CreatedAt.
//
// Email uniqueness is left to the UNIQUE constraint rather than a
// SELECT-then-INSERT: the constraint check and the insert are one statement,
// so two concurrent registrations cannot both succeed, and a rejected insert
// leaves nothing behind.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = uuid.NewString()
	user.CreatedAt = db.now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, display_name, avatar_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.AvatarURL,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", user.Email)
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := db.conn.GetContext(ctx, &u, selectUser+` WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return &u, nil
}

// GetUserByEmail looks a user up by exact (case-sensitive) email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := db.conn.GetContext(ctx, &u, selectUser+` WHERE email = ?`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return &u, nil
}
