// internal/accounts/repository.go
// Repository pattern isolates database queries from business logic.

package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines all database operations for accounts
type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
	IsEmailTakenByOther(ctx context.Context, email string, userID int64) (bool, error)
	UpdateProfile(ctx context.Context, user *User) error
	SetVerifiedEmail(ctx context.Context, userID int64, email string) error
}

// postgresRepository implements Repository using PostgreSQL via sqlx
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// CreateUser inserts a new user and populates the generated fields
func (r *postgresRepository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return ErrUsernameAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID
func (r *postgresRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	user := &User{}
	query := `
		SELECT id, username, email, password_hash, bio, profile_image, gender,
		       is_verified, created_at, updated_at
		FROM users
		WHERE id = $1`

	err := r.db.GetContext(ctx, user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetUserByUsername retrieves a user by their username
func (r *postgresRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	user := &User{}
	query := `
		SELECT id, username, email, password_hash, bio, profile_image, gender,
		       is_verified, created_at, updated_at
		FROM users
		WHERE LOWER(username) = LOWER($1)`

	err := r.db.GetContext(ctx, user, query, username)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// IsUsernameTaken checks if a username is already registered
func (r *postgresRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(username) = LOWER($1))`

	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// IsEmailTakenByOther checks if an email is used by a different account
func (r *postgresRepository) IsEmailTakenByOther(ctx context.Context, email string, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2)`

	if err := r.db.GetContext(ctx, &exists, query, email, userID); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UpdateProfile persists the mutable profile fields
func (r *postgresRepository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET bio = :bio, profile_image = :profile_image, gender = :gender, updated_at = NOW()
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetVerifiedEmail stores a verified email address and marks the account verified
func (r *postgresRepository) SetVerifiedEmail(ctx context.Context, userID int64, email string) error {
	query := `
		UPDATE users
		SET email = $1, is_verified = TRUE, updated_at = NOW()
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, email, userID)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to set email: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set email: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
