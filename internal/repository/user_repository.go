package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, q database.Querier, user *domain.User) error
	Update(ctx context.Context, q database.Querier, user *domain.User) error
	Delete(ctx context.Context, q database.Querier, id int64) error
	FindByID(ctx context.Context, q database.Querier, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, q database.Querier, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, q database.Querier, email string) (*domain.User, error)
	List(ctx context.Context, q database.Querier) ([]*domain.User, error)
}

type userRepository struct{}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository() UserRepository {
	return &userRepository{}
}

const userColumns = `id, username, email, password_hash, created_at, updated_at`

func scanUser(row scanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// mapUserConstraint turns unique violations into conflict errors
func mapUserConstraint(err error) error {
	switch {
	case database.IsUniqueViolation(err, "users_username_key"):
		return ErrUsernameTaken
	case database.IsUniqueViolation(err, "users_email_key"):
		return ErrEmailTaken
	}
	return nil
}

// Create inserts a new user and fills the generated id and timestamps
func (r *userRepository) Create(ctx context.Context, q database.Querier, user *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if mapped := mapUserConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) Update(ctx context.Context, q database.Querier, user *domain.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4
		WHERE id = $1
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash).
		Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if mapped := mapUserConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, q database.Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepository) FindByID(ctx context.Context, q database.Querier, id int64) (*domain.User, error) {
	return r.findOne(ctx, q, "id", id)
}

func (r *userRepository) FindByUsername(ctx context.Context, q database.Querier, username string) (*domain.User, error) {
	return r.findOne(ctx, q, "username", username)
}

func (r *userRepository) FindByEmail(ctx context.Context, q database.Querier, email string) (*domain.User, error) {
	return r.findOne(ctx, q, "email", email)
}

// findOne looks a user up by one of its unique columns. column is never user input.
func (r *userRepository) findOne(ctx context.Context, q database.Querier, column string, value interface{}) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)

	user, err := scanUser(q.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by %s: %w", column, err)
	}

	return user, nil
}

func (r *userRepository) List(ctx context.Context, q database.Querier) ([]*domain.User, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
