package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
	"inventory-service/internal/repository"
	"inventory-service/internal/validation"
)

// BcryptCost is the cost factor for password hashing
const BcryptCost = 10

var ErrUserHasOrders = domain.Conflict("Cannot delete user with existing orders")

// UserService defines the interface for user business logic
type UserService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	CreateUser(ctx context.Context, username, email, password string) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type userService struct {
	tx     database.Transactor
	repos  Repositories
	logger *zap.Logger
}

// NewUserService creates a new instance of UserService
func NewUserService(tx database.Transactor, repos Repositories, logger *zap.Logger) UserService {
	return &userService{
		tx:     tx,
		repos:  repos,
		logger: logger,
	}
}

func (s *userService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := s.tx.WithinTx(ctx, readOnly, func(q database.Querier) error {
		var err error
		users, err = s.repos.Users.List(ctx, q)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := s.tx.WithinTx(ctx, readOnly, func(q database.Querier) error {
		var err error
		user, err = s.repos.Users.FindByID(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreateUser validates the fields, checks uniqueness and stores a bcrypt hash of the password
func (s *userService) CreateUser(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = validation.NormalizeEmail(email)

	if err := validation.Username(username); err != nil {
		return nil, err
	}
	if err := validation.Email(email); err != nil {
		return nil, err
	}
	if err := validation.Password(password); err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	err = s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if err := s.checkUnique(ctx, q, user); err != nil {
			return err
		}
		return s.repos.Users.Create(ctx, q, user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// UpdateUser applies the non-nil fields of patch
func (s *userService) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	var hashedPassword string
	if patch.Password != nil {
		if err := validation.Password(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hashedPassword = hash
	}

	var user *domain.User
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		var err error
		user, err = s.repos.Users.FindByID(ctx, q, id)
		if err != nil {
			return err
		}

		if patch.Username != nil {
			username := strings.TrimSpace(*patch.Username)
			if err := validation.Username(username); err != nil {
				return err
			}
			user.SetUsername(username)
		}
		if patch.Email != nil {
			email := validation.NormalizeEmail(*patch.Email)
			if err := validation.Email(email); err != nil {
				return err
			}
			user.SetEmail(email)
		}
		if hashedPassword != "" {
			user.SetPasswordHash(hashedPassword)
		}

		if err := s.checkUnique(ctx, q, user); err != nil {
			return err
		}
		return s.repos.Users.Update(ctx, q, user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser is refused while the user owns orders; cart items go with the user
func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if _, err := s.repos.Users.FindByID(ctx, q, id); err != nil {
			return err
		}

		orders, err := s.repos.Orders.CountByUser(ctx, q, id)
		if err != nil {
			return err
		}
		if orders > 0 {
			return ErrUserHasOrders
		}

		return s.repos.Users.Delete(ctx, q, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", zap.Int64("user_id", id))
	return nil
}

// checkUnique reports a friendly conflict before the unique constraint fires
func (s *userService) checkUnique(ctx context.Context, q database.Querier, user *domain.User) error {
	existing, err := s.repos.Users.FindByUsername(ctx, q, user.Username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	if existing != nil && existing.ID != user.ID {
		return repository.ErrUsernameTaken
	}

	existing, err = s.repos.Users.FindByEmail(ctx, q, user.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	if existing != nil && existing.ID != user.ID {
		return repository.ErrEmailTaken
	}

	return nil
}

// hashPassword hashes a password using bcrypt with cost factor 10
func hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
