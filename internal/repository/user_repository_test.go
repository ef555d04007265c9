package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"inventory-service/internal/domain"
)

func newTestUser(t *testing.T) *domain.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := &domain.User{
		Username:     "user_" + suffix,
		Email:        suffix + "@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, NewUserRepository().Create(context.Background(), testDB, user))
	return user
}

// Stored users keep a bcrypt hash, never the plaintext password
func TestProperty_UserCreationStoresHashedPassword(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("passwords are stored as bcrypt hashes", prop.ForAll(
		func(username string, password string) bool {
			_, _ = testDB.Exec("DELETE FROM users WHERE username = $1", username)

			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
			if err != nil {
				t.Logf("Failed to hash password: %v", err)
				return false
			}

			user := &domain.User{
				Username:     username,
				Email:        username + "@example.com",
				PasswordHash: string(hashedPassword),
			}

			if err := repo.Create(ctx, testDB, user); err != nil {
				t.Logf("Failed to create user: %v", err)
				return false
			}

			retrieved, err := repo.FindByUsername(ctx, testDB, username)
			if err != nil {
				t.Logf("Failed to find user: %v", err)
				return false
			}

			if retrieved.ID != user.ID || retrieved.PasswordHash == password {
				t.Logf("Password was stored as plaintext or id mismatch")
				return false
			}

			if err := bcrypt.CompareHashAndPassword([]byte(retrieved.PasswordHash), []byte(password)); err != nil {
				t.Logf("Stored password is not a valid bcrypt hash: %v", err)
				return false
			}

			_, _ = testDB.Exec("DELETE FROM users WHERE id = $1", user.ID)
			return true
		},
		gen.RegexMatch(`[a-z]{5,12}`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestUserRepository_UniqueConstraints(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	existing := newTestUser(t)

	err := repo.Create(ctx, testDB, &domain.User{
		Username:     existing.Username,
		Email:        "other_" + existing.Email,
		PasswordHash: "hash",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	err = repo.Create(ctx, testDB, &domain.User{
		Username:     "other_" + existing.Username,
		Email:        existing.Email,
		PasswordHash: "hash",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	user := newTestUser(t)

	user.SetEmail("changed_" + user.Email)
	require.NoError(t, repo.Update(ctx, testDB, user))

	found, err := repo.FindByEmail(ctx, testDB, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	require.NoError(t, repo.Delete(ctx, testDB, user.ID))

	_, err = repo.FindByID(ctx, testDB, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, testDB, user.ID), ErrUserNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
