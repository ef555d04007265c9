package service

import (
	"context"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"inventory-service/internal/domain"
	"inventory-service/internal/repository"
)

func TestProperty_CreateUserHashesPasswords(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(username string, password string) bool {
			env := newTestEnv()
			ctx := context.Background()

			user, err := env.users.CreateUser(ctx, username, username+"@example.com", password)
			if err != nil {
				t.Logf("FAIL: CreateUser returned %v", err)
				return false
			}

			if user.PasswordHash == password {
				t.Logf("FAIL: Password stored as plaintext for %s", username)
				return false
			}

			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
				t.Logf("FAIL: Password hash does not match: %v", err)
				return false
			}

			cost, err := bcrypt.Cost([]byte(user.PasswordHash))
			if err != nil || cost != BcryptCost {
				t.Logf("FAIL: Expected cost %d, got %d", BcryptCost, cost)
				return false
			}

			return VerifyPassword(user.PasswordHash, password)
		},
		gen.RegexMatch(`[a-z]{3,20}`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCreateUser_NormalizesAndValidates(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	user, err := env.users.CreateUser(ctx, "  alice  ", "  Alice@Example.COM ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)

	tests := []struct {
		name     string
		username string
		email    string
		password string
		message  string
	}{
		{"short username", "ab", "ab@example.com", "password123", "Username must be at least 3 characters long"},
		{"bad email", "bob", "bob@", "password123", "Invalid email format"},
		{"short password", "bob", "bob@example.com", "short", "Password must be at least 8 characters long"},
		{"password over bcrypt limit", "bob", "bob@example.com", strings.Repeat("p", 73), "Password must not exceed 72 bytes"},
		{"taken username", "alice", "other@example.com", "password123", "Username already exists"},
		{"taken email", "bob", "ALICE@example.com", "password123", "Email already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.CreateUser(ctx, tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.Equal(t, tt.message, domain.Message(err))
		})
	}
}

func TestUpdateUser_AppliesPatch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := env.seedUser(t, "alice")
	env.seedUser(t, "bob")

	username := "alice2"
	updated, err := env.users.UpdateUser(ctx, user.ID, domain.UserPatch{Username: &username})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.Equal(t, "hash", updated.PasswordHash)

	short := "al"
	_, err = env.users.UpdateUser(ctx, user.ID, domain.UserPatch{Username: &short})
	assert.ErrorIs(t, err, domain.ErrValidation)

	taken := "BOB@example.com"
	_, err = env.users.UpdateUser(ctx, user.ID, domain.UserPatch{Email: &taken})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	password := "new-password"
	updated, err = env.users.UpdateUser(ctx, user.ID, domain.UserPatch{Password: &password})
	require.NoError(t, err)
	assert.True(t, VerifyPassword(updated.PasswordHash, password))

	_, err = env.users.UpdateUser(ctx, 999, domain.UserPatch{Username: &username})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteUser_BlockedByOrders(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := env.seedUser(t, "alice")
	category := env.seedCategory(t, "Electronics")
	product := env.seedProduct(t, category.ID, "Smartphone", "699.99", 5)

	_, err := env.orders.CreateOrder(ctx, user.ID, []domain.OrderLine{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)

	err = env.users.DeleteUser(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "Cannot delete user with existing orders", domain.Message(err))

	other := env.seedUser(t, "bob")
	require.NoError(t, env.users.DeleteUser(ctx, other.ID))

	_, err = env.users.GetUser(ctx, other.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, strings.HasSuffix(err.Error(), "User not found"))
}
