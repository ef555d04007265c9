package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"inventory-service/internal/config"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	cases := map[string]struct {
		err   error
		class ErrorClass
	}{
		"nil":           {nil, ErrorClassPermanent},
		"no rows":       {sql.ErrNoRows, ErrorClassPermanent},
		"serialization": {&pgconn.PgError{Code: "40001"}, ErrorClassSerialization},
		"deadlock":      {fmt.Errorf("lock product: %w", &pgconn.PgError{Code: "40P01"}), ErrorClassDeadlock},
		"lock timeout":  {&pgconn.PgError{Code: "55P03"}, ErrorClassTransient},
		"unique":        {&pgconn.PgError{Code: "23505"}, ErrorClassPermanent},
		"plain":         {errors.New("boom"), ErrorClassPermanent},
	}

	for name, tc := range cases {
		assert.Equal(t, tc.class, ClassifyError(tc.err), name)
	}

	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23503"}))
}

func TestConstraintHelpers(t *testing.T) {
	dup := fmt.Errorf("failed to create user: %w", &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "users_email_key"})

	assert.True(t, IsUniqueViolation(dup, ""))
	assert.True(t, IsUniqueViolation(dup, "users_email_key"))
	assert.False(t, IsUniqueViolation(dup, "users_username_key"))
	assert.False(t, IsForeignKeyViolation(dup, ""))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: CodeForeignKeyViolation}, ""))
}

func TestDSN(t *testing.T) {
	dsn := DSN(configForTest())
	assert.Equal(t, "postgres://app:secret@db:5432/inventory?sslmode=disable&search_path=public", dsn)
}

func configForTest() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "app",
		Password: "secret",
		Database: "inventory",
		Schema:   "public",
		SSLMode:  "disable",
	}
}
