package repository

import "inventory-service/internal/domain"

var (
	ErrUserNotFound          = domain.NotFound("User not found")
	ErrUsernameTaken         = domain.Conflict("Username already exists")
	ErrEmailTaken            = domain.Conflict("Email already exists")
	ErrCategoryNotFound      = domain.NotFound("Category not found")
	ErrCategoryAlreadyExists = domain.Conflict("Category with this name already exists")
	ErrProductNotFound       = domain.NotFound("Product not found")
	ErrProductAlreadyExists  = domain.Conflict("Product with this name already exists in this category")
	ErrCartItemNotFound      = domain.NotFound("Item not found in cart")
	ErrCartItemExists        = domain.Conflict("Item already in cart")
	ErrOrderNotFound         = domain.NotFound("Order not found")
	ErrInsufficientStock     = domain.OutOfStock("Insufficient stock")
)

// scanner is implemented by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}
