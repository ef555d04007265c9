package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
)

// CartRepository defines the interface for cart item data access. Items are
// addressed by their (user_id, product_id) key.
type CartRepository interface {
	Create(ctx context.Context, q database.Querier, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, q database.Querier, item *domain.CartItem) error
	// FindForUpdate locks the cart row until the transaction ends
	FindForUpdate(ctx context.Context, q database.Querier, userID, productID int64) (*domain.CartItem, error)
	ListByUser(ctx context.Context, q database.Querier, userID int64) ([]*domain.CartItem, error)
	CountByUser(ctx context.Context, q database.Querier, userID int64) (int, error)
	Delete(ctx context.Context, q database.Querier, userID, productID int64) error
	// DeleteByUser removes every item of the user and returns how many were removed
	DeleteByUser(ctx context.Context, q database.Querier, userID int64) (int64, error)
}

type cartRepository struct{}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository() CartRepository {
	return &cartRepository{}
}

const cartColumns = `user_id, product_id, quantity, created_at, updated_at`

func scanCartItem(row scanner) (*domain.CartItem, error) {
	item := &domain.CartItem{}
	err := row.Scan(
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func (r *cartRepository) Create(ctx context.Context, q database.Querier, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query, item.UserID, item.ProductID, item.Quantity).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "cart_items_user_product_key") {
			return ErrCartItemExists
		}
		return fmt.Errorf("failed to create cart item: %w", err)
	}

	return nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, q database.Querier, item *domain.CartItem) error {
	query := `
		UPDATE cart_items
		SET quantity = $3
		WHERE user_id = $1 AND product_id = $2
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query, item.UserID, item.ProductID, item.Quantity).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	return nil
}

func (r *cartRepository) FindForUpdate(ctx context.Context, q database.Querier, userID, productID int64) (*domain.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 AND product_id = $2 FOR UPDATE`

	item, err := scanCartItem(q.QueryRowContext(ctx, query, userID, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

// ListByUser returns the user's items in the order they were added
func (r *cartRepository) ListByUser(ctx context.Context, q database.Querier, userID int64) ([]*domain.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 ORDER BY created_at ASC, product_id ASC`

	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

func (r *cartRepository) CountByUser(ctx context.Context, q database.Querier, userID int64) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}

func (r *cartRepository) Delete(ctx context.Context, q database.Querier, userID, productID int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

func (r *cartRepository) DeleteByUser(ctx context.Context, q database.Querier, userID int64) (int64, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
