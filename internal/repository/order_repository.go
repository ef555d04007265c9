package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
)

// OrderRepository defines the interface for order data access. Orders are
// written once, header and items together.
type OrderRepository interface {
	Create(ctx context.Context, q database.Querier, order *domain.Order) error
	FindByID(ctx context.Context, q database.Querier, id int64) (*domain.Order, error)
	List(ctx context.Context, q database.Querier) ([]*domain.Order, error)
	CountByUser(ctx context.Context, q database.Querier, userID int64) (int, error)
	CountItemsByProduct(ctx context.Context, q database.Querier, productID int64) (int, error)
}

type orderRepository struct{}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository() OrderRepository {
	return &orderRepository{}
}

// Create inserts the order header followed by its items. Callers run it inside
// a transaction so a failing item leaves no header behind.
func (r *orderRepository) Create(ctx context.Context, q database.Querier, order *domain.Order) error {
	query := `
		INSERT INTO orders (user_id, total_amount, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := q.QueryRowContext(ctx, query, order.UserID, order.TotalAmount, order.Status).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		err := q.QueryRowContext(ctx, itemQuery, item.OrderID, item.ProductID, item.Quantity, item.PriceAtTime).
			Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, q database.Querier, id int64) (*domain.Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, created_at
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := q.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	items, err := r.listItems(ctx, q, `WHERE order_id = $1`, id)
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	if order.Items == nil {
		order.Items = []domain.OrderItem{}
	}

	return order, nil
}

// List returns every order, newest first, with its items
func (r *orderRepository) List(ctx context.Context, q database.Querier) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
	`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.TotalAmount,
			&order.Status,
			&order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	rows.Close()

	items, err := r.listItems(ctx, q, "")
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		order.Items = items[order.ID]
		if order.Items == nil {
			order.Items = []domain.OrderItem{}
		}
	}

	return orders, nil
}

// listItems loads order items grouped by order id
func (r *orderRepository) listItems(ctx context.Context, q database.Querier, where string, args ...interface{}) (map[int64][]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, quantity, price_at_time FROM order_items ` + where + ` ORDER BY id ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.PriceAtTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func (r *orderRepository) CountByUser(ctx context.Context, q database.Querier, userID int64) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (r *orderRepository) CountItemsByProduct(ctx context.Context, q database.Querier, productID int64) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_items WHERE product_id = $1`, productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count order items: %w", err)
	}
	return count, nil
}
