package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, q database.Querier, product *domain.Product) error
	Update(ctx context.Context, q database.Querier, product *domain.Product) error
	Delete(ctx context.Context, q database.Querier, id int64) error
	FindByID(ctx context.Context, q database.Querier, id int64) (*domain.Product, error)
	// FindByIDForUpdate locks the product row until the transaction ends
	FindByIDForUpdate(ctx context.Context, q database.Querier, id int64) (*domain.Product, error)
	FindByNameInCategory(ctx context.Context, q database.Querier, categoryID int64, name string) (*domain.Product, error)
	List(ctx context.Context, q database.Querier) ([]*domain.Product, error)
	CountByCategory(ctx context.Context, q database.Querier, categoryID int64) (int, error)
	// DecrementStock subtracts quantity only if enough stock is left and returns the new stock
	DecrementStock(ctx context.Context, q database.Querier, id int64, quantity int) (int, error)
}

type productRepository struct{}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository() ProductRepository {
	return &productRepository{}
}

const productColumns = `id, name, description, price, stock, category_id, created_at, updated_at`

func scanProduct(row scanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	return product, err
}

func mapProductConstraint(err error) error {
	switch {
	case database.IsUniqueViolation(err, "products_category_name_key"):
		return ErrProductAlreadyExists
	case database.IsForeignKeyViolation(err, "fk_products_category"):
		return ErrCategoryNotFound
	}
	return nil
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, q database.Querier, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, stock, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.CategoryID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if mapped := mapProductConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, q database.Querier, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, category_id = $6
		WHERE id = $1
		RETURNING updated_at
	`

	err := q.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.CategoryID,
	).Scan(&product.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if mapped := mapProductConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes a product; cart items referencing it cascade
func (r *productRepository) Delete(ctx context.Context, q database.Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, q database.Querier, id int64) (*domain.Product, error) {
	return r.findByID(ctx, q, id, "")
}

func (r *productRepository) FindByIDForUpdate(ctx context.Context, q database.Querier, id int64) (*domain.Product, error) {
	return r.findByID(ctx, q, id, "FOR UPDATE")
}

func (r *productRepository) findByID(ctx context.Context, q database.Querier, id int64, lock string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1 %s`, productColumns, lock)

	product, err := scanProduct(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindByNameInCategory(ctx context.Context, q database.Querier, categoryID int64, name string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category_id = $1 AND name = $2`

	product, err := scanProduct(q.QueryRowContext(ctx, query, categoryID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}

	return product, nil
}

// List retrieves every product ordered by id
func (r *productRepository) List(ctx context.Context, q database.Querier) ([]*domain.Product, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) CountByCategory(ctx context.Context, q database.Querier, categoryID int64) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, q database.Querier, id int64, quantity int) (int, error) {
	query := `
		UPDATE products
		SET stock = stock - $1
		WHERE id = $2
		  AND stock >= $1
		RETURNING stock
	`

	var stock int
	err := q.QueryRowContext(ctx, query, quantity, id).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInsufficientStock
		}
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return stock, nil
}
