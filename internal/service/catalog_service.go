package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
	"inventory-service/internal/repository"
	"inventory-service/internal/validation"
)

var (
	ErrCategoryHasProducts = domain.Invalid("Cannot delete category with existing products")
	ErrProductInOrders     = domain.Invalid("Cannot delete product that is part of existing orders")
)

// CategoryService defines the interface for category business logic
type CategoryService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, patch domain.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// ProductService defines the interface for product business logic
type ProductService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input NewProduct) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// NewProduct carries the fields of a product to create
type NewProduct struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  int64
}

type categoryService struct {
	tx     database.Transactor
	repos  Repositories
	logger *zap.Logger
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(tx database.Transactor, repos Repositories, logger *zap.Logger) CategoryService {
	return &categoryService{tx: tx, repos: repos, logger: logger}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := s.tx.WithinTx(ctx, readOnly, func(q database.Querier) error {
		var err error
		categories, err = s.repos.Categories.List(ctx, q)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var category *domain.Category
	err := s.tx.WithinTx(ctx, readOnly, func(q database.Querier) error {
		var err error
		category, err = s.repos.Categories.FindByID(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	category := &domain.Category{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if err := s.checkUnique(ctx, q, category); err != nil {
			return err
		}
		return s.repos.Categories.Create(ctx, q, category)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created", zap.Int64("category_id", category.ID), zap.String("name", category.Name))
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id int64, patch domain.CategoryPatch) (*domain.Category, error) {
	var category *domain.Category
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		var err error
		category, err = s.repos.Categories.FindByID(ctx, q, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			category.SetName(strings.TrimSpace(*patch.Name))
		}
		if patch.Description != nil {
			category.SetDescription(strings.TrimSpace(*patch.Description))
		}
		if err := validateCategory(category); err != nil {
			return err
		}

		if err := s.checkUnique(ctx, q, category); err != nil {
			return err
		}
		return s.repos.Categories.Update(ctx, q, category)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory is refused while any product references the category
func (s *categoryService) DeleteCategory(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if _, err := s.repos.Categories.FindByID(ctx, q, id); err != nil {
			return err
		}

		products, err := s.repos.Products.CountByCategory(ctx, q, id)
		if err != nil {
			return err
		}
		if products > 0 {
			return ErrCategoryHasProducts
		}

		return s.repos.Categories.Delete(ctx, q, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info("Category deleted", zap.Int64("category_id", id))
	return nil
}

func (s *categoryService) checkUnique(ctx context.Context, q database.Querier, category *domain.Category) error {
	existing, err := s.repos.Categories.FindByName(ctx, q, category.Name)
	if err != nil && !errors.Is(err, repository.ErrCategoryNotFound) {
		return err
	}
	if existing != nil && existing.ID != category.ID {
		return repository.ErrCategoryAlreadyExists
	}
	return nil
}

func validateCategory(category *domain.Category) error {
	if err := validation.CategoryName(category.Name); err != nil {
		return err
	}
	return validation.Description(category.Description)
}

type productService struct {
	tx     database.Transactor
	repos  Repositories
	logger *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(tx database.Transactor, repos Repositories, logger *zap.Logger) ProductService {
	return &productService{tx: tx, repos: repos, logger: logger}
}

func (s *productService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := s.tx.WithinTx(ctx, readOnly, func(q database.Querier) error {
		var err error
		products, err = s.repos.Products.List(ctx, q)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product *domain.Product
	err := s.tx.WithinTx(ctx, readOnly, func(q database.Querier) error {
		var err error
		product, err = s.repos.Products.FindByID(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, input NewProduct) (*domain.Product, error) {
	product := &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if err := s.checkReferences(ctx, q, product); err != nil {
			return err
		}
		return s.repos.Products.Create(ctx, q, product)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Int("stock", product.Stock),
	)
	return product, nil
}

// UpdateProduct applies the non-nil fields of patch. A stock edit is one of the
// two writes, with order creation, that change the ground-truth stock.
func (s *productService) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	var product *domain.Product
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		var err error
		product, err = s.repos.Products.FindByIDForUpdate(ctx, q, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			product.SetName(strings.TrimSpace(*patch.Name))
		}
		if patch.Description != nil {
			product.SetDescription(strings.TrimSpace(*patch.Description))
		}
		if patch.Price != nil {
			product.SetPrice(*patch.Price)
		}
		if patch.Stock != nil {
			product.SetStock(*patch.Stock)
		}
		if patch.CategoryID != nil {
			product.SetCategoryID(*patch.CategoryID)
		}
		if err := validateProduct(product); err != nil {
			return err
		}

		if err := s.checkReferences(ctx, q, product); err != nil {
			return err
		}
		return s.repos.Products.Update(ctx, q, product)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteProduct is refused while an order item references the product; cart items are cascaded
func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if _, err := s.repos.Products.FindByIDForUpdate(ctx, q, id); err != nil {
			return err
		}

		referenced, err := s.repos.Orders.CountItemsByProduct(ctx, q, id)
		if err != nil {
			return err
		}
		if referenced > 0 {
			return ErrProductInOrders
		}

		return s.repos.Products.Delete(ctx, q, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

// checkReferences verifies the category exists and the name is free within it
func (s *productService) checkReferences(ctx context.Context, q database.Querier, product *domain.Product) error {
	if _, err := s.repos.Categories.FindByID(ctx, q, product.CategoryID); err != nil {
		return err
	}

	existing, err := s.repos.Products.FindByNameInCategory(ctx, q, product.CategoryID, product.Name)
	if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		return err
	}
	if existing != nil && existing.ID != product.ID {
		return repository.ErrProductAlreadyExists
	}
	return nil
}

func validateProduct(product *domain.Product) error {
	if err := validation.ProductName(product.Name); err != nil {
		return err
	}
	if err := validation.Description(product.Description); err != nil {
		return err
	}
	if err := validation.Price(product.Price); err != nil {
		return err
	}
	return validation.Stock(product.Stock)
}
