package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
	"inventory-service/internal/repository"
	"inventory-service/internal/validation"
)

var ErrCartFull = domain.Invalid("Cart cannot contain more than %d different products", domain.MaxCartLines)

// CartService keeps every cart quantity within [1, 99] and never above the
// product stock at the time of the mutation. Reads reconcile lazily.
type CartService interface {
	// GetCart drops lines whose product is gone and clamps quantities to the
	// current stock, persisting the corrections.
	GetCart(ctx context.Context, userID int64) (*domain.Cart, error)
	// AddItem adds quantity to the existing line, or sets it when replace is
	// true. created reports whether a new line was inserted.
	AddItem(ctx context.Context, userID, productID int64, quantity int, replace bool) (line *domain.CartLine, created bool, err error)
	UpdateItem(ctx context.Context, userID, productID int64, quantity int) (*domain.CartLine, error)
	RemoveItem(ctx context.Context, userID, productID int64) error
	// ClearCart reports false when the cart was already empty
	ClearCart(ctx context.Context, userID int64) (cleared bool, err error)
}

type cartService struct {
	tx     database.Transactor
	repos  Repositories
	logger *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(tx database.Transactor, repos Repositories, logger *zap.Logger) CartService {
	return &cartService{tx: tx, repos: repos, logger: logger}
}

func (s *cartService) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if _, err := s.repos.Users.FindByID(ctx, q, userID); err != nil {
			return err
		}

		items, err := s.repos.Cart.ListByUser(ctx, q, userID)
		if err != nil {
			return err
		}

		lines := make([]domain.CartLine, 0, len(items))
		for _, item := range items {
			line, err := s.reconcile(ctx, q, item)
			if err != nil {
				return err
			}
			if line != nil {
				lines = append(lines, *line)
			}
		}

		cart = domain.NewCart(userID, lines)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return cart, nil
}

// reconcile returns nil when the item had to be dropped
func (s *cartService) reconcile(ctx context.Context, q database.Querier, item *domain.CartItem) (*domain.CartLine, error) {
	product, err := s.repos.Products.FindByID(ctx, q, item.ProductID)
	if errors.Is(err, repository.ErrProductNotFound) {
		s.logger.Info("Dropping cart item for missing product",
			zap.Int64("user_id", item.UserID),
			zap.Int64("product_id", item.ProductID),
		)
		return nil, s.repos.Cart.Delete(ctx, q, item.UserID, item.ProductID)
	}
	if err != nil {
		return nil, err
	}

	if product.Stock < item.Quantity {
		s.logger.Info("Clamping cart item to available stock",
			zap.Int64("user_id", item.UserID),
			zap.Int64("product_id", item.ProductID),
			zap.Int("quantity", item.Quantity),
			zap.Int("stock", product.Stock),
		)
		if product.Stock == 0 {
			return nil, s.repos.Cart.Delete(ctx, q, item.UserID, item.ProductID)
		}
		item.Quantity = product.Stock
		if err := s.repos.Cart.UpdateQuantity(ctx, q, item); err != nil {
			return nil, err
		}
	}

	line := domain.NewCartLine(*item, *product)
	return &line, nil
}

func (s *cartService) AddItem(ctx context.Context, userID, productID int64, quantity int, replace bool) (*domain.CartLine, bool, error) {
	var (
		line    domain.CartLine
		created bool
	)
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if _, err := s.repos.Users.FindByID(ctx, q, userID); err != nil {
			return err
		}
		product, err := s.repos.Products.FindByID(ctx, q, productID)
		if err != nil {
			return err
		}

		if err := validation.PositiveQuantity(quantity); err != nil {
			return err
		}
		if product.Stock == 0 {
			return domain.OutOfStock("Product is out of stock")
		}

		item, err := s.repos.Cart.FindForUpdate(ctx, q, userID, productID)
		switch {
		case err == nil:
			if !replace {
				quantity += item.Quantity
			}
			if err := checkCartQuantity(quantity, product); err != nil {
				return err
			}
			item.Quantity = quantity
			if err := s.repos.Cart.UpdateQuantity(ctx, q, item); err != nil {
				return err
			}
		case errors.Is(err, repository.ErrCartItemNotFound):
			lines, err := s.repos.Cart.CountByUser(ctx, q, userID)
			if err != nil {
				return err
			}
			if lines >= domain.MaxCartLines {
				return ErrCartFull
			}
			if err := checkCartQuantity(quantity, product); err != nil {
				return err
			}
			item = &domain.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
			if err := s.repos.Cart.Create(ctx, q, item); err != nil {
				return err
			}
			created = true
		default:
			return err
		}

		line = domain.NewCartLine(*item, *product)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.logger.Debug("Cart item saved",
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", line.Quantity),
		zap.Bool("created", created),
	)
	return &line, created, nil
}

func (s *cartService) UpdateItem(ctx context.Context, userID, productID int64, quantity int) (*domain.CartLine, error) {
	if err := validation.CartQuantity(quantity); err != nil {
		return nil, err
	}

	var line domain.CartLine
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if _, err := s.repos.Users.FindByID(ctx, q, userID); err != nil {
			return err
		}
		item, err := s.repos.Cart.FindForUpdate(ctx, q, userID, productID)
		if err != nil {
			return err
		}
		product, err := s.repos.Products.FindByID(ctx, q, productID)
		if err != nil {
			return err
		}

		if err := checkStock(quantity, product); err != nil {
			return err
		}

		item.Quantity = quantity
		if err := s.repos.Cart.UpdateQuantity(ctx, q, item); err != nil {
			return err
		}

		line = domain.NewCartLine(*item, *product)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return &line, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		return s.repos.Cart.Delete(ctx, q, userID, productID)
	})
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (s *cartService) ClearCart(ctx context.Context, userID int64) (bool, error) {
	var removed int64
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if _, err := s.repos.Users.FindByID(ctx, q, userID); err != nil {
			return err
		}
		var err error
		removed, err = s.repos.Cart.DeleteByUser(ctx, q, userID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to clear cart: %w", err)
	}
	return removed > 0, nil
}

// checkCartQuantity rejects, never clamps, a quantity outside [1, 99] or above stock
func checkCartQuantity(quantity int, product *domain.Product) error {
	if err := validation.CartQuantity(quantity); err != nil {
		return err
	}
	return checkStock(quantity, product)
}

func checkStock(quantity int, product *domain.Product) error {
	if quantity > product.Stock {
		return domain.OutOfStock("Insufficient stock. Available: %d", product.Stock)
	}
	return nil
}
