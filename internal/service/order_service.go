package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
	"inventory-service/internal/events"
	"inventory-service/internal/repository"
	"inventory-service/internal/validation"
)

// publishTimeout bounds how long a committed order waits on the broker
const publishTimeout = 3 * time.Second

var (
	ErrNoOrderItems = domain.Invalid("Order must contain at least one item")
	ErrCartEmpty    = domain.Invalid("Cart is empty")
)

// OrderService turns requested lines into an order, decrementing stock, as one
// all-or-nothing transaction.
type OrderService interface {
	CreateOrder(ctx context.Context, userID int64, lines []domain.OrderLine) (*domain.Order, error)
	// Checkout orders the current content of the user's cart
	Checkout(ctx context.Context, userID int64) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
}

type orderService struct {
	tx        database.Transactor
	repos     Repositories
	publisher events.OrderPublisher
	logger    *zap.Logger

	publishTimeout time.Duration
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(tx database.Transactor, repos Repositories, publisher events.OrderPublisher, logger *zap.Logger) OrderService {
	return &orderService{
		tx:        tx,
		repos:     repos,
		publisher: publisher,
		logger:    logger,

		publishTimeout: publishTimeout,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, userID int64, lines []domain.OrderLine) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, ErrNoOrderItems
	}

	var order *domain.Order
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if _, err := s.repos.Users.FindByID(ctx, q, userID); err != nil {
			return err
		}

		var err error
		order, err = s.placeOrder(ctx, q, userID, lines)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.orderCreated(ctx, order)
	return order, nil
}

func (s *orderService) Checkout(ctx context.Context, userID int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if _, err := s.repos.Users.FindByID(ctx, q, userID); err != nil {
			return err
		}

		items, err := s.repos.Cart.ListByUser(ctx, q, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrCartEmpty
		}

		lines := make([]domain.OrderLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, domain.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		order, err = s.placeOrder(ctx, q, userID, lines)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to checkout cart: %w", err)
	}

	s.orderCreated(ctx, order)
	return order, nil
}

// placeOrder processes the lines in submission order. Each product row is
// locked before its stock is checked and decremented, so repeated products
// see the stock already taken by earlier lines.
func (s *orderService) placeOrder(ctx context.Context, q database.Querier, userID int64, lines []domain.OrderLine) (*domain.Order, error) {
	order := &domain.Order{
		UserID: userID,
		Status: domain.OrderStatusPending,
		Items:  make([]domain.OrderItem, 0, len(lines)),
	}

	for _, line := range lines {
		product, err := s.repos.Products.FindByIDForUpdate(ctx, q, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, domain.NotFound("Product with id %d not found", line.ProductID)
			}
			return nil, err
		}

		if err := validation.PositiveQuantity(line.Quantity); err != nil {
			return nil, err
		}
		if product.Stock < line.Quantity {
			return nil, domain.OutOfStock("Insufficient stock for product %s. Available: %d, requested: %d",
				product.Name, product.Stock, line.Quantity)
		}

		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   product.ID,
			Quantity:    line.Quantity,
			PriceAtTime: product.Price,
		})

		if _, err := s.repos.Products.DecrementStock(ctx, q, product.ID, line.Quantity); err != nil {
			return nil, err
		}
	}

	order.TotalAmount = domain.OrderTotal(order.Items)

	if err := s.repos.Orders.Create(ctx, q, order); err != nil {
		return nil, err
	}

	// the cart is cleared in the same transaction as the order
	if _, err := s.repos.Cart.DeleteByUser(ctx, q, userID); err != nil {
		return nil, err
	}

	return order, nil
}

// orderCreated logs the committed order and publishes its event. A publish
// failure is logged only: the order is already durable.
func (s *orderService) orderCreated(ctx context.Context, order *domain.Order) {
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", order.UserID),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
		zap.Int("items", len(order.Items)),
	)

	event := events.NewOrderCreated(order, chimiddleware.GetReqID(ctx))

	// the response must not wait out broker retries, nor lose the event
	// because the client went away
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.PublishOrderCreated(publishCtx, event); err != nil {
		s.logger.Error("Failed to publish event",
			zap.Int64("order_id", order.ID),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.WithinTx(ctx, readOnly, func(q database.Querier) error {
		var err error
		order, err = s.repos.Orders.FindByID(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := s.tx.WithinTx(ctx, readOnly, func(q database.Querier) error {
		var err error
		orders, err = s.repos.Orders.List(ctx, q)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
