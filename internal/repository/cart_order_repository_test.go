package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
)

func TestCartRepository_Lifecycle(t *testing.T) {
	repo := NewCartRepository()
	ctx := context.Background()
	user := newTestUser(t)
	first := newTestProduct(t, 10)
	second := newTestProduct(t, 10)

	require.NoError(t, repo.Create(ctx, testDB, &domain.CartItem{UserID: user.ID, ProductID: first.ID, Quantity: 2}))
	require.NoError(t, repo.Create(ctx, testDB, &domain.CartItem{UserID: user.ID, ProductID: second.ID, Quantity: 1}))

	err := repo.Create(ctx, testDB, &domain.CartItem{UserID: user.ID, ProductID: first.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrCartItemExists)

	item, err := repo.FindForUpdate(ctx, testDB, user.ID, first.ID)
	require.NoError(t, err)
	item.Quantity = 5
	require.NoError(t, repo.UpdateQuantity(ctx, testDB, item))

	items, err := repo.ListByUser(ctx, testDB, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)

	count, err := repo.CountByUser(ctx, testDB, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.Delete(ctx, testDB, user.ID, second.ID))
	assert.ErrorIs(t, repo.Delete(ctx, testDB, user.ID, second.ID), ErrCartItemNotFound)

	removed, err := repo.DeleteByUser(ctx, testDB, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestCartRepository_QuantityCheckConstraint(t *testing.T) {
	repo := NewCartRepository()
	ctx := context.Background()
	user := newTestUser(t)
	product := newTestProduct(t, 200)

	err := repo.Create(ctx, testDB, &domain.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 100})
	require.Error(t, err)
	assert.Equal(t, database.CodeCheckViolation, pgCode(err))
}

func TestCartRepository_ProductDeleteCascades(t *testing.T) {
	repo := NewCartRepository()
	ctx := context.Background()
	user := newTestUser(t)
	product := newTestProduct(t, 3)

	require.NoError(t, repo.Create(ctx, testDB, &domain.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 1}))
	require.NoError(t, NewProductRepository().Delete(ctx, testDB, product.ID))

	items, err := repo.ListByUser(ctx, testDB, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	user := newTestUser(t)
	product := newTestProduct(t, 10)

	order := &domain.Order{
		UserID: user.ID,
		Status: domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: product.ID, Quantity: 2, PriceAtTime: product.Price},
		},
	}
	order.TotalAmount = domain.OrderTotal(order.Items)
	require.NoError(t, repo.Create(ctx, testDB, order))
	assert.NotZero(t, order.ID)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	found, err := repo.FindByID(ctx, testDB, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, found.Status)
	assert.Equal(t, "1399.98", found.TotalAmount.StringFixed(2))
	require.Len(t, found.Items, 1)
	assert.True(t, found.Items[0].PriceAtTime.Equal(product.Price))

	orders, err := repo.List(ctx, testDB)
	require.NoError(t, err)
	require.NotEmpty(t, orders)
	assert.Equal(t, order.ID, orders[0].ID)

	userOrders, err := repo.CountByUser(ctx, testDB, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, userOrders)

	referenced, err := repo.CountItemsByProduct(ctx, testDB, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, referenced)

	_, err = repo.FindByID(ctx, testDB, -1)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// One line at the maximum price and stock already totals 1e10
func TestOrderRepository_CreateStoresLargestTotals(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	user := newTestUser(t)
	product := newTestProduct(t, 10000)
	maxPrice := decimal.NewFromInt(1000000)

	order := &domain.Order{
		UserID: user.ID,
		Status: domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: product.ID, Quantity: 10000, PriceAtTime: maxPrice},
			{ProductID: product.ID, Quantity: 10000, PriceAtTime: maxPrice},
		},
	}
	order.TotalAmount = domain.OrderTotal(order.Items)
	require.NoError(t, repo.Create(ctx, testDB, order))

	found, err := repo.FindByID(ctx, testDB, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "20000000000.00", found.TotalAmount.StringFixed(2))
}

// A failing item insert leaves neither the header nor the stock change behind
func TestOrderRepository_CreateRollsBack(t *testing.T) {
	orders := NewOrderRepository()
	products := NewProductRepository()
	ctx := context.Background()
	user := newTestUser(t)
	product := newTestProduct(t, 10)

	before, err := orders.CountByUser(ctx, testDB, user.ID)
	require.NoError(t, err)

	err = database.NewTransactor(testDB).WithinTx(ctx, database.DefaultTxOptions(), func(q database.Querier) error {
		if _, err := products.DecrementStock(ctx, q, product.ID, 2); err != nil {
			return err
		}
		return orders.Create(ctx, q, &domain.Order{
			UserID: user.ID,
			Status: domain.OrderStatusPending,
			Items: []domain.OrderItem{
				{ProductID: product.ID, Quantity: 2, PriceAtTime: product.Price},
				{ProductID: -1, Quantity: 1, PriceAtTime: product.Price},
			},
		})
	})
	require.Error(t, err)

	after, err := orders.CountByUser(ctx, testDB, user.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	stored, err := products.FindByID(ctx, testDB, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Stock)
}

func pgCode(err error) string {
	var classified interface{ SQLState() string }
	if errors.As(err, &classified) {
		return classified.SQLState()
	}
	return ""
}
