package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-service/internal/domain"
	"inventory-service/internal/events"
	"inventory-service/internal/repository/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderCreatedEvent
	err    error
	// hang blocks each publish until its context is done, like an unreachable broker
	hang bool
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, event events.OrderCreatedEvent) error {
	if p.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

type testEnv struct {
	store      *memory.Store
	publisher  *recordingPublisher
	users      UserService
	categories CategoryService
	products   ProductService
	cart       CartService
	orders     OrderService
}

func memoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Users:      store.Users(),
		Categories: store.Categories(),
		Products:   store.Products(),
		Cart:       store.Cart(),
		Orders:     store.Orders(),
	}
}

func newTestEnv() *testEnv {
	store := memory.NewStore()
	repos := memoryRepositories(store)
	logger := zap.NewNop()
	publisher := &recordingPublisher{}

	return &testEnv{
		store:      store,
		publisher:  publisher,
		users:      NewUserService(store, repos, logger),
		categories: NewCategoryService(store, repos, logger),
		products:   NewProductService(store, repos, logger),
		cart:       NewCartService(store, repos, logger),
		orders:     NewOrderService(store, repos, publisher, logger),
	}
}

// seedUser inserts a user directly, skipping the bcrypt cost of CreateUser
func (e *testEnv) seedUser(t *testing.T, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: "hash"}
	require.NoError(t, e.store.Users().Create(context.Background(), nil, user))
	return user
}

func (e *testEnv) seedCategory(t *testing.T, name string) *domain.Category {
	t.Helper()
	category, err := e.categories.CreateCategory(context.Background(), name, "")
	require.NoError(t, err)
	return category
}

func (e *testEnv) seedProduct(t *testing.T, categoryID int64, name, price string, stock int) *domain.Product {
	t.Helper()
	product, err := e.products.CreateProduct(context.Background(), NewProduct{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	return product
}

func (e *testEnv) stock(t *testing.T, productID int64) int {
	t.Helper()
	product, err := e.products.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return product.Stock
}

func (e *testEnv) orderCount(t *testing.T) int {
	t.Helper()
	orders, err := e.orders.ListOrders(context.Background())
	require.NoError(t, err)
	return len(orders)
}
