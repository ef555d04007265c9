package service

import (
	"inventory-service/internal/database"
	"inventory-service/internal/repository"
)

// Repositories bundles the data access layer handed to every service
type Repositories struct {
	Users      repository.UserRepository
	Categories repository.CategoryRepository
	Products   repository.ProductRepository
	Cart       repository.CartRepository
	Orders     repository.OrderRepository
}

// NewRepositories returns the PostgreSQL-backed repositories
func NewRepositories() Repositories {
	return Repositories{
		Users:      repository.NewUserRepository(),
		Categories: repository.NewCategoryRepository(),
		Products:   repository.NewProductRepository(),
		Cart:       repository.NewCartRepository(),
		Orders:     repository.NewOrderRepository(),
	}
}

// readOnly is used by lookups that never write
var readOnly = database.ReadOnlyTxOptions()
