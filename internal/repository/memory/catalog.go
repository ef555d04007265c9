package memory

import (
	"context"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
	"inventory-service/internal/repository"
)

type categoryRepository struct {
	s *Store
}

func (r *categoryRepository) nameTaken(category *domain.Category) bool {
	for _, existing := range r.s.data.categories {
		if existing.ID != category.ID && existing.Name == category.Name {
			return true
		}
	}
	return false
}

func (r *categoryRepository) Create(ctx context.Context, q database.Querier, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("categories.Create"); err != nil {
		return err
	}
	category.ID = 0
	if r.nameTaken(category) {
		return repository.ErrCategoryAlreadyExists
	}

	category.ID = r.s.id()
	category.CreatedAt = r.s.tick()
	r.s.data.categories[category.ID] = *category
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, q database.Querier, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	if r.nameTaken(category) {
		return repository.ErrCategoryAlreadyExists
	}

	r.s.data.categories[category.ID] = *category
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, q database.Querier, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(r.s.data.categories, id)
	return nil
}

func (r *categoryRepository) List(ctx context.Context, q database.Querier) ([]*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	categories := []*domain.Category{}
	for _, id := range sortedKeys(r.s.data.categories) {
		category := r.s.data.categories[id]
		categories = append(categories, &category)
	}
	return categories, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, q database.Querier, id int64) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	category, ok := r.s.data.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return &category, nil
}

func (r *categoryRepository) FindByName(ctx context.Context, q database.Querier, name string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, category := range r.s.data.categories {
		if category.Name == name {
			c := category
			return &c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

type productRepository struct {
	s *Store
}

func (r *productRepository) nameTaken(product *domain.Product) bool {
	for _, existing := range r.s.data.products {
		if existing.ID != product.ID && existing.CategoryID == product.CategoryID && existing.Name == product.Name {
			return true
		}
	}
	return false
}

func (r *productRepository) Create(ctx context.Context, q database.Querier, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("products.Create"); err != nil {
		return err
	}
	product.ID = 0
	if _, ok := r.s.data.categories[product.CategoryID]; !ok {
		return repository.ErrCategoryNotFound
	}
	if r.nameTaken(product) {
		return repository.ErrProductAlreadyExists
	}

	product.ID = r.s.id()
	product.CreatedAt = r.s.tick()
	product.UpdatedAt = product.CreatedAt
	r.s.data.products[product.ID] = *product
	return nil
}

func (r *productRepository) Update(ctx context.Context, q database.Querier, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("products.Update"); err != nil {
		return err
	}
	if _, ok := r.s.data.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	if _, ok := r.s.data.categories[product.CategoryID]; !ok {
		return repository.ErrCategoryNotFound
	}
	if r.nameTaken(product) {
		return repository.ErrProductAlreadyExists
	}

	product.UpdatedAt = r.s.tick()
	r.s.data.products[product.ID] = *product
	return nil
}

func (r *productRepository) Delete(ctx context.Context, q database.Querier, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.products[id]; !ok {
		return repository.ErrProductNotFound
	}

	delete(r.s.data.products, id)
	for key := range r.s.data.cart {
		if key.productID == id {
			delete(r.s.data.cart, key)
		}
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, q database.Querier, id int64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	product, ok := r.s.data.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &product, nil
}

// FindByIDForUpdate needs no row lock: transactions on a Store are serialized
func (r *productRepository) FindByIDForUpdate(ctx context.Context, q database.Querier, id int64) (*domain.Product, error) {
	return r.FindByID(ctx, q, id)
}

func (r *productRepository) FindByNameInCategory(ctx context.Context, q database.Querier, categoryID int64, name string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, product := range r.s.data.products {
		if product.CategoryID == categoryID && product.Name == name {
			p := product
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (r *productRepository) List(ctx context.Context, q database.Querier) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	products := []*domain.Product{}
	for _, id := range sortedKeys(r.s.data.products) {
		product := r.s.data.products[id]
		products = append(products, &product)
	}
	return products, nil
}

func (r *productRepository) CountByCategory(ctx context.Context, q database.Querier, categoryID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, product := range r.s.data.products {
		if product.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, q database.Querier, id int64, quantity int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("products.DecrementStock"); err != nil {
		return 0, err
	}
	product, ok := r.s.data.products[id]
	if !ok || product.Stock < quantity {
		return 0, repository.ErrInsufficientStock
	}

	product.Stock -= quantity
	product.UpdatedAt = r.s.tick()
	r.s.data.products[id] = product
	return product.Stock, nil
}
