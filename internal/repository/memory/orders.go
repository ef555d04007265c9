package memory

import (
	"context"
	"sort"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
	"inventory-service/internal/repository"
)

type cartRepository struct {
	s *Store
}

func (r *cartRepository) Create(ctx context.Context, q database.Querier, item *domain.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("cart.Create"); err != nil {
		return err
	}
	key := cartKey{item.UserID, item.ProductID}
	if _, ok := r.s.data.cart[key]; ok {
		return repository.ErrCartItemExists
	}

	item.CreatedAt = r.s.tick()
	item.UpdatedAt = item.CreatedAt
	r.s.data.cart[key] = *item
	return nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, q database.Querier, item *domain.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("cart.UpdateQuantity"); err != nil {
		return err
	}
	key := cartKey{item.UserID, item.ProductID}
	existing, ok := r.s.data.cart[key]
	if !ok {
		return repository.ErrCartItemNotFound
	}

	existing.Quantity = item.Quantity
	existing.UpdatedAt = r.s.tick()
	r.s.data.cart[key] = existing
	*item = existing
	return nil
}

func (r *cartRepository) FindForUpdate(ctx context.Context, q database.Querier, userID, productID int64) (*domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.data.cart[cartKey{userID, productID}]
	if !ok {
		return nil, repository.ErrCartItemNotFound
	}
	return &item, nil
}

func (r *cartRepository) ListByUser(ctx context.Context, q database.Querier, userID int64) ([]*domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	items := []*domain.CartItem{}
	for key, item := range r.s.data.cart {
		if key.userID == userID {
			i := item
			items = append(items, &i)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (r *cartRepository) CountByUser(ctx context.Context, q database.Querier, userID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for key := range r.s.data.cart {
		if key.userID == userID {
			count++
		}
	}
	return count, nil
}

func (r *cartRepository) Delete(ctx context.Context, q database.Querier, userID, productID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := cartKey{userID, productID}
	if _, ok := r.s.data.cart[key]; !ok {
		return repository.ErrCartItemNotFound
	}
	delete(r.s.data.cart, key)
	return nil
}

func (r *cartRepository) DeleteByUser(ctx context.Context, q database.Querier, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("cart.DeleteByUser"); err != nil {
		return 0, err
	}
	var removed int64
	for key := range r.s.data.cart {
		if key.userID == userID {
			delete(r.s.data.cart, key)
			removed++
		}
	}
	return removed, nil
}

type orderRepository struct {
	s *Store
}

func (r *orderRepository) Create(ctx context.Context, q database.Querier, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("orders.Create"); err != nil {
		return err
	}
	if _, ok := r.s.data.users[order.UserID]; !ok {
		return repository.ErrUserNotFound
	}

	order.ID = r.s.id()
	order.CreatedAt = r.s.tick()
	for i := range order.Items {
		if _, ok := r.s.data.products[order.Items[i].ProductID]; !ok {
			return repository.ErrProductNotFound
		}
		order.Items[i].ID = r.s.id()
		order.Items[i].OrderID = order.ID
	}

	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	r.s.data.orders[order.ID] = stored
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, q database.Querier, id int64) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order, ok := r.s.data.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (r *orderRepository) List(ctx context.Context, q database.Querier) ([]*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	orders := []*domain.Order{}
	keys := sortedKeys(r.s.data.orders)
	for i := len(keys) - 1; i >= 0; i-- {
		orders = append(orders, copyOrder(r.s.data.orders[keys[i]]))
	}
	return orders, nil
}

func (r *orderRepository) CountByUser(ctx context.Context, q database.Querier, userID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, order := range r.s.data.orders {
		if order.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *orderRepository) CountItemsByProduct(ctx context.Context, q database.Querier, productID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, order := range r.s.data.orders {
		for _, item := range order.Items {
			if item.ProductID == productID {
				count++
			}
		}
	}
	return count, nil
}

func copyOrder(order domain.Order) *domain.Order {
	order.Items = append([]domain.OrderItem{}, order.Items...)
	return &order
}
