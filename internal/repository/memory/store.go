// Package memory provides in-memory implementations of the repository
// interfaces. A Store also implements database.Transactor: transactions are
// serialized and a failing unit of work restores the state it started from.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
	"inventory-service/internal/repository"
)

type cartKey struct {
	userID    int64
	productID int64
}

type state struct {
	users      map[int64]domain.User
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	cart       map[cartKey]domain.CartItem
	orders     map[int64]domain.Order
	nextID     int64
	seq        int64
}

func newState() state {
	return state{
		users:      make(map[int64]domain.User),
		categories: make(map[int64]domain.Category),
		products:   make(map[int64]domain.Product),
		cart:       make(map[cartKey]domain.CartItem),
		orders:     make(map[int64]domain.Order),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.cart {
		c.cart[k] = v
	}
	for k, v := range s.orders {
		v.Items = append([]domain.OrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	c.nextID = s.nextID
	c.seq = s.seq
	return c
}

// Store holds every table in memory
type Store struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	data  state
	fails map[string]error
	now   func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		data:  newState(),
		fails: make(map[string]error),
		now:   time.Now,
	}
}

// FailOn makes the named operation (e.g. "orders.Create") return err until
// cleared with a nil error.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fails, op)
		return
	}
	s.fails[op] = err
}

func (s *Store) fail(op string) error {
	return s.fails[op]
}

func (s *Store) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

// tick returns a strictly increasing timestamp so ordering by creation time is stable
func (s *Store) tick() time.Time {
	s.data.seq++
	return s.now().Add(time.Duration(s.data.seq) * time.Microsecond)
}

// WithinTx runs fn with exclusive access to the store. When fn fails the
// store is rolled back to the snapshot taken before it ran.
func (s *Store) WithinTx(ctx context.Context, opts database.TxOptions, fn func(q database.Querier) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{s: s}
}

func (s *Store) Categories() repository.CategoryRepository {
	return &categoryRepository{s: s}
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepository{s: s}
}

func (s *Store) Cart() repository.CartRepository {
	return &cartRepository{s: s}
}

func (s *Store) Orders() repository.OrderRepository {
	return &orderRepository{s: s}
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
