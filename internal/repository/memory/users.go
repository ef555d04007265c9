package memory

import (
	"context"

	"inventory-service/internal/database"
	"inventory-service/internal/domain"
	"inventory-service/internal/repository"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) conflict(user *domain.User) error {
	for _, existing := range r.s.data.users {
		if existing.ID == user.ID {
			continue
		}
		if existing.Username == user.Username {
			return repository.ErrUsernameTaken
		}
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, q database.Querier, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("users.Create"); err != nil {
		return err
	}
	user.ID = 0
	if err := r.conflict(user); err != nil {
		return err
	}

	user.ID = r.s.id()
	user.CreatedAt = r.s.tick()
	user.UpdatedAt = user.CreatedAt
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *userRepository) Update(ctx context.Context, q database.Querier, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("users.Update"); err != nil {
		return err
	}
	if _, ok := r.s.data.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	if err := r.conflict(user); err != nil {
		return err
	}

	user.UpdatedAt = r.s.tick()
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *userRepository) Delete(ctx context.Context, q database.Querier, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("users.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.users[id]; !ok {
		return repository.ErrUserNotFound
	}

	delete(r.s.data.users, id)
	for key := range r.s.data.cart {
		if key.userID == id {
			delete(r.s.data.cart, key)
		}
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, q database.Querier, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.data.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, q database.Querier, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *userRepository) FindByEmail(ctx context.Context, q database.Querier, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *userRepository) find(match func(domain.User) bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, user := range r.s.data.users {
		if match(user) {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *userRepository) List(ctx context.Context, q database.Querier) ([]*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := []*domain.User{}
	for _, id := range sortedKeys(r.s.data.users) {
		user := r.s.data.users[id]
		users = append(users, &user)
	}
	return users, nil
}
