package repositories

import (
	"context"
	"sync"
	"time"

	"organica/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicateUser
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return nil
}

// GetByUsername returns a user by username.
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

// GetByEmail returns a user by email.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

// GetByID returns a user by ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *MemoryUserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}
