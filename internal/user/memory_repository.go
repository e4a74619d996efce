package user

import (
	"context"
	"sync"
	"time"

	"auth_service/internal/observability"
)

// MemoryRepository keeps users in process memory, indexed by id, username and email.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*User
	byUsername map[string]string
	byEmail    map[string]string
	metrics    *observability.Metrics
}

func NewMemoryRepository(metrics *observability.Metrics) *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]*User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
		metrics:    metrics,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *User) error {
	defer observe(r.metrics, "memory", "create", time.Now())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[user.Username]; ok {
		return ErrDuplicateUser
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return ErrDuplicateUser
	}

	stored := *user
	r.byID[user.ID] = &stored
	r.byUsername[user.Username] = user.ID
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	defer observe(r.metrics, "memory", "get_by_id", time.Now())

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.get(id)
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	defer observe(r.metrics, "memory", "get_by_username", time.Now())

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return r.get(id)
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	defer observe(r.metrics, "memory", "get_by_email", time.Now())

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return r.get(id)
}

// get must be called with the lock held.
func (r *MemoryRepository) get(id string) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := *u
	return &found, nil
}
