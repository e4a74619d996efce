package user

import (
	"context"
	"time"

	"auth_service/internal/observability"
)

// UserRepositoryInterface is the storage abstraction behind the auth service.
// Lookups return ErrUserNotFound when no record matches; Create returns
// ErrDuplicateUser when the username or email is taken.
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

func observe(metrics *observability.Metrics, backend, operation string, start time.Time) {
	metrics.ObserveStoreOperation(backend, operation, time.Since(start).Seconds())
}
