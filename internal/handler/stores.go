package handler

import (
	"context"

	"github.com/iliyamo/task-manager/internal/model"
)

// Store interfaces consumed by the handlers. The MySQL repositories satisfy
// them in production; tests substitute in-memory fakes so handler behavior
// can be exercised without a database.

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, name, email, password, role string, cost int) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, page, perPage int) ([]model.User, int, error)
	DeleteCascade(ctx context.Context, id uint64) error
}

// TaskStore persists tasks.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	GetByID(ctx context.Context, id uint64) (model.Task, error)
	List(ctx context.Context, page, perPage int) ([]model.Task, int, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id uint64) error
}

// TokenStore persists access token bindings.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string) error
	Revoke(ctx context.Context, tokenHash string) error
}

// CacheInvalidator drops cached task responses after a mutation. The Redis
// task cache implements it; a nil cache is a no-op.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}
