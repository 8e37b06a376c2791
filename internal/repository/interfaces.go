package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sayantan/task-manager-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, user *domain.User) error
}

// TaskFilter narrows an owner-scoped task listing. A nil Completed means no
// completion filter; Limit/Skip <= 0 mean unbounded; an empty or unknown
// SortField keeps natural order.
type TaskFilter struct {
	Completed *bool
	Limit     int
	Skip      int
	SortField string
	SortDesc  bool
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByOwner(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	GetByOwnerCount(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type Repositories struct {
	User UserRepository
	Task TaskRepository
}
