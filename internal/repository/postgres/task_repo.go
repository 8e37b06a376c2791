package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/sayantan/task-manager-api/internal/domain"
	"github.com/sayantan/task-manager-api/internal/repository"
	"gorm.io/gorm"
)

// sortColumns maps client-facing sort field names onto real columns. Unknown
// names are ignored rather than interpolated into the query.
var sortColumns = map[string]string{
	"id":          "id",
	"description": "description",
	"completed":   "completed",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID, filter repository.TaskFilter) ([]*domain.Task, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)

	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if column, ok := sortColumns[filter.SortField]; ok {
		if filter.SortDesc {
			q = q.Order(column + " DESC")
		} else {
			q = q.Order(column + " ASC")
		}
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Skip > 0 {
		q = q.Offset(filter.Skip)
	}

	var tasks []*domain.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).First(&task, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// DeleteByIDAndOwner looks up and deletes in one transaction so a non-owner
// can never race a delete against the real owner.
func (r *taskRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) GetByOwnerCount(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}
