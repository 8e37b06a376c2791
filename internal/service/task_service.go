package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sayantan/task-manager-api/internal/domain"
	"github.com/sayantan/task-manager-api/internal/repository"
	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskService struct {
	taskRepo repository.TaskRepository
}

func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

type CreateTaskInput struct {
	Description string
	Completed   bool
}

func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*domain.Task, error) {
	task := &domain.Task{
		ID:          uuid.New(),
		Description: input.Description,
		Completed:   input.Completed,
		OwnerID:     ownerID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns the owner's tasks, optionally filtered, sorted, and paginated.
// No match is an empty list, never an error.
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, filter repository.TaskFilter) ([]*domain.Task, error) {
	return s.taskRepo.GetByOwner(ctx, ownerID, filter)
}

// Get resolves a task scoped by id and owner. A task owned by somebody else
// is indistinguishable from a missing one.
func (s *TaskService) Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskRepo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

type UpdateTaskInput struct {
	Description *string
	Completed   *bool
}

func (s *TaskService) Update(ctx context.Context, id, ownerID uuid.UUID, input UpdateTaskInput) (*domain.Task, error) {
	task, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskRepo.DeleteByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}
