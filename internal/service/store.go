// Package service keeps tasks and users consistent with each other. Every
// store call below is a single atomic operation; sequences of them are not.
package service

import (
	"context"

	"github.com/google/uuid"

	"taskapi/internal/model"
	"taskapi/internal/query"
)

// TaskStore is the subset of the task repository the services use.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Find(ctx context.Context, q *query.Query) ([]model.Task, error)
	Count(ctx context.Context, where []query.Condition) (int64, error)
	Replace(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	AssignTo(ctx context.Context, ids []uuid.UUID, userID uuid.UUID, userName string) error
	Unassign(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) error
	UnassignAll(ctx context.Context, userID uuid.UUID) error
}

// UserStore is the subset of the user repository the services use.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Find(ctx context.Context, q *query.Query) ([]model.User, error)
	Count(ctx context.Context, where []query.Condition) (int64, error)
	Replace(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddPendingTask(ctx context.Context, userID, taskID uuid.UUID) error
	RemovePendingTasks(ctx context.Context, taskIDs []uuid.UUID, keep uuid.UUID) error
}
