package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskapi/internal/model"
	"taskapi/internal/query"
)

const tasksTable = "tasks"

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task; the id is allocated on insert
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// Find lists tasks matching q
func (r *TaskRepository) Find(ctx context.Context, q *query.Query) ([]model.Task, error) {
	tasks := []model.Task{}
	db := applyQuery(r.db.WithContext(ctx).Model(&model.Task{}), tasksTable, q)
	if err := db.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Count returns the number of tasks matching where
func (r *TaskRepository) Count(ctx context.Context, where []query.Condition) (int64, error) {
	var n int64
	err := applyWhere(r.db.WithContext(ctx).Model(&model.Task{}), tasksTable, where).Count(&n).Error
	return n, err
}

// Replace overwrites every mutable field of the task. DateCreated is kept
func (r *TaskRepository) Replace(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]any{
			"name":               task.Name,
			"description":        task.Description,
			"deadline":           task.Deadline,
			"completed":          task.Completed,
			"assigned_user":      refValue(task.AssignedUser),
			"assigned_user_name": task.AssignedUserName,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// AssignTo stamps the user id and name onto every task in ids
func (r *TaskRepository) AssignTo(ctx context.Context, ids []uuid.UUID, userID uuid.UUID, userName string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"assigned_user":      userID,
			"assigned_user_name": userName,
		}).Error
}

// Unassign clears the assignee of the tasks in ids that still reference
// userID. Tasks reassigned elsewhere in the meantime are left alone
func (r *TaskRepository) Unassign(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id IN ? AND assigned_user = ?", ids, userID).
		Updates(unassigned()).Error
}

// UnassignAll clears the assignee of every task referencing userID
func (r *TaskRepository) UnassignAll(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("assigned_user = ?", userID).
		Updates(unassigned()).Error
}

func unassigned() map[string]any {
	return map[string]any{
		"assigned_user":      nil,
		"assigned_user_name": model.UnassignedName,
	}
}

func refValue(id *uuid.UUID) any {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return *id
}
