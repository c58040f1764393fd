package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskapi/internal/model"
	"taskapi/internal/query"
	"taskapi/internal/validation"
)

type TaskService struct {
	tasks      TaskStore
	reconciler *Reconciler
	resolver   validation.Resolver
	log        zerolog.Logger
}

func NewTaskService(tasks TaskStore, users UserStore, reconciler *Reconciler, log zerolog.Logger) *TaskService {
	return &TaskService{
		tasks:      tasks,
		reconciler: reconciler,
		resolver:   storeResolver{tasks: tasks, users: users},
		log:        log,
	}
}

// Create validates p, inserts the task and lists it on its assignee.
func (s *TaskService) Create(ctx context.Context, p validation.TaskPayload) (*model.Task, error) {
	in, err := validation.Task(ctx, p, s.resolver)
	if err != nil {
		return nil, err
	}

	task := &model.Task{}
	in.Apply(task)
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, storeError("failed to create task", err)
	}

	if assignee := in.AssigneeID(); assignee != uuid.Nil {
		if err := s.reconciler.TaskAssigned(ctx, task.ID, assignee); err != nil {
			return nil, storeError("failed to assign task", err)
		}
	}

	s.log.Info().Stringer("task_id", task.ID).Msg("task created")
	return s.Get(ctx, task.ID)
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("failed to retrieve task", err)
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, q *query.Query) ([]model.Task, error) {
	tasks, err := s.tasks.Find(ctx, q)
	if err != nil {
		return nil, storeError("failed to list tasks", err)
	}
	return tasks, nil
}

func (s *TaskService) Count(ctx context.Context, where []query.Condition) (int64, error) {
	n, err := s.tasks.Count(ctx, where)
	if err != nil {
		return 0, storeError("failed to count tasks", err)
	}
	return n, nil
}

// Replace overwrites the task with p. Fields missing from p revert to their
// defaults; the id and creation date are kept.
func (s *TaskService) Replace(ctx context.Context, id uuid.UUID, p validation.TaskPayload) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in, err := validation.Task(ctx, p, s.resolver)
	if err != nil {
		return nil, err
	}
	in.Apply(task)

	if assignee := in.AssigneeID(); assignee != uuid.Nil && !in.Completed {
		err = s.reconciler.TaskAssigned(ctx, task.ID, assignee)
	} else {
		err = s.reconciler.TaskReleased(ctx, task.ID)
	}
	if err != nil {
		return nil, storeError("failed to reconcile task assignment", err)
	}

	if err := s.tasks.Replace(ctx, task); err != nil {
		return nil, storeError("failed to replace task", err)
	}
	return s.Get(ctx, id)
}

// Delete releases the task from every pending set, then removes it.
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.reconciler.TaskReleased(ctx, id); err != nil {
		return storeError("failed to release task", err)
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return storeError("failed to delete task", err)
	}

	s.log.Info().Stringer("task_id", id).Msg("task deleted")
	return nil
}
