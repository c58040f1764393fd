package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskapi/internal/model"
	"taskapi/internal/query"
	"taskapi/internal/validation"
)

type UserService struct {
	users      UserStore
	reconciler *Reconciler
	resolver   validation.Resolver
	log        zerolog.Logger
}

func NewUserService(tasks TaskStore, users UserStore, reconciler *Reconciler, log zerolog.Logger) *UserService {
	return &UserService{
		users:      users,
		reconciler: reconciler,
		resolver:   storeResolver{tasks: tasks, users: users},
		log:        log,
	}
}

// Create inserts the user with an empty pending set, assigns the requested
// tasks to it and only then records them as pending.
func (s *UserService) Create(ctx context.Context, p validation.UserPayload) (*model.User, error) {
	in, err := validation.User(ctx, p, uuid.Nil, s.resolver)
	if err != nil {
		return nil, err
	}

	user := &model.User{Name: in.Name, Email: in.Email, PendingTasks: []uuid.UUID{}}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError("failed to create user", err)
	}

	if len(in.PendingTasks) > 0 {
		if err := s.reconciler.PendingTasksChanged(ctx, user, nil, in.PendingTasks); err != nil {
			return nil, storeError("failed to assign pending tasks", err)
		}
		user.PendingTasks = in.PendingTasks
		if err := s.users.Replace(ctx, user); err != nil {
			return nil, storeError("failed to store pending tasks", err)
		}
	}

	s.log.Info().Stringer("user_id", user.ID).Msg("user created")
	return s.Get(ctx, user.ID)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("failed to retrieve user", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, q *query.Query) ([]model.User, error) {
	users, err := s.users.Find(ctx, q)
	if err != nil {
		return nil, storeError("failed to list users", err)
	}
	return users, nil
}

func (s *UserService) Count(ctx context.Context, where []query.Condition) (int64, error) {
	n, err := s.users.Count(ctx, where)
	if err != nil {
		return 0, storeError("failed to count users", err)
	}
	return n, nil
}

// Replace overwrites name, email and pending set. Tasks leaving the set are
// unassigned, tasks entering it are taken over from whoever held them.
func (s *UserService) Replace(ctx context.Context, id uuid.UUID, p validation.UserPayload) (*model.User, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in, err := validation.User(ctx, p, id, s.resolver)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           id,
		Name:         in.Name,
		Email:        in.Email,
		DateCreated:  existing.DateCreated,
		PendingTasks: in.PendingTasks,
	}
	if err := s.reconciler.PendingTasksChanged(ctx, user, existing.PendingTasks, in.PendingTasks); err != nil {
		return nil, storeError("failed to reconcile pending tasks", err)
	}
	if err := s.users.Replace(ctx, user); err != nil {
		return nil, storeError("failed to replace user", err)
	}
	return s.Get(ctx, id)
}

// Delete unassigns the user's tasks, then removes the user.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.reconciler.UserRemoved(ctx, id); err != nil {
		return storeError("failed to unassign tasks", err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return storeError("failed to delete user", err)
	}

	s.log.Info().Stringer("user_id", id).Msg("user deleted")
	return nil
}
