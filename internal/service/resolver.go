package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"taskapi/internal/model"
	"taskapi/internal/repository"
)

// storeResolver answers validation lookups straight from the store.
type storeResolver struct {
	tasks TaskStore
	users UserStore
}

func (r storeResolver) ResolveUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := r.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	return user, err
}

func (r storeResolver) ResolveTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := r.tasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return nil, nil
	}
	return task, err
}

func (r storeResolver) EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	user, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return user != nil && user.ID != except, nil
}
