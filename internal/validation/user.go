package validation

import (
	"context"

	"github.com/google/uuid"

	"taskapi/internal/apperr"
)

type UserPayload struct {
	Name         any `json:"name"`
	Email        any `json:"email"`
	PendingTasks any `json:"pendingTasks"`
}

// UserInput is a validated user. PendingTasks holds no duplicates.
type UserInput struct {
	Name         string
	Email        string
	PendingTasks []uuid.UUID
}

// User normalizes and validates p. self is the id of the user being replaced,
// or uuid.Nil on create.
func User(ctx context.Context, p UserPayload, self uuid.UUID, r Resolver) (*UserInput, error) {
	name, okName := requiredText(p.Name)
	email, okEmail := requiredText(p.Email)
	if !okName || !okEmail {
		return nil, apperr.Validation(apperr.ReasonMissingRequiredField, "name and email are required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, apperr.Validation(apperr.ReasonInvalidEmail, "invalid email address")
	}

	in := &UserInput{Name: name, Email: email, PendingTasks: []uuid.UUID{}}

	raw, _ := p.PendingTasks.([]any)
	seen := make(map[uuid.UUID]bool, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, apperr.Validation(apperr.ReasonBadIDFormat, "invalid task id in pendingTasks")
		}
		id, err := parseID(s)
		if err != nil {
			return nil, apperr.Validation(apperr.ReasonBadIDFormat, "invalid task id in pendingTasks")
		}
		if !seen[id] {
			seen[id] = true
			in.PendingTasks = append(in.PendingTasks, id)
		}
	}

	for _, id := range in.PendingTasks {
		task, err := r.ResolveTask(ctx, id)
		if err != nil {
			return nil, lookupFailed(err)
		}
		if task == nil {
			return nil, apperr.NotFound(apperr.ReasonDanglingReference, "task in pendingTasks not found")
		}
		if task.Completed {
			return nil, apperr.Validation(apperr.ReasonCompletedTaskInPending, "completed tasks cannot be in pendingTasks")
		}
	}

	taken, err := r.EmailTaken(ctx, email, self)
	if err != nil {
		return nil, lookupFailed(err)
	}
	if taken {
		return nil, apperr.Conflict(apperr.ReasonDuplicateEmail, "email must be unique")
	}
	return in, nil
}
