package validation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskapi/internal/apperr"
	"taskapi/internal/model"
)

// TaskPayload is a task request body as sent by the client.
type TaskPayload struct {
	Name             any `json:"name"`
	Description      any `json:"description"`
	Deadline         any `json:"deadline"`
	Completed        any `json:"completed"`
	AssignedUser     any `json:"assignedUser"`
	AssignedUserName any `json:"assignedUserName"`
}

// TaskInput is a validated task. Assignee is nil for an unassigned task.
type TaskInput struct {
	Name        string
	Description string
	Deadline    time.Time
	Completed   bool
	Assignee    *model.User
}

// Apply writes the input onto t, leaving ID and DateCreated alone.
func (in TaskInput) Apply(t *model.Task) {
	t.Name = in.Name
	t.Description = in.Description
	t.Deadline = in.Deadline
	t.Completed = in.Completed
	if in.Assignee != nil {
		id := in.Assignee.ID
		t.AssignedUser = &id
		t.AssignedUserName = in.Assignee.Name
	} else {
		t.AssignedUser = nil
		t.AssignedUserName = model.UnassignedName
	}
}

// Task normalizes and validates p. Every check, including the reference
// lookups, runs before the caller mutates anything.
func Task(ctx context.Context, p TaskPayload, r Resolver) (*TaskInput, error) {
	name, okName := requiredText(p.Name)
	_, okDeadline := requiredText(p.Deadline)
	if !okName || !okDeadline {
		return nil, apperr.Validation(apperr.ReasonMissingRequiredField, "name and deadline are required")
	}

	deadline, ok := ParseInstant(p.Deadline)
	if !ok {
		return nil, apperr.Validation(apperr.ReasonInvalidDeadline, "invalid deadline")
	}

	in := &TaskInput{
		Name:      name,
		Deadline:  deadline,
		Completed: coerceBool(p.Completed),
	}
	if s, ok := p.Description.(string); ok {
		in.Description = strings.TrimSpace(s)
	}

	ref, _ := p.AssignedUser.(string)
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return in, nil
	}

	userID, err := parseID(ref)
	if err != nil {
		return nil, apperr.Validation(apperr.ReasonBadIDFormat, "invalid assignedUser id")
	}
	if in.Completed {
		return nil, apperr.Validation(apperr.ReasonCompletedTaskAssigned, "completed task cannot be assigned")
	}

	user, err := r.ResolveUser(ctx, userID)
	if err != nil {
		return nil, lookupFailed(err)
	}
	if user == nil {
		return nil, apperr.NotFound(apperr.ReasonDanglingReference, "assignedUser not found")
	}

	if p.AssignedUserName != nil {
		given, _ := text(p.AssignedUserName)
		if strings.TrimSpace(given) != user.Name {
			return nil, apperr.Validation(apperr.ReasonNameMismatch, "assignedUserName does not match user name")
		}
	}

	in.Assignee = user
	return in, nil
}

// AssigneeID returns the id of the assignee, or uuid.Nil.
func (in TaskInput) AssigneeID() uuid.UUID {
	if in.Assignee == nil {
		return uuid.Nil
	}
	return in.Assignee.ID
}
