package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskapi/internal/model"
)

// Reconciler mirrors the task → user assignment edge onto both documents.
// Within each operation references are cleared before new ones are added, so
// a failure part way leaves a task unassigned, never owned twice. Nothing is
// rolled back; the next write touching an entity re-derives its state.
type Reconciler struct {
	tasks TaskStore
	users UserStore
	log   zerolog.Logger
}

func NewReconciler(tasks TaskStore, users UserStore, log zerolog.Logger) *Reconciler {
	return &Reconciler{tasks: tasks, users: users, log: log}
}

// TaskAssigned makes userID the only user listing taskID as pending.
func (r *Reconciler) TaskAssigned(ctx context.Context, taskID, userID uuid.UUID) error {
	if err := r.users.RemovePendingTasks(ctx, []uuid.UUID{taskID}, userID); err != nil {
		return fmt.Errorf("strip task %s from other users: %w", taskID, err)
	}
	if err := r.users.AddPendingTask(ctx, userID, taskID); err != nil {
		return fmt.Errorf("add task %s to user %s: %w", taskID, userID, err)
	}
	r.log.Debug().Stringer("task_id", taskID).Stringer("user_id", userID).Msg("task assigned")
	return nil
}

// TaskReleased removes taskID from every pending set.
func (r *Reconciler) TaskReleased(ctx context.Context, taskID uuid.UUID) error {
	if err := r.users.RemovePendingTasks(ctx, []uuid.UUID{taskID}, uuid.Nil); err != nil {
		return fmt.Errorf("release task %s: %w", taskID, err)
	}
	r.log.Debug().Stringer("task_id", taskID).Msg("task released")
	return nil
}

// PendingTasksChanged applies a change of user's pending set from old to next
// onto the tasks. user carries the name to stamp. The caller writes the
// user's own pending set afterwards.
func (r *Reconciler) PendingTasksChanged(ctx context.Context, user *model.User, old, next []uuid.UUID) error {
	toUnassign, toAssign := Diff(old, next)

	if err := r.tasks.Unassign(ctx, toUnassign, user.ID); err != nil {
		return fmt.Errorf("unassign tasks from user %s: %w", user.ID, err)
	}
	if err := r.users.RemovePendingTasks(ctx, toAssign, user.ID); err != nil {
		return fmt.Errorf("strip tasks from other users: %w", err)
	}
	if err := r.tasks.AssignTo(ctx, toAssign, user.ID, user.Name); err != nil {
		return fmt.Errorf("assign tasks to user %s: %w", user.ID, err)
	}

	r.log.Debug().
		Stringer("user_id", user.ID).
		Int("unassigned", len(toUnassign)).
		Int("assigned", len(toAssign)).
		Msg("pending tasks reconciled")
	return nil
}

// UserRemoved clears the assignee on every task referencing userID.
func (r *Reconciler) UserRemoved(ctx context.Context, userID uuid.UUID) error {
	if err := r.tasks.UnassignAll(ctx, userID); err != nil {
		return fmt.Errorf("unassign tasks of user %s: %w", userID, err)
	}
	return nil
}

// Diff returns old − next and next − old. Duplicates collapse; the order of
// each result follows its source slice.
func Diff(old, next []uuid.UUID) (removed, added []uuid.UUID) {
	inOld := make(map[uuid.UUID]bool, len(old))
	for _, id := range old {
		inOld[id] = true
	}
	inNext := make(map[uuid.UUID]bool, len(next))
	for _, id := range next {
		inNext[id] = true
	}

	removed = []uuid.UUID{}
	for _, id := range old {
		if !inNext[id] {
			removed = append(removed, id)
			inNext[id] = true
		}
	}
	added = []uuid.UUID{}
	for _, id := range next {
		if !inOld[id] {
			added = append(added, id)
			inOld[id] = true
		}
	}
	return removed, added
}
