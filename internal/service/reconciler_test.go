package service_test

import (
	"context"
	"errors"
	"testing"

	"taskapi/internal/model"
	"taskapi/internal/query"
	"taskapi/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskStore is a mock implementation of service.TaskStore
type MockTaskStore struct {
	mock.Mock
	calls *[]string
}

func (m *MockTaskStore) record(name string) {
	if m.calls != nil {
		*m.calls = append(*m.calls, name)
	}
}

func (m *MockTaskStore) Create(ctx context.Context, task *model.Task) error {
	m.record("tasks.Create")
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskStore) Find(ctx context.Context, q *query.Query) ([]model.Task, error) {
	args := m.Called(ctx, q)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskStore) Count(ctx context.Context, where []query.Condition) (int64, error) {
	args := m.Called(ctx, where)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskStore) Replace(ctx context.Context, task *model.Task) error {
	m.record("tasks.Replace")
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.record("tasks.Delete")
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaskStore) AssignTo(ctx context.Context, ids []uuid.UUID, userID uuid.UUID, userName string) error {
	m.record("tasks.AssignTo")
	return m.Called(ctx, ids, userID, userName).Error(0)
}

func (m *MockTaskStore) Unassign(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) error {
	m.record("tasks.Unassign")
	return m.Called(ctx, ids, userID).Error(0)
}

func (m *MockTaskStore) UnassignAll(ctx context.Context, userID uuid.UUID) error {
	m.record("tasks.UnassignAll")
	return m.Called(ctx, userID).Error(0)
}

// MockUserStore is a mock implementation of service.UserStore
type MockUserStore struct {
	mock.Mock
	calls *[]string
}

func (m *MockUserStore) record(name string) {
	if m.calls != nil {
		*m.calls = append(*m.calls, name)
	}
}

func (m *MockUserStore) Create(ctx context.Context, user *model.User) error {
	m.record("users.Create")
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserStore) Find(ctx context.Context, q *query.Query) ([]model.User, error) {
	args := m.Called(ctx, q)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *MockUserStore) Count(ctx context.Context, where []query.Condition) (int64, error) {
	args := m.Called(ctx, where)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserStore) Replace(ctx context.Context, user *model.User) error {
	m.record("users.Replace")
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.record("users.Delete")
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserStore) AddPendingTask(ctx context.Context, userID, taskID uuid.UUID) error {
	m.record("users.AddPendingTask")
	return m.Called(ctx, userID, taskID).Error(0)
}

func (m *MockUserStore) RemovePendingTasks(ctx context.Context, taskIDs []uuid.UUID, keep uuid.UUID) error {
	m.record("users.RemovePendingTasks")
	return m.Called(ctx, taskIDs, keep).Error(0)
}

func newMocks() (*MockTaskStore, *MockUserStore, *[]string) {
	calls := &[]string{}
	return &MockTaskStore{calls: calls}, &MockUserStore{calls: calls}, calls
}

func TestReconciler_TaskAssigned_RemovesBeforeAdding(t *testing.T) {
	// Arrange
	tasks, users, calls := newMocks()
	taskID, userID := uuid.New(), uuid.New()
	users.On("RemovePendingTasks", mock.Anything, []uuid.UUID{taskID}, userID).Return(nil)
	users.On("AddPendingTask", mock.Anything, userID, taskID).Return(nil)
	r := service.NewReconciler(tasks, users, zerolog.Nop())

	// Act
	err := r.TaskAssigned(context.Background(), taskID, userID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"users.RemovePendingTasks", "users.AddPendingTask"}, *calls)
	users.AssertExpectations(t)
}

func TestReconciler_TaskAssigned_StopsOnRemovalFailure(t *testing.T) {
	tasks, users, calls := newMocks()
	taskID, userID := uuid.New(), uuid.New()
	users.On("RemovePendingTasks", mock.Anything, []uuid.UUID{taskID}, userID).Return(errors.New("connection reset"))
	r := service.NewReconciler(tasks, users, zerolog.Nop())

	err := r.TaskAssigned(context.Background(), taskID, userID)

	assert.Error(t, err)
	assert.Equal(t, []string{"users.RemovePendingTasks"}, *calls)
	users.AssertNotCalled(t, "AddPendingTask", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_TaskReleased_RemovesEverywhere(t *testing.T) {
	tasks, users, _ := newMocks()
	taskID := uuid.New()
	users.On("RemovePendingTasks", mock.Anything, []uuid.UUID{taskID}, uuid.Nil).Return(nil)
	r := service.NewReconciler(tasks, users, zerolog.Nop())

	require.NoError(t, r.TaskReleased(context.Background(), taskID))

	users.AssertExpectations(t)
}

func TestReconciler_PendingTasksChanged_Order(t *testing.T) {
	// Arrange
	tasks, users, calls := newMocks()
	keep, dropped, added := uuid.New(), uuid.New(), uuid.New()
	user := &model.User{ID: uuid.New(), Name: "Alice"}

	tasks.On("Unassign", mock.Anything, []uuid.UUID{dropped}, user.ID).Return(nil)
	users.On("RemovePendingTasks", mock.Anything, []uuid.UUID{added}, user.ID).Return(nil)
	tasks.On("AssignTo", mock.Anything, []uuid.UUID{added}, user.ID, "Alice").Return(nil)
	r := service.NewReconciler(tasks, users, zerolog.Nop())

	// Act
	err := r.PendingTasksChanged(context.Background(), user, []uuid.UUID{keep, dropped}, []uuid.UUID{added, keep})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks.Unassign", "users.RemovePendingTasks", "tasks.AssignTo"}, *calls)
	tasks.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestReconciler_UserRemoved(t *testing.T) {
	tasks, users, _ := newMocks()
	userID := uuid.New()
	tasks.On("UnassignAll", mock.Anything, userID).Return(nil)
	r := service.NewReconciler(tasks, users, zerolog.Nop())

	require.NoError(t, r.UserRemoved(context.Background(), userID))

	tasks.AssertExpectations(t)
}

func TestDiff(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name        string
		old, next   []uuid.UUID
		wantRemoved []uuid.UUID
		wantAdded   []uuid.UUID
	}{
		{"both empty", nil, nil, []uuid.UUID{}, []uuid.UUID{}},
		{"from empty", nil, []uuid.UUID{a, b}, []uuid.UUID{}, []uuid.UUID{a, b}},
		{"to empty", []uuid.UUID{a, b}, nil, []uuid.UUID{a, b}, []uuid.UUID{}},
		{"unchanged in other order", []uuid.UUID{a, b}, []uuid.UUID{b, a}, []uuid.UUID{}, []uuid.UUID{}},
		{"overlap", []uuid.UUID{a, b, c}, []uuid.UUID{c, d}, []uuid.UUID{a, b}, []uuid.UUID{d}},
		{"duplicates collapse", []uuid.UUID{a, a}, []uuid.UUID{d, d}, []uuid.UUID{a}, []uuid.UUID{d}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			removed, added := service.Diff(tt.old, tt.next)
			assert.Equal(t, tt.wantRemoved, removed)
			assert.Equal(t, tt.wantAdded, added)
		})
	}
}

func TestTaskService_CreateInsertsBeforeAssigning(t *testing.T) {
	// Arrange
	tasks, users, calls := newMocks()
	alice := &model.User{ID: uuid.New(), Name: "Alice"}
	users.On("GetByID", mock.Anything, alice.ID).Return(alice, nil)
	tasks.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Task).ID = uuid.New() }).
		Return(nil)
	users.On("RemovePendingTasks", mock.Anything, mock.Anything, alice.ID).Return(nil)
	users.On("AddPendingTask", mock.Anything, alice.ID, mock.Anything).Return(nil)
	tasks.On("GetByID", mock.Anything, mock.Anything).Return(&model.Task{Name: "Write report"}, nil)

	log := zerolog.Nop()
	svc := service.NewTaskService(tasks, users, service.NewReconciler(tasks, users, log), log)

	// Act
	_, err := svc.Create(context.Background(), validationPayload("Write report", alice.ID.String()))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks.Create", "users.RemovePendingTasks", "users.AddPendingTask"}, *calls)
}

func TestTaskService_ReplaceWithoutAssigneeReleases(t *testing.T) {
	tasks, users, calls := newMocks()
	owner := uuid.New()
	existing := &model.Task{ID: uuid.New(), Name: "Write report", AssignedUser: &owner, AssignedUserName: "Alice"}
	tasks.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
	users.On("RemovePendingTasks", mock.Anything, []uuid.UUID{existing.ID}, uuid.Nil).Return(nil)
	tasks.On("Replace", mock.Anything, mock.MatchedBy(func(task *model.Task) bool {
		return task.AssignedUser == nil && task.AssignedUserName == model.UnassignedName
	})).Return(nil)

	log := zerolog.Nop()
	svc := service.NewTaskService(tasks, users, service.NewReconciler(tasks, users, log), log)

	_, err := svc.Replace(context.Background(), existing.ID, validationPayload("Write report", ""))

	require.NoError(t, err)
	assert.Equal(t, []string{"users.RemovePendingTasks", "tasks.Replace"}, *calls)
	users.AssertNotCalled(t, "AddPendingTask", mock.Anything, mock.Anything, mock.Anything)
}
