package repository_test

import (
	"context"
	"testing"
	"time"

	"taskapi/internal/model"
	"taskapi/internal/query"
	"taskapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_FindByEmail_Found(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	userID := uuid.New()
	email := "test@example.com"

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE email = .* LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "date_created"}).
			AddRow(userID.String(), "Test User", email, time.Now()))

	// Act
	user, err := userRepo.FindByEmail(context.Background(), email)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, "Test User", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE email = .* LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "date_created"}))

	// Act
	user, err := userRepo.FindByEmail(context.Background(), "nonexistent@example.com")

	// Assert
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_Error(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE email = .* LIMIT`).
		WillReturnError(assert.AnError)

	// Act
	user, err := userRepo.FindByEmail(context.Background(), "test@example.com")

	// Assert
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_AddPendingTask_IgnoresConflict(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)
	userID, taskID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "user_pending_tasks" .* ON CONFLICT DO NOTHING`).
		WithArgs(userID.String(), taskID.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	err := userRepo.AddPendingTask(context.Background(), userID, taskID)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_RemovePendingTasks_KeepsOwner(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)
	taskID, keep := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "user_pending_tasks" WHERE task_id IN .* AND user_id <> `).
		WithArgs(taskID.String(), keep.String()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	// Act
	err := userRepo.RemovePendingTasks(context.Background(), []uuid.UUID{taskID}, keep)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_RemovePendingTasks_Empty(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	err := userRepo.RemovePendingTasks(context.Background(), nil, uuid.Nil)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithPendingTasks(t *testing.T) {
	// Arrange
	repo := repository.NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	t1, t2 := uuid.New(), uuid.New()
	user := &model.User{Name: "Alice", Email: "alice@example.com", PendingTasks: []uuid.UUID{t1, t2}}

	// Act
	err := repo.Create(ctx, user)

	// Assert
	require.NoError(t, err)
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.ElementsMatch(t, []uuid.UUID{t1, t2}, got.PendingTasks)
	assert.False(t, got.DateCreated.IsZero())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo := repository.NewUserRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmailRejectedByIndex(t *testing.T) {
	repo := repository.NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.User{Name: "A", Email: "same@example.com"}))

	err := repo.Create(ctx, &model.User{Name: "B", Email: "same@example.com"})

	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUserRepository_ReplaceOverwritesPendingSet(t *testing.T) {
	repo := repository.NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	t1, t2, t3 := uuid.New(), uuid.New(), uuid.New()
	user := &model.User{Name: "Alice", Email: "alice@example.com", PendingTasks: []uuid.UUID{t1, t2}}
	require.NoError(t, repo.Create(ctx, user))

	err := repo.Replace(ctx, &model.User{ID: user.ID, Name: "Alicia", Email: "alicia@example.com", PendingTasks: []uuid.UUID{t2, t3}})

	require.NoError(t, err)
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.Name)
	assert.Equal(t, "alicia@example.com", got.Email)
	assert.ElementsMatch(t, []uuid.UUID{t2, t3}, got.PendingTasks)

	assert.ErrorIs(t, repo.Replace(ctx, &model.User{ID: uuid.New(), Name: "x", Email: "x@example.com"}), repository.ErrUserNotFound)
}

func TestUserRepository_DeleteRemovesPendingRows(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()
	user := &model.User{Name: "Alice", Email: "alice@example.com", PendingTasks: []uuid.UUID{uuid.New()}}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.Delete(ctx, user.ID))

	var rows int64
	require.NoError(t, db.Model(&model.PendingTask{}).Count(&rows).Error)
	assert.Zero(t, rows)
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), repository.ErrUserNotFound)
}

func TestUserRepository_PendingSetOperations(t *testing.T) {
	repo := repository.NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	task := uuid.New()
	alice := &model.User{Name: "Alice", Email: "alice@example.com", PendingTasks: []uuid.UUID{task}}
	bob := &model.User{Name: "Bob", Email: "bob@example.com", PendingTasks: []uuid.UUID{task}}
	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, bob))

	// Adding twice leaves one membership.
	require.NoError(t, repo.AddPendingTask(ctx, alice.ID, task))

	require.NoError(t, repo.RemovePendingTasks(ctx, []uuid.UUID{task}, alice.ID))
	gotAlice, _ := repo.GetByID(ctx, alice.ID)
	gotBob, _ := repo.GetByID(ctx, bob.ID)
	assert.Equal(t, []uuid.UUID{task}, gotAlice.PendingTasks)
	assert.Empty(t, gotBob.PendingTasks)

	require.NoError(t, repo.RemovePendingTasks(ctx, []uuid.UUID{task}, uuid.Nil))
	gotAlice, _ = repo.GetByID(ctx, alice.ID)
	assert.Empty(t, gotAlice.PendingTasks)
}

func TestUserRepository_FindByPendingMembership(t *testing.T) {
	repo := repository.NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	task := uuid.New()
	require.NoError(t, repo.Create(ctx, &model.User{Name: "Alice", Email: "alice@example.com", PendingTasks: []uuid.UUID{task}}))
	require.NoError(t, repo.Create(ctx, &model.User{Name: "Bob", Email: "bob@example.com"}))

	with, err := repo.Find(ctx, mustQuery(t, query.Users, "where", `{"pendingTasks": "`+task.String()+`"}`))
	require.NoError(t, err)
	require.Len(t, with, 1)
	assert.Equal(t, "Alice", with[0].Name)
	assert.Equal(t, []uuid.UUID{task}, with[0].PendingTasks)

	without, err := repo.Find(ctx, mustQuery(t, query.Users, "where", `{"pendingTasks": {"$nin": ["`+task.String()+`"]}}`))
	require.NoError(t, err)
	require.Len(t, without, 1)
	assert.Equal(t, "Bob", without[0].Name)
	assert.Equal(t, []uuid.UUID{}, without[0].PendingTasks)

	byEmail, err := repo.Count(ctx, mustQuery(t, query.Users, "where", `{"email": "bob@example.com"}`).Where)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byEmail)
}
