package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskapi/internal/model"
	"taskapi/internal/query"
)

const usersTable = "users"

// UserRepository stores a user document as its users row plus the
// user_pending_tasks rows. Whole-document writes run in one transaction;
// nothing here spans two users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return translate(err)
		}
		return insertPending(tx, user.ID, user.PendingTasks)
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	users := []model.User{user}
	if err := r.loadPending(ctx, users); err != nil {
		return nil, err
	}
	return &users[0], nil
}

// FindByEmail returns nil when no user holds email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Find(ctx context.Context, q *query.Query) ([]model.User, error) {
	users := []model.User{}
	db := applyQuery(r.db.WithContext(ctx).Model(&model.User{}), usersTable, q)
	if err := db.Find(&users).Error; err != nil {
		return nil, err
	}
	if err := r.loadPending(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context, where []query.Condition) (int64, error) {
	var n int64
	err := applyWhere(r.db.WithContext(ctx).Model(&model.User{}), usersTable, where).Count(&n).Error
	return n, err
}

// Replace overwrites name, email and the whole pending set
func (r *UserRepository) Replace(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{
				"name":  user.Name,
				"email": user.Email,
			})
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&model.PendingTask{}).Error; err != nil {
			return err
		}
		return insertPending(tx, user.ID, user.PendingTasks)
	})
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.PendingTask{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.User{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// AddPendingTask adds taskID to the user's pending set. Adding an existing
// member is a no-op
func (r *UserRepository) AddPendingTask(ctx context.Context, userID, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.PendingTask{UserID: userID, TaskID: taskID}).Error
}

// RemovePendingTasks removes the task ids from the pending set of every user
// except keep. A nil keep removes them everywhere
func (r *UserRepository) RemovePendingTasks(ctx context.Context, taskIDs []uuid.UUID, keep uuid.UUID) error {
	if len(taskIDs) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx).Where("task_id IN ?", taskIDs)
	if keep != uuid.Nil {
		db = db.Where("user_id <> ?", keep)
	}
	return db.Delete(&model.PendingTask{}).Error
}

func (r *UserRepository) loadPending(ctx context.Context, users []model.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(users))
	index := make(map[uuid.UUID]int, len(users))
	for i := range users {
		ids[i] = users[i].ID
		index[users[i].ID] = i
		users[i].PendingTasks = []uuid.UUID{}
	}

	var rows []model.PendingTask
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Order("task_id").Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		i := index[row.UserID]
		users[i].PendingTasks = append(users[i].PendingTasks, row.TaskID)
	}
	return nil
}

func insertPending(tx *gorm.DB, userID uuid.UUID, taskIDs []uuid.UUID) error {
	if len(taskIDs) == 0 {
		return nil
	}
	rows := make([]model.PendingTask, 0, len(taskIDs))
	for _, id := range taskIDs {
		rows = append(rows, model.PendingTask{UserID: userID, TaskID: id})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}
