package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	Email       string    `gorm:"uniqueIndex;not null"`
	DateCreated time.Time `gorm:"not null;autoCreateTime"`

	// PendingTasks is stored in user_pending_tasks and loaded by the repository.
	PendingTasks []uuid.UUID `gorm:"-"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PendingTask is one membership of a task id in a user's pending set.
type PendingTask struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaskID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (PendingTask) TableName() string {
	return "user_pending_tasks"
}
