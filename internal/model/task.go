package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnassignedName is stored in AssignedUserName while a task has no assignee.
const UnassignedName = "unassigned"

type Task struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name             string     `gorm:"not null"`
	Description      string     `gorm:"not null;default:''"`
	Deadline         time.Time  `gorm:"not null"`
	Completed        bool       `gorm:"not null;default:false;index"`
	AssignedUser     *uuid.UUID `gorm:"type:uuid;index"`
	AssignedUserName string     `gorm:"not null;default:'unassigned'"`
	DateCreated      time.Time  `gorm:"not null;autoCreateTime"`
}

// BeforeCreate allocates the id so every dialect behaves the same.
func (t *Task) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.AssignedUser == nil && t.AssignedUserName == "" {
		t.AssignedUserName = UnassignedName
	}
	return nil
}

// IsAssigned reports whether the task currently references a user.
func (t *Task) IsAssigned() bool {
	return t.AssignedUser != nil && *t.AssignedUser != uuid.Nil
}
