package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the only persisted entity. Email is stored exactly as submitted.
type User struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string    `gorm:"uniqueIndex:uq_users_email;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"not null" json:"fullName,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
