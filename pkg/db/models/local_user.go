package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mvgarcia/taproom/pkg/enums"
	"gorm.io/gorm"
)

// LocalUser is a fallback account used by the dev server's login flow.
// Real credentials live behind the backend API and never land here.
type LocalUser struct {
	ID           uuid.UUID      `gorm:"column:id;type:text;primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Email        string         `gorm:"column:email;not null;uniqueIndex:local_users_email_key"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	UserType     enums.UserType `gorm:"column:user_type;not null;default:online"`
	Slug         string         `gorm:"column:slug;not null"`
	Active       bool           `gorm:"column:active;not null;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the row ID.
func (u *LocalUser) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
