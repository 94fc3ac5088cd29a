package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category mirrors a product category.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:text;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex:categories_slug_key"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the row ID.
func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
