package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is a supplier record kept by the back office.
type Company struct {
	ID          uuid.UUID `gorm:"column:id;type:text;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Address     string    `gorm:"column:address"`
	Phone       string    `gorm:"column:phone"`
	CNPJ        string    `gorm:"column:cnpj"`
	Email       string    `gorm:"column:email"`
	Responsible string    `gorm:"column:responsible"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex:companies_slug_key"`
	Invoices    []Invoice `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the row ID.
func (c *Company) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
