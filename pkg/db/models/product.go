package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product mirrors a catalog product for offline use.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:text;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Code        string    `gorm:"column:code"`
	CostCents   int64     `gorm:"column:cost_cents;not null;default:0"`
	PriceCents  int64     `gorm:"column:price_cents;not null;default:0"`
	Stock       int       `gorm:"column:stock;not null;default:0"`
	Category    string    `gorm:"column:category;index:products_category_idx"`
	CompanyID   string    `gorm:"column:company_id"`
	Image       string    `gorm:"column:image"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex:products_slug_key"`
	Available   bool      `gorm:"column:available;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the row ID.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
