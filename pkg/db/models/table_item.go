package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TableItem is one line of an open table order.
type TableItem struct {
	ID             uuid.UUID `gorm:"column:id;type:text;primaryKey"`
	TableID        uuid.UUID `gorm:"column:table_id;type:text;not null;index:table_items_table_id_idx"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:text;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	ProductSlug    string    `gorm:"column:product_slug;not null;index:table_items_product_slug_idx"`
	Slug           string    `gorm:"column:slug;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	TotalCents     int64     `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the row ID.
func (i *TableItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
