package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mvgarcia/taproom/pkg/enums"
	"gorm.io/gorm"
)

// StockMovement is one entry of the inbound/outbound stock ledger.
type StockMovement struct {
	ID          uuid.UUID               `gorm:"column:id;type:text;primaryKey"`
	ProductSlug string                  `gorm:"column:product_slug;not null;index:stock_movements_product_slug_idx"`
	Direction   enums.MovementDirection `gorm:"column:direction;not null"`
	Quantity    int                     `gorm:"column:quantity;not null"`
	RecordedAt  time.Time               `gorm:"column:recorded_at;autoCreateTime"`
}

// BeforeCreate assigns the row ID.
func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
