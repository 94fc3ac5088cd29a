package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice is a supplier nota fiscal tied to a company.
type Invoice struct {
	ID          uuid.UUID     `gorm:"column:id;type:text;primaryKey"`
	CompanyID   uuid.UUID     `gorm:"column:company_id;type:text;not null;index:invoices_company_id_idx"`
	Number      string        `gorm:"column:number;not null"`
	AmountCents int64         `gorm:"column:amount_cents;not null"`
	IssuedAt    time.Time     `gorm:"column:issued_at"`
	Slug        string        `gorm:"column:slug;not null;uniqueIndex:invoices_slug_key"`
	Items       []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the row ID.
func (i *Invoice) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InvoiceItem is one line of a supplier invoice.
type InvoiceItem struct {
	ID             uuid.UUID `gorm:"column:id;type:text;primaryKey"`
	InvoiceID      uuid.UUID `gorm:"column:invoice_id;type:text;not null;index:invoice_items_invoice_id_idx"`
	Description    string    `gorm:"column:description;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
}

// BeforeCreate assigns the row ID.
func (i *InvoiceItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
