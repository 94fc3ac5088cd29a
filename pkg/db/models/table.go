package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mvgarcia/taproom/pkg/enums"
	"gorm.io/gorm"
)

// Table is the fallback mirror of a mesa at the physical location.
type Table struct {
	ID          uuid.UUID         `gorm:"column:id;type:text;primaryKey"`
	Name        string            `gorm:"column:name;not null"`
	Number      string            `gorm:"column:number;not null"`
	Slug        string            `gorm:"column:slug;not null;uniqueIndex:tables_slug_key"`
	Occupied    bool              `gorm:"column:occupied;not null;default:false"`
	Status      enums.TableStatus `gorm:"column:status;not null;default:Livre"`
	OrderNumber int               `gorm:"column:order_number;not null;default:0"`
	NotNumeric  bool              `gorm:"column:not_numeric;not null;default:false"`
	TotalPeople int               `gorm:"column:total_people;not null;default:1"`
	PeoplePaid  int               `gorm:"column:people_paid;not null;default:0"`
	PaidCents   int64             `gorm:"column:paid_cents;not null;default:0"`
	OpenedAt    *time.Time        `gorm:"column:opened_at"`
	Items       []TableItem       `gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the row ID; SQLite has no uuid default.
func (t *Table) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
