package models

// OrderCounter is the single-row daily order-number sequence used by
// the offline fallback. The authoritative sequence lives in redis when
// terminals share state.
type OrderCounter struct {
	ID      uint   `gorm:"column:id;primaryKey"`
	Day     string `gorm:"column:day;not null"`
	Highest int    `gorm:"column:highest;not null;default:0"`
}
