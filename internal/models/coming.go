package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coming: incoming delivery of a material to a stock. Append-only.
type Coming struct {
	ID          uint            `gorm:"primaryKey"`
	StockID     uint            `gorm:"index;not null"`
	Stock       Stock           `gorm:"constraint:OnDelete:RESTRICT"`
	MaterialID  uint            `gorm:"index;not null"`
	Material    Material        `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,3);not null"`
	Price       decimal.Decimal `gorm:"type:numeric(18,2);not null"` // unit price
	ArrivalDate time.Time       `gorm:"index;not null"`
	CreatedAt   time.Time
}

// Total returns quantity * price.
func (c Coming) Total() decimal.Decimal {
	return c.Quantity.Mul(c.Price)
}
