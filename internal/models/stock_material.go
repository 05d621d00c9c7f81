package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMaterial: on-hand balance of a material at a stock.
// At most one row per (stock_id, material_id).
type StockMaterial struct {
	ID         uint            `gorm:"primaryKey"`
	StockID    uint            `gorm:"not null;uniqueIndex:idx_stock_material"`
	Stock      Stock           `gorm:"constraint:OnDelete:RESTRICT"`
	MaterialID uint            `gorm:"not null;uniqueIndex:idx_stock_material"`
	Material   Material        `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity   decimal.Decimal `gorm:"type:numeric(18,3);not null"`
	AvgPrice   decimal.Decimal `gorm:"type:numeric(18,4);not null"` // weighted average cost
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
