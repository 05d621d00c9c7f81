package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense: outgoing usage or sale of a material from a stock. Append-only.
type Expense struct {
	ID           uint            `gorm:"primaryKey"`
	StockID      uint            `gorm:"index;not null"`
	Stock        Stock           `gorm:"constraint:OnDelete:RESTRICT"`
	MaterialID   uint            `gorm:"index;not null"`
	Material     Material        `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity     decimal.Decimal `gorm:"type:numeric(18,3);not null"`
	Price        decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	OnCredit     bool            `gorm:"not null;index"`
	DebtorName   string          `gorm:"size:150"` // only meaningful when OnCredit
	ExpensesDate time.Time       `gorm:"index;not null"`
	CreatedAt    time.Time
}

func (e Expense) Total() decimal.Decimal {
	return e.Quantity.Mul(e.Price)
}
