package inventory

import (
	"time"

	"sklad-backend/internal/models"

	"github.com/shopspring/decimal"
)

const createdAtLayout = "2006-01-02 15:04:05"

type MaterialResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	CreatedAt string `json:"created_at"`
}

type StockResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type ComingResponse struct {
	ID           uint            `json:"id"`
	Stock        uint            `json:"stock"`
	StockName    string          `json:"stock_name"`
	Material     uint            `json:"material"`
	MaterialName string          `json:"material_name"`
	MaterialUnit string          `json:"material_unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	ArrivalDate  string          `json:"arrival_date"`
}

type ExpenseResponse struct {
	ID           uint            `json:"id"`
	Stock        uint            `json:"stock"`
	StockName    string          `json:"stock_name"`
	Material     uint            `json:"material"`
	MaterialName string          `json:"material_name"`
	MaterialUnit string          `json:"material_unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	OnCredit     bool            `json:"on_credit"`
	DebtorName   string          `json:"debtor_name"`
	ExpensesDate string          `json:"expenses_date"`
}

type StockMaterialResponse struct {
	ID           uint            `json:"id"`
	Stock        uint            `json:"stock"`
	StockName    string          `json:"stock_name"`
	Material     uint            `json:"material"`
	MaterialName string          `json:"material_name"`
	MaterialUnit string          `json:"material_unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avg_price"`
}

func NewMaterialResponse(m models.Material) MaterialResponse {
	return MaterialResponse{
		ID:        m.ID,
		Name:      m.Name,
		Unit:      m.Unit,
		CreatedAt: m.CreatedAt.Format(createdAtLayout),
	}
}

func NewMaterialResponses(ms []models.Material) []MaterialResponse {
	res := make([]MaterialResponse, 0, len(ms))
	for _, m := range ms {
		res = append(res, NewMaterialResponse(m))
	}
	return res
}

func NewStockResponse(s models.Stock) StockResponse {
	return StockResponse{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt.Format(createdAtLayout),
	}
}

// NewComingResponse expects Stock and Material to be loaded.
func NewComingResponse(c models.Coming, loc *time.Location) ComingResponse {
	return ComingResponse{
		ID:           c.ID,
		Stock:        c.StockID,
		StockName:    c.Stock.Name,
		Material:     c.MaterialID,
		MaterialName: c.Material.Name,
		MaterialUnit: c.Material.Unit,
		Quantity:     c.Quantity,
		Price:        c.Price,
		ArrivalDate:  c.ArrivalDate.In(loc).Format(time.RFC3339),
	}
}

// NewExpenseResponse expects Stock and Material to be loaded.
func NewExpenseResponse(e models.Expense, loc *time.Location) ExpenseResponse {
	return ExpenseResponse{
		ID:           e.ID,
		Stock:        e.StockID,
		StockName:    e.Stock.Name,
		Material:     e.MaterialID,
		MaterialName: e.Material.Name,
		MaterialUnit: e.Material.Unit,
		Quantity:     e.Quantity,
		Price:        e.Price,
		OnCredit:     e.OnCredit,
		DebtorName:   e.DebtorName,
		ExpensesDate: e.ExpensesDate.In(loc).Format(time.RFC3339),
	}
}

func NewStockMaterialResponse(sm models.StockMaterial) StockMaterialResponse {
	return StockMaterialResponse{
		ID:           sm.ID,
		Stock:        sm.StockID,
		StockName:    sm.Stock.Name,
		Material:     sm.MaterialID,
		MaterialName: sm.Material.Name,
		MaterialUnit: sm.Material.Unit,
		Quantity:     sm.Quantity,
		AvgPrice:     sm.AvgPrice,
	}
}
