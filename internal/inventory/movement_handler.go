package inventory

import (
	"strings"
	"time"

	"sklad-backend/internal/auth"
	"sklad-backend/internal/httputil"
	"sklad-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type comingRequest struct {
	Stock       uint            `json:"stock" validate:"required"`
	Material    uint            `json:"material" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ArrivalDate string          `json:"arrival_date"`
}

type expenseRequest struct {
	Stock        uint            `json:"stock" validate:"required"`
	Material     uint            `json:"material" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	OnCredit     bool            `json:"on_credit"`
	DebtorName   string          `json:"debtor_name" validate:"max=150"`
	ExpensesDate string          `json:"expenses_date"`
}

// POST /api/coming
func CreateComingHandler(svc *ledger.Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body comingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректное тело запроса")
		}
		if err := httputil.Validate(&body); err != nil {
			return err
		}
		arrival, err := parseMovementTime(body.ArrivalDate, loc)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "arrival_date: некорректная дата")
		}

		coming, err := svc.RecordComing(c.UserContext(), ledger.ComingInput{
			StockID:     body.Stock,
			MaterialID:  body.Material,
			Quantity:    body.Quantity,
			Price:       body.Price,
			ArrivalDate: arrival,
			UserID:      auth.UserID(c),
		})
		if err != nil {
			return ledgerError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(NewComingResponse(*coming, loc))
	}
}

// POST /api/expenses
func CreateExpenseHandler(svc *ledger.Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body expenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректное тело запроса")
		}
		body.DebtorName = strings.TrimSpace(body.DebtorName)
		if err := httputil.Validate(&body); err != nil {
			return err
		}
		spent, err := parseMovementTime(body.ExpensesDate, loc)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "expenses_date: некорректная дата")
		}

		expense, err := svc.RecordExpense(c.UserContext(), ledger.ExpenseInput{
			StockID:      body.Stock,
			MaterialID:   body.Material,
			Quantity:     body.Quantity,
			Price:        body.Price,
			OnCredit:     body.OnCredit,
			DebtorName:   body.DebtorName,
			ExpensesDate: spent,
			UserID:       auth.UserID(c),
		})
		if err != nil {
			return ledgerError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(NewExpenseResponse(*expense, loc))
	}
}
