package inventory

import (
	"sklad-backend/internal/auth"
	"sklad-backend/internal/httputil"
	"sklad-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type stockMaterialRequest struct {
	Stock    uint            `json:"stock" validate:"required"`
	Material uint            `json:"material" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	AvgPrice decimal.Decimal `json:"avg_price"`
}

// GET /api/materials/by_stock/:stock_id
// Materials that currently have a positive balance at the stock.
func MaterialsByStockHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stockID, err := httputil.ParamID(c, "stock_id")
		if err != nil {
			return err
		}
		materials, err := svc.ListAvailableMaterials(c.UserContext(), stockID)
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(NewMaterialResponses(materials))
	}
}

// GET /api/stock_materials/:stock_id/:material_id
func StockMaterialQuantityHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stockID, err := httputil.ParamID(c, "stock_id")
		if err != nil {
			return err
		}
		materialID, err := httputil.ParamID(c, "material_id")
		if err != nil {
			return err
		}
		sm, err := svc.GetBalance(c.UserContext(), stockID, materialID)
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(fiber.Map{"quantity": sm.Quantity})
	}
}

// GET /api/stockmaterials?stock_id=
func ListStockMaterialsHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stockID, err := httputil.QueryID(c, "stock_id")
		if err != nil {
			return err
		}
		rows, err := svc.ListStockMaterials(c.UserContext(), stockID)
		if err != nil {
			return ledgerError(err)
		}
		res := make([]StockMaterialResponse, 0, len(rows))
		for _, sm := range rows {
			res = append(res, NewStockMaterialResponse(sm))
		}
		return c.JSON(res)
	}
}

// POST /api/stockmaterials
// Sets the balance of a pair directly; 201 when the row is new.
func UpsertStockMaterialHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body stockMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректное тело запроса")
		}
		if err := httputil.Validate(&body); err != nil {
			return err
		}

		sm, created, err := svc.UpsertStockMaterial(c.UserContext(), ledger.BalanceInput{
			StockID:    body.Stock,
			MaterialID: body.Material,
			Quantity:   body.Quantity,
			AvgPrice:   body.AvgPrice,
			UserID:     auth.UserID(c),
		})
		if err != nil {
			return ledgerError(err)
		}
		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(NewStockMaterialResponse(*sm))
	}
}
