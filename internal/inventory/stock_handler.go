package inventory

import (
	"strings"

	"sklad-backend/internal/auth"
	"sklad-backend/internal/httputil"
	"sklad-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const msgStockNotFound = "Склад не найден"

type stockRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// GET /api/stock
func ListStocksHandler(repo *StockRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stocks, err := repo.List(c.UserContext())
		if err != nil {
			return repoError(err, msgStockNotFound)
		}
		res := make([]StockResponse, 0, len(stocks))
		for _, s := range stocks {
			res = append(res, NewStockResponse(s))
		}
		return c.JSON(res)
	}
}

// POST /api/stock
func CreateStockHandler(repo *StockRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body stockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректное тело запроса")
		}
		body.Name = strings.TrimSpace(body.Name)
		if err := httputil.Validate(&body); err != nil {
			return err
		}

		s := models.Stock{Name: body.Name}
		if err := repo.Create(c.UserContext(), &s, auth.UserID(c)); err != nil {
			return repoError(err, msgStockNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(NewStockResponse(s))
	}
}

// DELETE /api/stock/:id/delete
func DeleteStockHandler(repo *StockRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httputil.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := repo.Delete(c.UserContext(), id, auth.UserID(c)); err != nil {
			return repoError(err, msgStockNotFound)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
