package inventory

import (
	"strings"

	"sklad-backend/internal/auth"
	"sklad-backend/internal/httputil"
	"sklad-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const msgMaterialNotFound = "Материал не найден"

type materialRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Unit string `json:"unit" validate:"required,max=20"`
}

type updateMaterialRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=100"`
	Unit *string `json:"unit" validate:"omitempty,min=1,max=20"`
}

// GET /api/materials
func ListMaterialsHandler(repo *MaterialRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		materials, err := repo.List(c.UserContext())
		if err != nil {
			return repoError(err, msgMaterialNotFound)
		}
		return c.JSON(NewMaterialResponses(materials))
	}
}

// POST /api/add-materials
func AddMaterialHandler(repo *MaterialRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body materialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректное тело запроса")
		}
		body.Name = strings.TrimSpace(body.Name)
		body.Unit = strings.TrimSpace(body.Unit)
		if err := httputil.Validate(&body); err != nil {
			return err
		}

		m := models.Material{Name: body.Name, Unit: body.Unit}
		if err := repo.Create(c.UserContext(), &m, auth.UserID(c)); err != nil {
			return repoError(err, msgMaterialNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(NewMaterialResponse(m))
	}
}

// PUT /api/materials/:id
func UpdateMaterialHandler(repo *MaterialRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httputil.ParamID(c, "id")
		if err != nil {
			return err
		}

		var body updateMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректное тело запроса")
		}
		if body.Name != nil {
			*body.Name = strings.TrimSpace(*body.Name)
		}
		if body.Unit != nil {
			*body.Unit = strings.TrimSpace(*body.Unit)
		}
		if err := httputil.Validate(&body); err != nil {
			return err
		}

		m, err := repo.Get(c.UserContext(), id)
		if err != nil {
			return repoError(err, msgMaterialNotFound)
		}
		if body.Name != nil {
			m.Name = *body.Name
		}
		if body.Unit != nil {
			m.Unit = *body.Unit
		}
		if err := repo.Update(c.UserContext(), m, auth.UserID(c)); err != nil {
			return repoError(err, msgMaterialNotFound)
		}
		return c.JSON(NewMaterialResponse(*m))
	}
}

// DELETE /api/materials/:id/delete
func DeleteMaterialHandler(repo *MaterialRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httputil.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := repo.Delete(c.UserContext(), id, auth.UserID(c)); err != nil {
			return repoError(err, msgMaterialNotFound)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
