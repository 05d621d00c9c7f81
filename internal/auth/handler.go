package auth

import (
	"errors"

	"sklad-backend/internal/httputil"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Message string `json:"message"`
	UserID  uint   `json:"user_id"`
	Token   string `json:"token"`
}

// POST /api/login
func LoginHandler(db *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректное тело запроса")
		}
		if err := httputil.Validate(body); err != nil {
			return err
		}

		user, err := Authenticate(c.UserContext(), db, body.Username, body.Password)
		switch {
		case errors.Is(err, ErrBadCredentials):
			return fiber.NewError(fiber.StatusBadRequest, msgBadCredentials)
		case errors.Is(err, ErrNoMobileAccess):
			return fiber.NewError(fiber.StatusBadRequest, msgNoMobileAccess)
		case err != nil:
			log.Error().Err(err).Str("username", body.Username).Msg("login failed")
			return fiber.NewError(fiber.StatusInternalServerError, "Ошибка входа")
		}

		token, err := GenerateToken(secret, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось создать токен")
		}

		return c.JSON(LoginResponse{
			Message: msgLoginOK,
			UserID:  user.ID,
			Token:   token,
		})
	}
}
