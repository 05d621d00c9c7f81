package inventory

import (
	"errors"

	"sklad-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	msgBalanceNotFound   = "Материал на складе не найден"
	msgInsufficientStock = "Недостаточно материала на складе"
)

// ledgerError maps stock ledger errors onto HTTP errors.
func ledgerError(err error) error {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.NewError(fiber.StatusBadRequest, verr.Error())
	case errors.Is(err, ledger.ErrInsufficientStock):
		return fiber.NewError(fiber.StatusBadRequest, msgInsufficientStock)
	case errors.Is(err, ledger.ErrBalanceNotFound):
		return fiber.NewError(fiber.StatusNotFound, msgBalanceNotFound)
	case errors.Is(err, ledger.ErrLockTimeout):
		return fiber.NewError(fiber.StatusConflict, "Остаток сейчас изменяется, повторите запрос")
	default:
		log.Error().Err(err).Msg("stock ledger operation failed")
		return fiber.NewError(fiber.StatusInternalServerError, "Не удалось выполнить операцию")
	}
}

func repoError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, notFoundMsg)
	case errors.Is(err, ErrInUse):
		return fiber.NewError(fiber.StatusConflict, "Запись используется в приходах, расходах или остатках")
	default:
		log.Error().Err(err).Msg("repository operation failed")
		return fiber.NewError(fiber.StatusInternalServerError, "Не удалось выполнить операцию")
	}
}
