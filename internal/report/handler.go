package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	msgTelegramSent     = "Сообщение отправлено в Telegram"
	msgTelegramFailed   = "Не удалось отправить сообщение в Telegram"
	msgTelegramDisabled = "Отправка в Telegram не настроена"
	msgInvalidFilter    = "Допустимые значения: all, comings, expenses, credit"
	msgInvalidDate      = "Дата должна быть в формате YYYY-MM-DD"
)

const sendTimeout = 20 * time.Second

// Notifier delivers a rendered report.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}

func summaryFromQuery(c *fiber.Ctx, engine *Engine, filterParam string) (*Summary, error) {
	filter, err := ParseFilter(c.Query(filterParam))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, filterParam+": "+msgInvalidFilter)
	}
	day, err := engine.Day(c.Query("date"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "date: "+msgInvalidDate)
	}
	s, err := engine.DailySummary(c.UserContext(), day, filter)
	if err != nil {
		log.Error().Err(err).Str("date", day.Format(dayLayout)).Msg("daily summary failed")
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Не удалось сформировать отчёт")
	}
	return s, nil
}

// GET /api/daily-summary?date=&filter=
func DailySummaryHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := summaryFromQuery(c, engine, "filter")
		if err != nil {
			return err
		}
		return c.JSON(Payload(s, engine.Location()))
	}
}

// GET /api/daily-summary/export?date=&filter=
func ExportDailySummaryHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := summaryFromQuery(c, engine, "filter")
		if err != nil {
			return err
		}
		data, err := ExportXLSX(s, engine.Location())
		if err != nil {
			log.Error().Err(err).Msg("xlsx export failed")
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось сформировать файл")
		}

		filename := fmt.Sprintf("daily-summary-%s-%s.xlsx", s.Day.Format(dayLayout), s.Filter)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(data)
	}
}

// POST /api/send-telegram?date=&type=
// notifier may be nil when Telegram is not configured.
func SendTelegramHandler(engine *Engine, notifier Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if notifier == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, msgTelegramDisabled)
		}
		s, err := summaryFromQuery(c, engine, "type")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), sendTimeout)
		defer cancel()

		if err := notifier.SendMessage(ctx, FormatMessage(s)); err != nil {
			ev := log.Error().Err(err).Str("date", s.Day.Format(dayLayout)).Str("type", string(s.Filter))
			if errors.Is(err, context.DeadlineExceeded) {
				ev = ev.Bool("timeout", true)
			}
			ev.Msg("telegram delivery failed")
			return fiber.NewError(fiber.StatusBadGateway, msgTelegramFailed)
		}
		return c.JSON(fiber.Map{"status": msgTelegramSent})
	}
}
