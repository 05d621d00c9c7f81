package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"sklad-backend/internal/audit"
	"sklad-backend/internal/auth"
	"sklad-backend/internal/config"
	"sklad-backend/internal/database"
	"sklad-backend/internal/httputil"
	"sklad-backend/internal/inventory"
	"sklad-backend/internal/ledger"
	"sklad-backend/internal/logger"
	"sklad-backend/internal/report"
	"sklad-backend/internal/telegram"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("load timezone")
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}

	locker, closeLocker := newLocker(cfg)
	defer closeLocker()

	ledgerSvc := ledger.NewService(db, locker)
	materials := inventory.NewMaterialRepository(db)
	stocks := inventory.NewStockRepository(db)
	reports := report.NewEngine(db, loc)

	// keep the interface nil when Telegram is off so the handler answers 503
	var notifier report.Notifier
	if cfg.TelegramEnabled() {
		notifier = telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramAPIURL)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: httputil.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	api := app.Group("/api")

	// Public
	api.Post("/login", auth.LoginHandler(db, cfg.JWTSecret))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	// Materials
	protected.Get("/materials", inventory.ListMaterialsHandler(materials))
	protected.Post("/add-materials", inventory.AddMaterialHandler(materials))
	protected.Get("/materials/by_stock/:stock_id", inventory.MaterialsByStockHandler(ledgerSvc))
	protected.Put("/materials/:id", inventory.UpdateMaterialHandler(materials))
	protected.Delete("/materials/:id/delete", inventory.DeleteMaterialHandler(materials))

	// Stocks
	protected.Get("/stock", inventory.ListStocksHandler(stocks))
	protected.Post("/stock", inventory.CreateStockHandler(stocks))
	protected.Delete("/stock/:id/delete", inventory.DeleteStockHandler(stocks))

	// Movements
	protected.Post("/coming", inventory.CreateComingHandler(ledgerSvc, loc))
	protected.Post("/expenses", inventory.CreateExpenseHandler(ledgerSvc, loc))

	// Balances
	protected.Get("/stock_materials/:stock_id/:material_id", inventory.StockMaterialQuantityHandler(ledgerSvc))
	protected.Get("/stockmaterials", inventory.ListStockMaterialsHandler(ledgerSvc))
	protected.Post("/stockmaterials", inventory.UpsertStockMaterialHandler(ledgerSvc))

	// Reports
	protected.Get("/daily-summary", report.DailySummaryHandler(reports))
	protected.Get("/daily-summary/export", report.ExportDailySummaryHandler(reports))
	protected.Post("/send-telegram", report.SendTelegramHandler(reports, notifier))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("timezone", loc.String()).Msg("server listening")
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// newLocker picks the Redis lock when REDIS_ADDRESS is set, the in-process one otherwise.
func newLocker(cfg *config.Config) (ledger.Locker, func()) {
	if cfg.RedisAddr == "" {
		return ledger.NewKeyedMutex(), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connect redis")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis stock locks")
	return ledger.NewRedisLocker(client), func() { client.Close() }
}
