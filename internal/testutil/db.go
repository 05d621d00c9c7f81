package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"sklad-backend/internal/database"
	"sklad-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh sqlite database in the test temp dir and migrates it.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func CreateMaterial(t *testing.T, db *gorm.DB, name, unit string) models.Material {
	t.Helper()
	m := models.Material{Name: name, Unit: unit}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("create material: %v", err)
	}
	return m
}

func CreateStock(t *testing.T, db *gorm.DB, name string) models.Stock {
	t.Helper()
	s := models.Stock{Name: name}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("create stock: %v", err)
	}
	return s
}

func CreateBalance(t *testing.T, db *gorm.DB, stockID, materialID uint, qty, avg string) models.StockMaterial {
	t.Helper()
	sm := models.StockMaterial{StockID: stockID, MaterialID: materialID, Quantity: Dec(qty), AvgPrice: Dec(avg)}
	if err := db.Create(&sm).Error; err != nil {
		t.Fatalf("create stock material: %v", err)
	}
	return sm
}

func CreateComing(t *testing.T, db *gorm.DB, stockID, materialID uint, qty, price string, at time.Time) models.Coming {
	t.Helper()
	c := models.Coming{StockID: stockID, MaterialID: materialID, Quantity: Dec(qty), Price: Dec(price), ArrivalDate: at}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("create coming: %v", err)
	}
	return c
}

func CreateExpense(t *testing.T, db *gorm.DB, stockID, materialID uint, qty, price string, onCredit bool, debtor string, at time.Time) models.Expense {
	t.Helper()
	e := models.Expense{
		StockID: stockID, MaterialID: materialID,
		Quantity: Dec(qty), Price: Dec(price),
		OnCredit: onCredit, DebtorName: debtor, ExpensesDate: at,
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return e
}
