package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sklad-backend/internal/audit"
	"sklad-backend/internal/database"
	"sklad-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// column scales of quantity, price and avg_price
const (
	quantityScale = 3
	priceScale    = 2
	avgPriceScale = 4
)

// Service keeps StockMaterial balances consistent with the Coming and Expense
// records. Every movement and its balance change are written in one transaction.
type Service struct {
	db     *gorm.DB
	locker Locker
	now    func() time.Time
}

func NewService(db *gorm.DB, locker Locker) *Service {
	if locker == nil {
		locker = NewKeyedMutex()
	}
	return &Service{db: db, locker: locker, now: time.Now}
}

type ComingInput struct {
	StockID     uint
	MaterialID  uint
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	ArrivalDate time.Time // zero means now
	UserID      *uint
}

type ExpenseInput struct {
	StockID      uint
	MaterialID   uint
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	OnCredit     bool
	DebtorName   string
	ExpensesDate time.Time // zero means now
	UserID       *uint
}

type BalanceInput struct {
	StockID    uint
	MaterialID uint
	Quantity   decimal.Decimal
	AvgPrice   decimal.Decimal
	UserID     *uint
}

// RecordComing stores a delivery and adds it to the balance, recomputing the
// weighted average price. The balance row is created on the first delivery.
func (s *Service) RecordComing(ctx context.Context, in ComingInput) (*models.Coming, error) {
	if !in.Quantity.IsPositive() {
		return nil, invalid("quantity", "Количество должно быть больше нуля")
	}
	if in.Price.IsNegative() {
		return nil, invalid("price", "Цена не может быть отрицательной")
	}
	if err := checkScales(in.Quantity, in.Price, "price", priceScale); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, pairKey(in.StockID, in.MaterialID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	arrival := in.ArrivalDate
	if arrival.IsZero() {
		arrival = s.now()
	}

	var coming models.Coming
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, material, err := loadRefs(tx, in.StockID, in.MaterialID)
		if err != nil {
			return err
		}

		coming = models.Coming{
			StockID:     in.StockID,
			MaterialID:  in.MaterialID,
			Quantity:    in.Quantity,
			Price:       in.Price,
			ArrivalDate: arrival,
		}
		if err := tx.Create(&coming).Error; err != nil {
			return fmt.Errorf("create coming: %w", err)
		}

		balance, err := lockedBalance(tx, in.StockID, in.MaterialID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			balance = &models.StockMaterial{
				StockID:    in.StockID,
				MaterialID: in.MaterialID,
				Quantity:   in.Quantity,
				AvgPrice:   in.Price,
			}
			if err := tx.Create(balance).Error; err != nil {
				return fmt.Errorf("create stock material: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load stock material: %w", err)
		default:
			qty := balance.Quantity.Add(in.Quantity)
			avg := WeightedAverage(balance.Quantity, balance.AvgPrice, in.Quantity, in.Price)
			if err := tx.Model(balance).Updates(map[string]any{
				"quantity":  qty,
				"avg_price": avg,
			}).Error; err != nil {
				return fmt.Errorf("update stock material: %w", err)
			}
		}

		coming.Stock = *stock
		coming.Material = *material

		return audit.WriteLog(ctx, tx, audit.LogOptions{
			UserID:      in.UserID,
			EntityType:  "coming",
			EntityID:    coming.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Приход: %s %s %s на %s", material.Name, coming.Quantity, material.Unit, stock.Name),
			After:       coming,
		})
	})
	if err != nil {
		return nil, err
	}
	return &coming, nil
}

// RecordExpense stores an outgoing movement only if the balance covers it and
// decrements the balance in the same transaction.
func (s *Service) RecordExpense(ctx context.Context, in ExpenseInput) (*models.Expense, error) {
	if !in.Quantity.IsPositive() {
		return nil, invalid("quantity", "Количество должно быть больше нуля")
	}
	if in.Price.IsNegative() {
		return nil, invalid("price", "Цена не может быть отрицательной")
	}
	if err := checkScales(in.Quantity, in.Price, "price", priceScale); err != nil {
		return nil, err
	}
	if !in.OnCredit {
		in.DebtorName = ""
	} else if in.DebtorName == "" {
		log.Warn().Uint("stock_id", in.StockID).Uint("material_id", in.MaterialID).
			Msg("credit expense recorded without debtor name")
	}

	unlock, err := s.locker.Lock(ctx, pairKey(in.StockID, in.MaterialID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	spent := in.ExpensesDate
	if spent.IsZero() {
		spent = s.now()
	}

	var expense models.Expense
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, err := lockedBalance(tx, in.StockID, in.MaterialID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBalanceNotFound
		}
		if err != nil {
			return fmt.Errorf("load stock material: %w", err)
		}
		if balance.Quantity.LessThan(in.Quantity) {
			return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientStock, in.Quantity, balance.Quantity)
		}

		expense = models.Expense{
			StockID:      in.StockID,
			MaterialID:   in.MaterialID,
			Quantity:     in.Quantity,
			Price:        in.Price,
			OnCredit:     in.OnCredit,
			DebtorName:   in.DebtorName,
			ExpensesDate: spent,
		}
		if err := tx.Create(&expense).Error; err != nil {
			return fmt.Errorf("create expense: %w", err)
		}

		if err := tx.Model(balance).Update("quantity", balance.Quantity.Sub(in.Quantity)).Error; err != nil {
			return fmt.Errorf("update stock material: %w", err)
		}

		stock, material, err := loadRefs(tx, in.StockID, in.MaterialID)
		if err != nil {
			return err
		}
		expense.Stock = *stock
		expense.Material = *material

		desc := fmt.Sprintf("Расход: %s %s %s со склада %s", material.Name, expense.Quantity, material.Unit, stock.Name)
		if expense.OnCredit {
			desc += " (в долг: " + expense.DebtorName + ")"
		}
		return audit.WriteLog(ctx, tx, audit.LogOptions{
			UserID:      in.UserID,
			EntityType:  "expense",
			EntityID:    expense.ID,
			Action:      models.AuditActionCreate,
			Description: desc,
			After:       expense,
		})
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// GetBalance returns the balance row of a pair or ErrBalanceNotFound.
func (s *Service) GetBalance(ctx context.Context, stockID, materialID uint) (*models.StockMaterial, error) {
	var sm models.StockMaterial
	err := s.db.WithContext(ctx).
		Where("stock_id = ? AND material_id = ?", stockID, materialID).
		First(&sm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBalanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &sm, nil
}

// ListAvailableMaterials returns materials with a positive balance at the stock.
func (s *Service) ListAvailableMaterials(ctx context.Context, stockID uint) ([]models.Material, error) {
	var materials []models.Material
	err := s.db.WithContext(ctx).
		Model(&models.Material{}).
		Joins("JOIN stock_materials ON stock_materials.material_id = materials.id").
		Where("stock_materials.stock_id = ? AND stock_materials.quantity > 0", stockID).
		Order("materials.name ASC, materials.id ASC").
		Find(&materials).Error
	if err != nil {
		return nil, fmt.Errorf("list available materials: %w", err)
	}
	return materials, nil
}

// UpsertStockMaterial sets the balance of a pair, creating the row when absent.
// The bool result is true when a new row was created.
func (s *Service) UpsertStockMaterial(ctx context.Context, in BalanceInput) (*models.StockMaterial, bool, error) {
	if in.Quantity.IsNegative() {
		return nil, false, invalid("quantity", "Количество не может быть отрицательным")
	}
	if in.AvgPrice.IsNegative() {
		return nil, false, invalid("avg_price", "Цена не может быть отрицательной")
	}
	if err := checkScales(in.Quantity, in.AvgPrice, "avg_price", avgPriceScale); err != nil {
		return nil, false, err
	}

	unlock, err := s.locker.Lock(ctx, pairKey(in.StockID, in.MaterialID))
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	var (
		result  *models.StockMaterial
		created bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, material, err := loadRefs(tx, in.StockID, in.MaterialID)
		if err != nil {
			return err
		}

		action := models.AuditActionUpdate
		balance, err := lockedBalance(tx, in.StockID, in.MaterialID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			balance = &models.StockMaterial{
				StockID:    in.StockID,
				MaterialID: in.MaterialID,
				Quantity:   in.Quantity,
				AvgPrice:   in.AvgPrice,
			}
			if err := tx.Create(balance).Error; err != nil {
				return fmt.Errorf("create stock material: %w", err)
			}
			created = true
			action = models.AuditActionCreate
		case err != nil:
			return fmt.Errorf("load stock material: %w", err)
		default:
			if err := tx.Model(balance).Updates(map[string]any{
				"quantity":  in.Quantity,
				"avg_price": in.AvgPrice,
			}).Error; err != nil {
				return fmt.Errorf("update stock material: %w", err)
			}
			balance.Quantity = in.Quantity
			balance.AvgPrice = in.AvgPrice
		}

		balance.Stock = *stock
		balance.Material = *material
		result = balance

		return audit.WriteLog(ctx, tx, audit.LogOptions{
			UserID:      in.UserID,
			EntityType:  "stock_material",
			EntityID:    balance.ID,
			Action:      action,
			Description: fmt.Sprintf("Остаток: %s на %s = %s %s", material.Name, stock.Name, balance.Quantity, material.Unit),
			After:       balance,
		})
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// ListStockMaterials returns balance rows, all of them when stockID is nil.
func (s *Service) ListStockMaterials(ctx context.Context, stockID *uint) ([]models.StockMaterial, error) {
	q := s.db.WithContext(ctx).Preload("Stock").Preload("Material")
	if stockID != nil {
		q = q.Where("stock_id = ?", *stockID)
	}

	var rows []models.StockMaterial
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list stock materials: %w", err)
	}
	return rows, nil
}

// WeightedAverage merges an incoming lot into the running average cost.
func WeightedAverage(oldQty, oldAvg, inQty, inPrice decimal.Decimal) decimal.Decimal {
	total := oldQty.Add(inQty)
	if total.IsZero() || oldQty.IsNegative() {
		return inPrice
	}
	value := oldQty.Mul(oldAvg).Add(inQty.Mul(inPrice))
	return value.DivRound(total, avgPriceScale)
}

// checkScales rejects values the numeric columns would silently round.
func checkScales(qty, price decimal.Decimal, priceField string, scale int32) error {
	if !qty.Equal(qty.Truncate(quantityScale)) {
		return invalid("quantity", fmt.Sprintf("Не более %d знаков после запятой", quantityScale))
	}
	if !price.Equal(price.Truncate(scale)) {
		return invalid(priceField, fmt.Sprintf("Не более %d знаков после запятой", scale))
	}
	return nil
}

func lockedBalance(tx *gorm.DB, stockID, materialID uint) (*models.StockMaterial, error) {
	q := tx
	if database.IsPostgres(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var sm models.StockMaterial
	if err := q.Where("stock_id = ? AND material_id = ?", stockID, materialID).First(&sm).Error; err != nil {
		return nil, err
	}
	return &sm, nil
}

func loadRefs(tx *gorm.DB, stockID, materialID uint) (*models.Stock, *models.Material, error) {
	var stock models.Stock
	if err := tx.First(&stock, stockID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, invalid("stock", "Склад не найден")
		}
		return nil, nil, fmt.Errorf("load stock: %w", err)
	}
	var material models.Material
	if err := tx.First(&material, materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, invalid("material", "Материал не найден")
		}
		return nil, nil, fmt.Errorf("load material: %w", err)
	}
	return &stock, &material, nil
}
