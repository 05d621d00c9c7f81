package inventory

import (
	"context"
	"errors"
	"fmt"

	"sklad-backend/internal/audit"
	"sklad-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrInUse    = errors.New("record is referenced by stock movements or balances")
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) List(ctx context.Context) ([]models.Material, error) {
	var materials []models.Material
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}

func (r *MaterialRepository) Get(ctx context.Context, id uint) (*models.Material, error) {
	var m models.Material
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	return &m, nil
}

func (r *MaterialRepository) Create(ctx context.Context, m *models.Material, userID *uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("create material: %w", err)
		}
		return audit.WriteLog(ctx, tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  "material",
			EntityID:    m.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Материал: %s (%s)", m.Name, m.Unit),
			After:       m,
		})
	})
}

func (r *MaterialRepository) Update(ctx context.Context, m *models.Material, userID *uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(m).Updates(map[string]any{"name": m.Name, "unit": m.Unit}).Error; err != nil {
			return fmt.Errorf("update material: %w", err)
		}
		return audit.WriteLog(ctx, tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  "material",
			EntityID:    m.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Материал: %s (%s)", m.Name, m.Unit),
			After:       m,
		})
	})
}

// Delete removes a material. Materials referenced by movements return ErrInUse.
func (r *MaterialRepository) Delete(ctx context.Context, id uint, userID *uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Material
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get material: %w", err)
		}
		inUse, err := referenced(tx, "material_id", m.ID)
		if err != nil {
			return err
		}
		if inUse {
			return ErrInUse
		}
		if err := tx.Delete(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return ErrInUse
			}
			return fmt.Errorf("delete material: %w", err)
		}
		return audit.WriteLog(ctx, tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  "material",
			EntityID:    m.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Удалён материал: %s", m.Name),
			After:       m,
		})
	})
}

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

func (r *StockRepository) List(ctx context.Context) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	return stocks, nil
}

func (r *StockRepository) Create(ctx context.Context, s *models.Stock, userID *uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return fmt.Errorf("create stock: %w", err)
		}
		return audit.WriteLog(ctx, tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  "stock",
			EntityID:    s.ID,
			Action:      models.AuditActionCreate,
			Description: "Склад: " + s.Name,
			After:       s,
		})
	})
}

func (r *StockRepository) Delete(ctx context.Context, id uint, userID *uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s models.Stock
		if err := tx.First(&s, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get stock: %w", err)
		}
		inUse, err := referenced(tx, "stock_id", s.ID)
		if err != nil {
			return err
		}
		if inUse {
			return ErrInUse
		}
		if err := tx.Delete(&s).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return ErrInUse
			}
			return fmt.Errorf("delete stock: %w", err)
		}
		return audit.WriteLog(ctx, tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  "stock",
			EntityID:    s.ID,
			Action:      models.AuditActionDelete,
			Description: "Удалён склад: " + s.Name,
			After:       s,
		})
	})
}

// referenced reports whether any movement or balance row points at id through column.
// The RESTRICT foreign keys still guard against rows inserted concurrently.
func referenced(tx *gorm.DB, column string, id uint) (bool, error) {
	for _, model := range []any{&models.Coming{}, &models.Expense{}, &models.StockMaterial{}} {
		var n int64
		if err := tx.Model(model).Where(column+" = ?", id).Count(&n).Error; err != nil {
			return false, fmt.Errorf("count references: %w", err)
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}
