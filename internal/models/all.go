package models

// All lists every model handled by AutoMigrate, parents before children.
func All() []any {
	return []any{
		&User{},
		&UserProfile{},
		&Material{},
		&Stock{},
		&Coming{},
		&Expense{},
		&StockMaterial{},
		&AuditLog{},
	}
}
