package report

import (
	"time"

	"sklad-backend/internal/inventory"
)

// Payload shapes the summary for JSON by filter.
func Payload(s *Summary, loc *time.Location) map[string]any {
	comings := make([]inventory.ComingResponse, 0, len(s.Comings))
	for _, c := range s.Comings {
		comings = append(comings, inventory.NewComingResponse(c, loc))
	}
	expenses := make([]inventory.ExpenseResponse, 0, len(s.Expenses))
	for _, e := range s.Expenses {
		expenses = append(expenses, inventory.NewExpenseResponse(e, loc))
	}

	switch s.Filter {
	case FilterComings:
		return map[string]any{
			"total_comings": s.TotalComings,
			"comings":       comings,
		}
	case FilterExpenses:
		return map[string]any{
			"total_expenses": s.TotalExpenses,
			"expenses":       expenses,
		}
	case FilterCredit:
		return map[string]any{
			"total_credit": s.TotalCredit,
			"expenses":     expenses,
		}
	default:
		return map[string]any{
			"comings":        comings,
			"expenses":       expenses,
			"total_comings":  s.TotalComings,
			"total_expenses": s.TotalExpenses,
			"total_credit":   s.TotalCredit,
		}
	}
}
