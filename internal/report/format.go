package report

import (
	"strings"

	"sklad-backend/internal/models"

	"github.com/shopspring/decimal"
)

const currency = "UZS"

// FormatAmount rounds half to even and groups thousands with spaces: 1234567.5 -> "1 234 568".
func FormatAmount(d decimal.Decimal) string {
	digits := d.RoundBank(0).StringFixed(0)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// FormatMessage renders the summary as the plain text pushed to Telegram.
func FormatMessage(s *Summary) string {
	var sections []string
	switch s.Filter {
	case FilterComings:
		sections = append(sections, comingSection(s))
	case FilterExpenses:
		sections = append(sections, expenseSection(s))
	case FilterCredit:
		sections = append(sections, creditSection(s.TotalCredit, s.Expenses))
	default:
		sections = append(sections,
			comingSection(s),
			expenseSection(s),
			creditSection(s.TotalCredit, s.CreditExpenses()),
		)
	}
	return "Дата: " + s.Day.Format("02-01-2006") + "\n\n" + strings.Join(sections, "\n\n")
}

func comingSection(s *Summary) string {
	lines := make([]string, 0, len(s.Comings))
	for _, c := range s.Comings {
		lines = append(lines, movementLine(c.Material.Name, c.Quantity, c.Material.Unit, c.Price))
	}
	return section("Итог прихода", s.TotalComings, lines)
}

func expenseSection(s *Summary) string {
	lines := make([]string, 0, len(s.Expenses))
	for _, e := range s.Expenses {
		lines = append(lines, movementLine(e.Material.Name, e.Quantity, e.Material.Unit, e.Price))
	}
	return section("Итог расхода", s.TotalExpenses, lines)
}

func creditSection(total decimal.Decimal, expenses []models.Expense) string {
	lines := make([]string, 0, len(expenses))
	for _, e := range expenses {
		name := e.Material.Name + " (Должник: " + e.DebtorName + ")"
		lines = append(lines, movementLine(name, e.Quantity, e.Material.Unit, e.Price))
	}
	return section("Итог долга", total, lines)
}

func section(title string, total decimal.Decimal, lines []string) string {
	head := title + ": " + FormatAmount(total) + " " + currency
	if len(lines) == 0 {
		return head
	}
	return head + "\n\n" + strings.Join(lines, "\n")
}

func movementLine(name string, qty decimal.Decimal, unit string, price decimal.Decimal) string {
	return name + ": " + qty.String() + " " + unit + " x " + FormatAmount(price) + " " + currency
}
