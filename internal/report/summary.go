package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sklad-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Filter string

const (
	FilterAll      Filter = "all"
	FilterComings  Filter = "comings"
	FilterExpenses Filter = "expenses"
	FilterCredit   Filter = "credit"
)

const dayLayout = "2006-01-02"

var (
	ErrInvalidFilter = errors.New("invalid report filter")
	ErrInvalidDate   = errors.New("invalid report date")
)

// ParseFilter maps the query value onto a Filter; empty means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterComings, FilterExpenses, FilterCredit:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
}

// ParseDay returns local midnight of a YYYY-MM-DD date, or of today when s is empty.
func ParseDay(s string, loc *time.Location, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		now = now.In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	d, err := time.ParseInLocation(dayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

func (f Filter) includesComings() bool {
	return f == FilterAll || f == FilterComings
}

func (f Filter) includesExpenses() bool {
	return f != FilterComings
}

// Summary holds the movements of one day and their totals.
type Summary struct {
	Day           time.Time
	Filter        Filter
	Comings       []models.Coming
	Expenses      []models.Expense
	TotalComings  decimal.Decimal
	TotalExpenses decimal.Decimal
	TotalCredit   decimal.Decimal
}

// CreditExpenses returns the on-credit subset of Expenses.
func (s *Summary) CreditExpenses() []models.Expense {
	out := make([]models.Expense, 0, len(s.Expenses))
	for _, e := range s.Expenses {
		if e.OnCredit {
			out = append(out, e)
		}
	}
	return out
}

type Engine struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewEngine(db *gorm.DB, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{db: db, loc: loc, now: time.Now}
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// Day resolves a date query value in the engine's location.
func (e *Engine) Day(s string) (time.Time, error) {
	return ParseDay(s, e.loc, e.now())
}

// DailySummary collects movements in [midnight, midnight+24h) of day.
func (e *Engine) DailySummary(ctx context.Context, day time.Time, f Filter) (*Summary, error) {
	day = day.In(e.loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, e.loc)
	end := start.Add(24 * time.Hour)

	s := &Summary{
		Day:           start,
		Filter:        f,
		Comings:       []models.Coming{},
		Expenses:      []models.Expense{},
		TotalComings:  decimal.Zero,
		TotalExpenses: decimal.Zero,
		TotalCredit:   decimal.Zero,
	}
	db := e.db.WithContext(ctx)

	if f.includesComings() {
		err := db.Preload("Stock").Preload("Material").
			Where("arrival_date >= ? AND arrival_date < ?", start, end).
			Order("arrival_date ASC, id ASC").
			Find(&s.Comings).Error
		if err != nil {
			return nil, fmt.Errorf("select comings: %w", err)
		}
	}

	if f.includesExpenses() {
		q := db.Preload("Stock").Preload("Material").
			Where("expenses_date >= ? AND expenses_date < ?", start, end)
		if f == FilterCredit {
			q = q.Where("on_credit = ?", true)
		}
		if err := q.Order("expenses_date ASC, id ASC").Find(&s.Expenses).Error; err != nil {
			return nil, fmt.Errorf("select expenses: %w", err)
		}
	}

	for _, c := range s.Comings {
		s.TotalComings = s.TotalComings.Add(c.Total())
	}
	for _, x := range s.Expenses {
		s.TotalExpenses = s.TotalExpenses.Add(x.Total())
		if x.OnCredit {
			s.TotalCredit = s.TotalCredit.Add(x.Total())
		}
	}
	return s, nil
}
