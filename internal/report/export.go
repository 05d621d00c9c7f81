package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Отчёт"

var exportHeadings = []string{"Тип", "Дата", "Склад", "Материал", "Количество", "Ед.", "Цена", "Сумма", "В долг", "Должник"}

// ExportXLSX writes the summary rows and totals into a single-sheet workbook.
func ExportXLSX(s *Summary, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetCellValue(sheetName, "A1", "Дата"); err != nil {
		return nil, fmt.Errorf("write date label: %w", err)
	}
	if err := f.SetCellValue(sheetName, "B1", s.Day.Format("02-01-2006")); err != nil {
		return nil, fmt.Errorf("write date: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A3", &exportHeadings); err != nil {
		return nil, fmt.Errorf("write headings: %w", err)
	}

	row := 4
	put := func(values []any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(sheetName, cell, &values)
	}

	for _, c := range s.Comings {
		if err := put([]any{
			"Приход",
			c.ArrivalDate.In(loc).Format("2006-01-02 15:04"),
			c.Stock.Name,
			c.Material.Name,
			number(c.Quantity),
			c.Material.Unit,
			number(c.Price),
			number(c.Total()),
			"",
			"",
		}); err != nil {
			return nil, fmt.Errorf("write coming row: %w", err)
		}
	}
	for _, e := range s.Expenses {
		credit := "нет"
		if e.OnCredit {
			credit = "да"
		}
		if err := put([]any{
			"Расход",
			e.ExpensesDate.In(loc).Format("2006-01-02 15:04"),
			e.Stock.Name,
			e.Material.Name,
			number(e.Quantity),
			e.Material.Unit,
			number(e.Price),
			number(e.Total()),
			credit,
			e.DebtorName,
		}); err != nil {
			return nil, fmt.Errorf("write expense row: %w", err)
		}
	}

	row++
	totals := [][]any{}
	if s.Filter.includesComings() {
		totals = append(totals, []any{"Итог прихода", number(s.TotalComings)})
	}
	if s.Filter == FilterAll || s.Filter == FilterExpenses {
		totals = append(totals, []any{"Итог расхода", number(s.TotalExpenses)})
	}
	if s.Filter == FilterAll || s.Filter == FilterCredit {
		totals = append(totals, []any{"Итог долга", number(s.TotalCredit)})
	}
	for _, t := range totals {
		if err := put(t); err != nil {
			return nil, fmt.Errorf("write totals: %w", err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "J", 16); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func number(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}
