// Package export renders expense lists as downloadable CSV and XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/munera/internal/models"
)

// Header is the column row shared by every export format.
var Header = []string{"Name", "Cost", "Category", "Date", "Payment date"}

// Unpaid is written in the payment date column of unpaid expenses.
const Unpaid = "Unpaid"

const sheetName = "Expenses"

// Content types and file extensions of the supported formats.
const (
	CSVContentType  = "text/csv; charset=utf-8"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Row renders one expense as export columns. categoryNames maps category
// IDs to names; unknown categories export as an empty cell.
func Row(e *models.Expense, categoryNames map[string]string) []string {
	cost := ""
	if e.Cost.Valid {
		cost = e.Cost.Decimal.StringFixed(2)
	}
	paymentDate := Unpaid
	if e.PaymentDate != nil {
		paymentDate = e.PaymentDate.Format(models.DateLayout)
	}
	return []string{
		e.Name,
		cost,
		categoryNames[e.CategoryID],
		e.Date.Format(models.DateLayout),
		paymentDate,
	}
}

// WriteCSV writes expenses as CSV with a header row.
func WriteCSV(w io.Writer, expenses []*models.Expense, categoryNames map[string]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range expenses {
		if err := writer.Write(Row(e, categoryNames)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes expenses as a single-sheet workbook. Costs are numeric
// cells so the sheet can be summed.
func WriteXLSX(w io.Writer, expenses []*models.Expense, categoryNames map[string]string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range expenses {
		row := Row(e, categoryNames)
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if e.Cost.Valid {
			values[1] = e.Cost.Decimal.InexactFloat64()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	widths := []float64{30, 12, 15, 12, 14}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
