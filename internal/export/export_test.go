package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/munera/internal/models"
)

func testExpenses() ([]*models.Expense, map[string]string) {
	paid := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	return []*models.Expense{
			{
				Name:        "Groceries",
				Cost:        decimal.NewNullDecimal(decimal.RequireFromString("12.5")),
				CategoryID:  "c1",
				Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				PaymentDate: &paid,
			},
			{
				Name:       "Mystery",
				CategoryID: "gone",
				Date:       time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			},
		}, map[string]string{
			"c1": "Food",
		}
}

func TestWriteCSV(t *testing.T) {
	expenses, names := testExpenses()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, expenses, names); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to read csv: %v", err)
	}
	want := [][]string{
		{"Name", "Cost", "Category", "Date", "Payment date"},
		{"Groceries", "12.50", "Food", "2024-03-01", "2024-03-05"},
		{"Mystery", "", "", "2024-03-02", "Unpaid"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("csv = %v, want %v", records, want)
	}
}

func TestWriteXLSX(t *testing.T) {
	expenses, names := testExpenses()
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, expenses, names); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != sheetName {
		t.Fatalf("sheets = %v, want [%s]", sheets, sheetName)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if !reflect.DeepEqual(rows[0], Header) {
		t.Errorf("header = %v, want %v", rows[0], Header)
	}
	if rows[1][0] != "Groceries" || rows[1][1] != "12.5" || rows[1][4] != "2024-03-05" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][4] != Unpaid {
		t.Errorf("row 2 payment date = %s, want %s", rows[2][4], Unpaid)
	}
}
