package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func sampleStatement() *Statement {
	return &Statement{
		ShopName:     "Corner Cafe",
		TabName:      "Physics Dept Tab",
		Organization: "Physics",
		StartDate:    "2024-01-08",
		EndDate:      "2024-01-14",
		Paid:         false,
		Lines: []Line{
			{Name: "Latte", UnitPrice: 4.50, Quantity: 3},
			{Name: "Latte / Oat Milk", UnitPrice: 5.25, Quantity: 1},
			{Name: "Croissant", UnitPrice: 3.00, Quantity: 2},
		},
	}
}

func TestBuildWorkbook(t *testing.T) {
	data, err := BuildWorkbook(sampleStatement())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("workbook is empty")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook is not readable: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 1 || got[0] != "Bill" {
		t.Errorf("sheets = %v, want [Bill]", got)
	}

	shopName, err := f.GetCellValue("Bill", "A1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shopName != "Corner Cafe" {
		t.Errorf("A1 = %q, want shop name", shopName)
	}

	// 5 header rows, 3 line rows, a blank row, then the total.
	total, err := f.GetCellValue("Bill", "D10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != "24.75" {
		t.Errorf("total cell = %q, want 24.75", total)
	}
}

func TestBuildWorkbookEmptyStatement(t *testing.T) {
	s := sampleStatement()
	s.Lines = nil

	data, err := BuildWorkbook(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("workbook is empty")
	}
}
