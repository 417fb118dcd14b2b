// Package export renders bill statements as spreadsheets.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type Line struct {
	Name      string
	UnitPrice float64
	Quantity  int
}

// Statement is the flattened content of one bill.
type Statement struct {
	ShopName     string
	TabName      string
	Organization string
	StartDate    string
	EndDate      string
	Paid         bool
	Lines        []Line
}

func (s *Statement) total() float64 {
	var total float64
	for _, l := range s.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

const sheet = "Bill"

// BuildWorkbook renders the statement into an XLSX workbook and
// returns the file bytes.
func BuildWorkbook(s *Statement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	status := "OPEN"
	if s.Paid {
		status = "PAID"
	}

	header := [][]interface{}{
		{s.ShopName},
		{fmt.Sprintf("%s — %s", s.TabName, s.Organization)},
		{fmt.Sprintf("Billing period %s to %s (%s)", s.StartDate, s.EndDate, status)},
		{},
		{"Item", "Unit Price", "Quantity", "Amount"},
	}
	for i, row := range header {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	rowNum := len(header) + 1
	for _, l := range s.Lines {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return nil, err
		}
		row := []interface{}{l.Name, l.UnitPrice, l.Quantity, l.UnitPrice * float64(l.Quantity)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
		rowNum++
	}

	totalCell, err := excelize.CoordinatesToCellName(1, rowNum+1)
	if err != nil {
		return nil, err
	}
	totalRow := []interface{}{"Total", "", "", s.total()}
	if err := f.SetSheetRow(sheet, totalCell, &totalRow); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
