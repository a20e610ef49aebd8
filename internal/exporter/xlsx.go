package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes the report as a workbook, one sheet per table, with a
// bold frozen header row.
func WriteXLSX(w io.Writer, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, sheet := range report.Sheets {
		name := sheet.Name
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), name)
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("create sheet %s: %w", name, err)
			}
		}

		header := make([]interface{}, len(sheet.Headers))
		for j, h := range sheet.Headers {
			header[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("write headers %s: %w", name, err)
		}

		endCol, err := excelize.ColumnNumberToName(max(len(sheet.Headers), 1))
		if err != nil {
			return fmt.Errorf("resolve header range %s: %w", name, err)
		}
		if err := f.SetCellStyle(name, "A1", endCol+"1", headerStyle); err != nil {
			return fmt.Errorf("style headers %s: %w", name, err)
		}
		if err := f.SetPanes(name, &excelize.Panes{
			Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze header %s: %w", name, err)
		}

		for rowIdx, row := range sheet.Rows {
			cells := make([]interface{}, len(row))
			for j, cell := range row {
				cells[j] = cell
			}
			axis, err := excelize.JoinCellName("A", rowIdx+2)
			if err != nil {
				return fmt.Errorf("resolve row axis %s: %w", name, err)
			}
			if err := f.SetSheetRow(name, axis, &cells); err != nil {
				return fmt.Errorf("write row %s: %w", name, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
