package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the report as a single CSV stream: each sheet becomes
// a titled section separated by a blank line.
func WriteCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)

	for i, sheet := range report.Sheets {
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return fmt.Errorf("write csv separator: %w", err)
			}
		}
		if err := cw.Write([]string{sheet.Name}); err != nil {
			return fmt.Errorf("write csv section %s: %w", sheet.Name, err)
		}
		if err := cw.Write(sheet.Headers); err != nil {
			return fmt.Errorf("write csv headers %s: %w", sheet.Name, err)
		}
		for _, row := range sheet.Rows {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row %s: %w", sheet.Name, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
