// Package export serializes the punch log to spreadsheets and reads the
// legacy CSV tables back in.
package export

import (
	"bytes"
	"fmt"

	"github.com/warp/timeclock/punch"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single sheet of the xlsx export.
const SheetName = "Punches"

// Header is the column layout shared by every export.
var Header = []string{
	"ID",
	"Name",
	"Date",
	"Time",
	"Kind",
	"Latitude",
	"Longitude",
}

var columnWidths = []float64{16, 28, 12, 10, 10, 14, 14}

// Row renders one event in Header order.
func Row(e punch.Event) []string {
	return []string{
		string(e.PersonID),
		e.Name,
		e.Date.Label(),
		e.TimeLabel(),
		e.Kind.Label(),
		e.Location.Latitude,
		e.Location.Longitude,
	}
}

// XLSX builds a workbook with one row per event.
func XLSX(events []punch.Event) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := setRow(f, 1, Header); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, e := range events {
		if err := setRow(f, i+2, Row(e)); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &vals); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
