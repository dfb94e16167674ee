// Package spreadsheet renders tabular reports into xlsx workbooks.
package spreadsheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Sheet is one worksheet: a header row followed by data rows.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// Render writes the sheets, in order, into a single workbook.
func Render(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets to render")
	}

	file := excelize.NewFile()
	defer file.Close()

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range sheets {
		index, err := file.NewSheet(sheet.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet.Name, err)
		}

		if i == 0 {
			file.SetActiveSheet(index)
		}

		if err := writeSheet(file, sheet, headerStyle); err != nil {
			return nil, err
		}
	}

	if sheets[0].Name != defaultSheet {
		if err := file.DeleteSheet(defaultSheet); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func writeSheet(file *excelize.File, sheet Sheet, headerStyle int) error {
	for col, header := range sheet.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}

		if err := file.SetCellValue(sheet.Name, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}

		if err := file.SetCellStyle(sheet.Name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for r, row := range sheet.Rows {
		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}

		values := row
		if err := file.SetSheetRow(sheet.Name, start, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	return nil
}
