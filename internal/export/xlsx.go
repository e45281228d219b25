package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Statement"

var headers = []string{"Date", "Type", "Category", "Description", "Amount", "Balance"}

// WriteXLSX writes the statement as a single sheet workbook.
func WriteXLSX(w io.Writer, st *Statement) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for idx, line := range st.Lines {
		tx := line.Transaction
		row := []interface{}{
			tx.Date.String(),
			string(tx.Type),
			tx.Category,
			tx.Description,
			tx.Effect().InexactFloat64(),
			line.Balance.InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, idx+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", idx+2, err)
		}
	}

	total := len(st.Lines) + 3
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", total), "Closing")
	f.SetCellValue(sheetName, fmt.Sprintf("F%d", total), st.Closing.InexactFloat64())

	f.SetColWidth(sheetName, "A", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 16)
	f.SetColWidth(sheetName, "D", "D", 36)
	f.SetColWidth(sheetName, "E", "F", 14)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX statement: %w", err)
	}
	return nil
}
