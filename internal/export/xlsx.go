package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Expenses"

// WriteXLSX writes rows as a single-sheet workbook with typed date and amount cells.
func WriteXLSX(out io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	dateFmt := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("xlsx: date style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("xlsx: amount style: %w", err)
	}

	for i := range rows {
		r := &rows[i]
		line := i + 2
		amount, _ := r.Amount.Float64()
		values := []interface{}{
			r.Date, r.Merchant, r.Category, amount, r.Currency,
			string(r.Status), r.Source, r.Description, r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", line, err)
		}
		dateCell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetCellStyle(sheetName, dateCell, dateCell, dateStyle); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", line, err)
		}
		amountCell, _ := excelize.CoordinatesToCellName(4, line)
		if err := f.SetCellStyle(sheetName, amountCell, amountCell, moneyStyle); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", line, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", lastCol, 16); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}
