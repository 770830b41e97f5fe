package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter writes a workbook with one sheet per statement table
type ExcelExporter struct{}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Export exports data to Excel format
func (e *ExcelExporter) Export(stmt *Statement, writer io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	first := stmt.Receipts.Name
	if err := f.SetSheetName("Sheet1", first); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(stmt.Items.Name); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := e.createHeaderStyle(f, stmt.Style)
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	// Title block above the receipts table
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Family: stmt.Style.FontFamily},
	})
	f.SetCellValue(first, "A1", stmt.Title)
	f.SetCellStyle(first, "A1", "A1", titleStyle)
	f.SetCellValue(first, "A2", fmt.Sprintf("Generated %s", stmt.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")))
	f.SetCellValue(first, "A3", fmt.Sprintf("%d receipts, total %.2f", stmt.ReceiptCount, stmt.GrandTotal))

	if err := e.writeTable(f, &stmt.Receipts, 5, headerStyle, stmt.Style); err != nil {
		return err
	}
	if err := e.writeTable(f, &stmt.Items, 1, headerStyle, stmt.Style); err != nil {
		return err
	}

	if err := f.Write(writer); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

// writeTable writes headers at headerRow and rows below it.
func (e *ExcelExporter) writeTable(f *excelize.File, t *Table, headerRow int, headerStyle int, style Style) error {
	sheet := t.Name

	for colIndex, header := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(colIndex+1, headerRow)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)

		if width, ok := style.ColumnWidths[colIndex]; ok && sheet == "Receipts" {
			colName, _ := excelize.ColumnNumberToName(colIndex + 1)
			f.SetColWidth(sheet, colName, colName, width)
		}
	}

	oddStyle, _ := e.createRowStyle(f, style, style.RowBgColor1, false)
	evenStyle, _ := e.createRowStyle(f, style, style.RowBgColor2, false)
	oddMoney, _ := e.createRowStyle(f, style, style.RowBgColor1, true)
	evenMoney, _ := e.createRowStyle(f, style, style.RowBgColor2, true)
	if !style.AlternateRows {
		evenStyle, evenMoney = oddStyle, oddMoney
	}

	for rowIdx, row := range t.Rows {
		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, headerRow+1+rowIdx)
			if err != nil {
				return err
			}
			f.SetCellValue(sheet, cell, value)

			s := oddStyle
			switch {
			case rowIdx%2 == 0 && t.Money[colIndex]:
				s = oddMoney
			case rowIdx%2 == 1 && t.Money[colIndex]:
				s = evenMoney
			case rowIdx%2 == 1:
				s = evenStyle
			}
			f.SetCellStyle(sheet, cell, cell, s)
		}
	}

	if style.FreezeHeader {
		f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      headerRow,
			TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
			ActivePane:  "bottomLeft",
		})
	}

	if style.AutoFilter && len(t.Headers) > 0 && len(t.Rows) > 0 {
		lastCol, _ := excelize.ColumnNumberToName(len(t.Headers))
		lastRow := headerRow + len(t.Rows)
		f.AutoFilter(sheet, fmt.Sprintf("A%d:%s%d", headerRow, lastCol, lastRow), nil)
	}

	return nil
}

// GetContentType returns the MIME type for Excel files
func (e *ExcelExporter) GetContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// GetFileExtension returns the file extension for Excel files
func (e *ExcelExporter) GetFileExtension() string {
	return ".xlsx"
}

// createHeaderStyle creates the header style
func (e *ExcelExporter) createHeaderStyle(f *excelize.File, style Style) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   style.FontSize,
			Family: style.FontFamily,
			Color:  "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{stripHashFromColor(style.HeaderBgColor)},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

// createRowStyle creates a row style with background color; money cells get
// a two-decimal number format.
func (e *ExcelExporter) createRowStyle(f *excelize.File, style Style, bgColor string, money bool) (int, error) {
	rowStyle := &excelize.Style{
		Font: &excelize.Font{
			Size:   style.FontSize,
			Family: style.FontFamily,
		},
	}
	if money {
		rowStyle.NumFmt = 4 // #,##0.00
	}

	// Only add fill if bgColor is not white
	if bgColor != "" && bgColor != "#FFFFFF" {
		rowStyle.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{stripHashFromColor(bgColor)},
		}
	}

	return f.NewStyle(rowStyle)
}

// stripHashFromColor removes # from hex color codes
func stripHashFromColor(color string) string {
	if len(color) > 0 && color[0] == '#' {
		return color[1:]
	}
	return color
}
