package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders the receipts table of a statement with gofpdf
type PDFExporter struct {
	orientation string
	pageSize    string
}

// NewPDFExporter creates a new PDF exporter. Landscape fits the receipts table.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{
		orientation: "L",
		pageSize:    "A4",
	}
}

// pdfColumns picks the receipt columns that fit a page: receipt, date,
// store, invoice, total, status.
var pdfColumns = []int{0, 1, 3, 5, 7, 8}

// Export exports data to PDF format
func (p *PDFExporter) Export(stmt *Statement, writer io.Writer) error {
	style := stmt.Style
	fontSize := style.FontSize
	if fontSize == 0 {
		fontSize = 10
	}

	pdf := gofpdf.New(p.orientation, "mm", p.pageSize, "")
	pdf.SetTitle(stmt.Title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, stmt.Title)
	pdf.Ln(12)

	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 5, fmt.Sprintf("Generated: %s", stmt.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")))
	pdf.Ln(6)
	pdf.SetFont("Arial", "", fontSize)
	pdf.Cell(0, 5, fmt.Sprintf("%d receipts, total %.2f", stmt.ReceiptCount, stmt.GrandTotal))
	pdf.Ln(10)

	pageWidth, pageHeight := pdf.GetPageSize()
	leftMargin, _, rightMargin, bottomMargin := pdf.GetMargins()
	colWidth := (pageWidth - leftMargin - rightMargin) / float64(len(pdfColumns))

	drawHeader := func() {
		pdf.SetFont("Arial", "B", fontSize)
		r, g, b := hexToRGB(style.HeaderBgColor)
		pdf.SetFillColor(r, g, b)
		pdf.SetTextColor(255, 255, 255)
		for _, col := range pdfColumns {
			pdf.CellFormat(colWidth, 7, stmt.Receipts.Headers[col], "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "", fontSize)
	}
	drawHeader()

	for rowIdx, row := range stmt.Receipts.Rows {
		fill := false
		if style.AlternateRows {
			bg := style.RowBgColor1
			if rowIdx%2 == 1 {
				bg = style.RowBgColor2
			}
			r, g, b := hexToRGB(bg)
			pdf.SetFillColor(r, g, b)
			fill = true
		}

		for _, col := range pdfColumns {
			align := "L"
			text := fmt.Sprintf("%v", row[col])
			if stmt.Receipts.Money[col] {
				align = "R"
				if v, ok := row[col].(float64); ok {
					text = fmt.Sprintf("%.2f", v)
				}
			}
			pdf.CellFormat(colWidth, 6, text, "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)

		if pdf.GetY() > pageHeight-bottomMargin-10 {
			pdf.AddPage()
			drawHeader()
		}
	}

	if err := pdf.Output(writer); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// GetContentType returns the MIME type for PDF files
func (p *PDFExporter) GetContentType() string {
	return "application/pdf"
}

// GetFileExtension returns the file extension for PDF files
func (p *PDFExporter) GetFileExtension() string {
	return ".pdf"
}

// hexToRGB converts hex color to RGB values
func hexToRGB(hex string) (int, int, int) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}

	// Default to white if invalid
	if len(hex) != 6 {
		return 255, 255, 255
	}

	var r, g, b int
	fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	return r, g, b
}
