package export

import (
	"io"
	"time"
)

// Format represents the export file format
type Format string

const (
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// Exporter is the interface for all export formats
type Exporter interface {
	Export(stmt *Statement, writer io.Writer) error
	GetContentType() string
	GetFileExtension() string
}

// Statement is a guest's receipt history laid out as tables.
type Statement struct {
	Title       string
	Guest       string
	GeneratedAt time.Time

	Receipts Table
	Items    Table

	ReceiptCount int
	GrandTotal   float64

	Style Style
}

// Table is a header row plus data rows. Columns listed in Money are amounts.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
	Money   map[int]bool
}

// Style defines styling options for exports
type Style struct {
	HeaderBgColor string // Hex color
	AlternateRows bool
	RowBgColor1   string // Hex color for odd rows
	RowBgColor2   string // Hex color for even rows

	FontFamily string
	FontSize   float64

	// Excel specific
	FreezeHeader bool
	AutoFilter   bool
	ColumnWidths map[int]float64 // Column index -> width
}

// DefaultStyle returns default export styling
func DefaultStyle() Style {
	return Style{
		HeaderBgColor: "#1F4E79",
		AlternateRows: true,
		RowBgColor1:   "#FFFFFF",
		RowBgColor2:   "#F2F2F2",
		FontFamily:    "Arial",
		FontSize:      10,
		FreezeHeader:  true,
		AutoFilter:    true,
		ColumnWidths: map[int]float64{
			0: 22, // receipt key
			3: 24, // store
			4: 24, // location
		},
	}
}
