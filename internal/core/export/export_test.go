package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/receipt"
)

func strPtr(s string) *string { return &s }

func sampleReceipts() []*receipt.AcceptedReceipt {
	older := receipt.Accept(&receipt.ParsedReceipt{
		StoreName:     "Ocean Basket",
		StoreLocation: "Cavendish",
		InvoiceNumber: strPtr("104233"),
		Date:          strPtr("12/03/2024"),
		DateISO:       "2024-03-12",
		TotalAmount:   524,
		Items: []receipt.LineItem{
			{Name: "Calamari", Quantity: 2, UnitPrice: 120, TotalPrice: 240},
			{Name: "Hake", Quantity: 1, UnitPrice: 154, TotalPrice: 154},
		},
	}, "104233", "https://img/1.jpg", "+27821234567", time.Date(2024, 3, 12, 20, 0, 0, 0, time.UTC))

	newer := receipt.Accept(&receipt.ParsedReceipt{
		StoreName:   "Spur",
		Date:        strPtr("1 Apr 2024"),
		TotalAmount: 89.5,
	}, "k-2", "https://img/2.jpg", "+27821234567", time.Date(2024, 4, 1, 13, 0, 0, 0, time.UTC))

	return []*receipt.AcceptedReceipt{older, nil, newer}
}

func TestBuildStatement(t *testing.T) {
	stmt := BuildStatement("+27821234567", sampleReceipts(), time.Now())

	if stmt.ReceiptCount != 2 || stmt.GrandTotal != 613.5 {
		t.Fatalf("count=%d total=%v", stmt.ReceiptCount, stmt.GrandTotal)
	}
	if got := stmt.Receipts.Rows[0][0]; got != "k-2" {
		t.Errorf("first row = %v, want newest receipt first", got)
	}
	// raw date is used when no ISO form exists
	if got := stmt.Receipts.Rows[0][1]; got != "1 Apr 2024" {
		t.Errorf("date = %v", got)
	}
	if got := stmt.Receipts.Rows[1][1]; got != "2024-03-12" {
		t.Errorf("date = %v", got)
	}
	if len(stmt.Items.Rows) != 2 {
		t.Errorf("items rows = %d, want 2", len(stmt.Items.Rows))
	}
}

func TestExcelExport(t *testing.T) {
	svc := NewService()
	stmt := BuildStatement("+27821234567", sampleReceipts(), time.Now())

	var buf bytes.Buffer
	if err := svc.Export(stmt, FormatExcel, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	tests := []struct {
		sheet, cell, want string
	}{
		{"Receipts", "A5", "Receipt"},
		{"Receipts", "A6", "k-2"},
		{"Receipts", "D7", "Ocean Basket"},
		{"Receipts", "F7", "104233"},
		{"Items", "B2", "Calamari"},
		{"Items", "C2", "2"},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue(tt.sheet, tt.cell)
		if err != nil {
			t.Fatalf("%s!%s: %v", tt.sheet, tt.cell, err)
		}
		if got != tt.want {
			t.Errorf("%s!%s = %q, want %q", tt.sheet, tt.cell, got, tt.want)
		}
	}
}

func TestPDFExport(t *testing.T) {
	svc := NewService()
	stmt := BuildStatement("+27821234567", sampleReceipts(), time.Now())

	var buf bytes.Buffer
	if err := svc.Export(stmt, FormatPDF, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output is not a PDF")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatExcel, false},
		{"Excel", FormatExcel, false},
		{"pdf", FormatPDF, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
