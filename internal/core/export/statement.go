package export

import (
	"fmt"
	"sort"
	"time"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/receipt"
)

// BuildStatement lays out receipts (newest first) as a receipts table and a
// line-items table. receipts is not modified.
func BuildStatement(guest string, receipts []*receipt.AcceptedReceipt, now time.Time) *Statement {
	sorted := make([]*receipt.AcceptedReceipt, 0, len(receipts))
	for _, r := range receipts {
		if r != nil {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProcessedAt.After(sorted[j].ProcessedAt)
	})

	stmt := &Statement{
		Title:       fmt.Sprintf("Receipt statement for %s", guest),
		Guest:       guest,
		GeneratedAt: now,
		Receipts: Table{
			Name:    "Receipts",
			Headers: []string{"Receipt", "Date", "Time", "Store", "Location", "Invoice", "Items", "Total", "Status", "Processed At"},
			Money:   map[int]bool{7: true},
		},
		Items: Table{
			Name:    "Items",
			Headers: []string{"Receipt", "Item", "Qty", "Unit Price", "Total"},
			Money:   map[int]bool{3: true, 4: true},
		},
		Style: DefaultStyle(),
	}

	for _, r := range sorted {
		stmt.Receipts.Rows = append(stmt.Receipts.Rows, []interface{}{
			r.ReceiptKey,
			receiptDate(r),
			r.Time,
			r.StoreName,
			r.StoreLocation,
			deref(r.InvoiceNumber),
			len(r.Items),
			r.TotalAmount,
			string(r.Status),
			r.ProcessedAt.UTC().Format(time.RFC3339),
		})
		for _, it := range r.Items {
			stmt.Items.Rows = append(stmt.Items.Rows, []interface{}{
				r.ReceiptKey, it.Name, it.Quantity, it.UnitPrice, it.TotalPrice,
			})
		}
		stmt.ReceiptCount++
		stmt.GrandTotal += r.TotalAmount
	}

	return stmt
}

func receiptDate(r *receipt.AcceptedReceipt) string {
	if r.DateISO != "" {
		return r.DateISO
	}
	return deref(r.Date)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
