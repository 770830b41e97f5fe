package receipt

import "time"

// Status is the lifecycle tag of an accepted receipt.
type Status string

const (
	StatusPendingValidation Status = "pending_validation"
	StatusValidated         Status = "validated"
	StatusRejected          Status = "rejected"
	StatusRewarded          Status = "rewarded"
)

// LineItem is a single purchased item read from the items section of a receipt.
type LineItem struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

// ParsedReceipt is an unvalidated candidate produced by a Strategy.
// TotalAmount is 0 when no total was found; use Validate to tell the two apart.
type ParsedReceipt struct {
	StoreName     string     `json:"store_name"`
	StoreLocation string     `json:"store_location"`
	InvoiceNumber *string    `json:"invoice_number"`
	Date          *string    `json:"date"`               // raw substring as printed
	DateISO       string     `json:"date_iso,omitempty"` // YYYY-MM-DD when Date is a real calendar date
	Time          string     `json:"time,omitempty"`
	Waiter        *string    `json:"waiter,omitempty"`
	Table         *string    `json:"table,omitempty"`
	TotalAmount   float64    `json:"total_amount"`
	Items         []LineItem `json:"items"`
	RawText       string     `json:"raw_text"`
	Strategy      string     `json:"strategy"`
}

// AcceptedReceipt is a ParsedReceipt that passed validation, enriched with
// pipeline metadata. It is the only form that gets persisted.
type AcceptedReceipt struct {
	ParsedReceipt
	ReceiptKey       string    `json:"receipt_key"`
	ImageURL         string    `json:"image_url"`
	GuestPhoneNumber string    `json:"guest_phone_number"`
	ProcessedAt      time.Time `json:"processed_at"`
	Status           Status    `json:"status"`
}

// Accept builds an AcceptedReceipt from p without modifying p.
func Accept(p *ParsedReceipt, key, imageURL, phone string, processedAt time.Time) *AcceptedReceipt {
	parsed := *p
	parsed.Items = append([]LineItem{}, p.Items...)
	return &AcceptedReceipt{
		ParsedReceipt:    parsed,
		ReceiptKey:       key,
		ImageURL:         imageURL,
		GuestPhoneNumber: phone,
		ProcessedAt:      processedAt,
		Status:           StatusPendingValidation,
	}
}
