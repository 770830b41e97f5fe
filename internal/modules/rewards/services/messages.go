package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/receipt"
)

// ReceiptAcceptedMessage is the WhatsApp reply for a stored receipt.
func ReceiptAcceptedMessage(r *receipt.AcceptedReceipt) string {
	var b strings.Builder
	b.WriteString("✅ Thanks! We received your receipt")
	if r.StoreName != "" {
		fmt.Fprintf(&b, " from %s", r.StoreName)
	}
	b.WriteString(".\n")
	if r.TotalAmount > 0 {
		fmt.Fprintf(&b, "Total: R%.2f\n", r.TotalAmount)
	}
	if r.Date != nil {
		fmt.Fprintf(&b, "Date: %s\n", *r.Date)
	}
	fmt.Fprintf(&b, "Reference: %s\n", r.ReceiptKey)
	b.WriteString("Your points will be added once the receipt is validated.")
	return b.String()
}

// ReceiptFailedMessage is the WhatsApp reply for a receipt that could not be read or saved.
func ReceiptFailedMessage(err error) string {
	switch {
	case errors.Is(err, receipt.ErrPersistenceFailed):
		return "⏳ We read your receipt but could not save it yet. We will retry shortly, no need to resend."
	case errors.Is(err, receipt.ErrOcrFailed):
		return "📷 We could not read any text on that photo. Please send a clear, well-lit photo of the full receipt."
	case errors.Is(err, receipt.ErrNoStrategySucceeded):
		return "🧾 We could not find the store name, date and total on that receipt. Please send a photo of the whole receipt."
	default:
		return "⚠️ Something went wrong while processing your receipt. Please try again later."
	}
}

// HelpMessage answers messages that carry no receipt photo.
const HelpMessage = "👋 Send a photo of your restaurant receipt to earn rewards."
