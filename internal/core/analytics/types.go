package analytics

import "time"

// DateRange is an inclusive time window. A zero DateRange matches everything.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// StoreVisits totals a guest's receipts at one store.
type StoreVisits struct {
	StoreName string  `json:"store_name"`
	Visits    int     `json:"visits"`
	Spend     float64 `json:"spend"`
}

// MonthlySpend is one bucket of the monthly breakdown.
type MonthlySpend struct {
	Month    string  `json:"month"` // YYYY-MM
	Receipts int     `json:"receipts"`
	Spend    float64 `json:"spend"`
}

// GuestSummary aggregates a guest's accepted receipts over a period.
type GuestSummary struct {
	Phone        string         `json:"phone"`
	Period       string         `json:"period"`
	Range        *DateRange     `json:"range,omitempty"`
	ReceiptCount int            `json:"receipt_count"`
	TotalSpend   float64        `json:"total_spend"`
	AverageSpend float64        `json:"average_spend"`
	FirstVisit   *time.Time     `json:"first_visit,omitempty"`
	LastVisit    *time.Time     `json:"last_visit,omitempty"`
	Stores       []StoreVisits  `json:"stores"`
	Monthly      []MonthlySpend `json:"monthly"`
}
