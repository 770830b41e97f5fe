package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/receipt"
)

// SummarizeGuest aggregates the receipts whose ProcessedAt falls inside r.
// Rejected receipts are ignored.
func SummarizeGuest(phone, period string, r DateRange, receipts []*receipt.AcceptedReceipt) *GuestSummary {
	summary := &GuestSummary{
		Phone:   phone,
		Period:  period,
		Stores:  []StoreVisits{},
		Monthly: []MonthlySpend{},
	}
	if period == "" {
		summary.Period = PeriodAll
	}
	if !r.IsZero() {
		rr := r
		summary.Range = &rr
	}

	stores := map[string]*StoreVisits{}
	var included []*receipt.AcceptedReceipt
	for _, rec := range receipts {
		if rec == nil || rec.Status == receipt.StatusRejected || !r.Contains(rec.ProcessedAt) {
			continue
		}
		included = append(included, rec)

		summary.ReceiptCount++
		summary.TotalSpend += rec.TotalAmount

		visit := rec.ProcessedAt
		if summary.FirstVisit == nil || visit.Before(*summary.FirstVisit) {
			summary.FirstVisit = &visit
		}
		if summary.LastVisit == nil || visit.After(*summary.LastVisit) {
			summary.LastVisit = &visit
		}

		sv, ok := stores[rec.StoreName]
		if !ok {
			sv = &StoreVisits{StoreName: rec.StoreName}
			stores[rec.StoreName] = sv
		}
		sv.Visits++
		sv.Spend = round2(sv.Spend + rec.TotalAmount)
	}

	if summary.ReceiptCount == 0 {
		return summary
	}
	summary.TotalSpend = round2(summary.TotalSpend)
	summary.AverageSpend = round2(summary.TotalSpend / float64(summary.ReceiptCount))

	for _, sv := range stores {
		summary.Stores = append(summary.Stores, *sv)
	}
	sort.Slice(summary.Stores, func(i, j int) bool {
		a, b := summary.Stores[i], summary.Stores[j]
		if a.Visits != b.Visits {
			return a.Visits > b.Visits
		}
		return a.StoreName < b.StoreName
	})

	summary.Monthly = monthly(*summary.FirstVisit, *summary.LastVisit, included)
	return summary
}

func monthly(first, last time.Time, receipts []*receipt.AcceptedReceipt) []MonthlySpend {
	ranges := GetMonthlyRanges(first, last)
	out := make([]MonthlySpend, len(ranges))
	for i, mr := range ranges {
		out[i].Month = mr.Start.Format("2006-01")
		for _, rec := range receipts {
			if mr.Contains(rec.ProcessedAt) {
				out[i].Receipts++
				out[i].Spend += rec.TotalAmount
			}
		}
		out[i].Spend = round2(out[i].Spend)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
