package receipt

import (
	"regexp"
	"strings"
)

// section tracks where in the receipt the total scanner currently is.
type section int

const (
	sectionBody section = iota
	sectionItems
	sectionSummary
	sectionBillTotal
)

var (
	billTotalRe = regexp.MustCompile(`(?i)\bbill\s*total\b`)
	summaryRe   = regexp.MustCompile(`(?i)^\W*summary\b`)
	subtotalRe  = regexp.MustCompile(`(?i)\bsub\s*-?\s*total\b`)
	nonTotalRe  = regexp.MustCompile(`(?i)\b(?:tender(?:ed)?|change|tips?|gratuity|discount|savings?|rounding)\b`)

	// currencyTotalRe is a "Total:" label followed by a rand-prefixed amount.
	currencyTotalRe = regexp.MustCompile(`(?i)\b(?:grand\s+)?total(?:\s+due)?\s*:?\s*R\s*\d`)
	// looseTotalRe accepts the wider vocabulary seen on older till slips.
	looseTotalRe = regexp.MustCompile(`(?i)\b(?:grand\s+|net\s+)?(?:total|amount(?:\s+due)?|sum)\b`)
)

type totalPolicy struct {
	labels        *regexp.Regexp
	fallbackToMax bool
}

type totalCandidate struct {
	amount  float64
	section section
}

var (
	defaultTotalPolicy  = totalPolicy{labels: currencyTotalRe, fallbackToMax: true}
	labelledTotalPolicy = totalPolicy{labels: currencyTotalRe}
	looseTotalPolicy    = totalPolicy{labels: looseTotalRe}
)

// ExtractTotal returns the receipt total. A "Bill Total" line is authoritative
// and silences any SUMMARY section; otherwise a labelled "Total: R..." line
// wins; otherwise the largest currency amount in the text is used.
func ExtractTotal(text string) Result[float64] {
	return scanTotal(text, defaultTotalPolicy)
}

// ExtractLabelledTotal is ExtractTotal without the largest-amount fallback.
func ExtractLabelledTotal(text string) Result[float64] {
	return scanTotal(text, labelledTotalPolicy)
}

// ExtractLooseTotal accepts Total, Amount or Sum labels, with or without a
// currency prefix. It never guesses.
func ExtractLooseTotal(text string) Result[float64] {
	return scanTotal(text, looseTotalPolicy)
}

// ExtractMaxAmount returns the largest currency-shaped amount anywhere in text.
func ExtractMaxAmount(text string) Result[float64] {
	found := false
	var best float64
	for _, v := range currencyAmounts(text) {
		if !found || v > best {
			best, found = v, true
		}
	}
	if !found {
		return NotMatched[float64]()
	}
	return Matched(best)
}

func scanTotal(text string, policy totalPolicy) Result[float64] {
	sec := sectionBody
	pendingBill := false
	var billTotals []float64
	var labelled []totalCandidate

	for _, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if itemsHeaderRe.MatchString(line) {
			sec = sectionItems
			continue
		}
		if summaryRe.MatchString(line) {
			sec = sectionSummary
			continue
		}

		amounts := currencyAmounts(line)
		if billTotalRe.MatchString(line) {
			sec = sectionBillTotal
			if len(amounts) > 0 {
				billTotals = append(billTotals, amounts[len(amounts)-1])
			} else {
				// OCR often splits the label and the amount onto separate lines.
				pendingBill = true
			}
			continue
		}
		if pendingBill && len(amounts) > 0 {
			billTotals = append(billTotals, amounts[0])
			pendingBill = false
			continue
		}

		if len(amounts) == 0 || subtotalRe.MatchString(line) || nonTotalRe.MatchString(line) {
			continue
		}
		if policy.labels.MatchString(line) {
			labelled = append(labelled, totalCandidate{amount: amounts[len(amounts)-1], section: sec})
		}
	}

	if len(billTotals) > 0 {
		return Matched(billTotals[len(billTotals)-1])
	}
	for i := len(labelled) - 1; i >= 0; i-- {
		if labelled[i].section != sectionSummary {
			return Matched(labelled[i].amount)
		}
	}
	if len(labelled) > 0 {
		return Matched(labelled[len(labelled)-1].amount)
	}
	if policy.fallbackToMax {
		return ExtractMaxAmount(text)
	}
	return NotMatched[float64]()
}
