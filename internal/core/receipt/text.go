package receipt

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// amountTokenRe finds number-ish runs; amountShapeRe decides whether one is a currency amount.
	amountTokenRe = regexp.MustCompile(`(?:R\s*)?\d[\d,]*(?:\.\d+)*`)
	amountShapeRe = regexp.MustCompile(`^(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}$`)
)

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// nonBlankLines returns the trimmed non-empty lines of text, at most limit of
// them when limit > 0.
func nonBlankLines(text string, limit int) []string {
	var out []string
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// parseAmount parses "R 1,234.50" style tokens. Anything that is not shaped
// like a two-decimal amount is rejected.
func parseAmount(token string) (float64, bool) {
	s := strings.TrimSpace(token)
	s = strings.TrimPrefix(s, "R")
	s = strings.TrimSpace(s)
	if !amountShapeRe.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// currencyAmounts returns every currency-shaped amount in s, left to right.
func currencyAmounts(s string) []float64 {
	var out []float64
	for _, tok := range amountTokenRe.FindAllString(s, -1) {
		if v, ok := parseAmount(tok); ok {
			out = append(out, v)
		}
	}
	return out
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
