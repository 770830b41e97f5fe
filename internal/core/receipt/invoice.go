package receipt

import (
	"regexp"
	"strings"
)

// invoiceSearchLines bounds the bare-number attempt to the receipt header.
const invoiceSearchLines = 5

var (
	// Group 3 is a cents tail; a capture followed by one is an amount.
	labelledInvoiceRe = regexp.MustCompile(`(?i)\b(?:(?:pro-?\s?forma|tax)\s+)?(?:invoice|receipt)\s*(?:no\.?|number|nr\.?|num\.?)?\s*[:#.]?\s*#?\s*([A-Z]{0,4})(-?\d{4,}[0-9A-Z-]*)([.,]\d{2}\b)?`)
	currencyPrefixRe  = regexp.MustCompile(`(?i)^(?:R|ZAR|USD|EUR|GBP)$`)
	bareNumberRe      = regexp.MustCompile(`^#?(\d{4,})$`)
	contactLineRe     = regexp.MustCompile(`(?i)\b(?:tel|phone|fax|cell|vat|reg)\b`)
	prefixedInvoiceRe = regexp.MustCompile(`(?i)(?:\binv|\brcp|#)[\s:#.-]*(\d{2,}[\d-]*)`)
)

// ExtractInvoiceNumber tries a labelled invoice/receipt number, then a bare
// 4+ digit number near the top, then an INV/RCP/# prefix anywhere.
func ExtractInvoiceNumber(text string) Result[string] {
	return FirstMatch(text, matchLabelledInvoice, matchBareInvoiceNearTop, matchPrefixedInvoice)
}

// matchLabelledInvoice accepts "invoice"/"receipt" labels only. Values that
// look like money (currency prefix or cents tail) are skipped.
func matchLabelledInvoice(text string) Result[string] {
	for _, line := range splitLines(text) {
		for _, m := range labelledInvoiceRe.FindAllStringSubmatch(line, -1) {
			prefix, number, cents := m[1], m[2], m[3]
			if cents != "" || currencyPrefixRe.MatchString(prefix) {
				continue
			}
			return Matched(strings.ToUpper(prefix + number))
		}
	}
	return NotMatched[string]()
}

func matchBareInvoiceNearTop(text string) Result[string] {
	for _, line := range nonBlankLines(text, invoiceSearchLines) {
		if contactLineRe.MatchString(line) {
			continue
		}
		if r := firstBareNumber(line); r.Found() {
			return r
		}
	}
	return NotMatched[string]()
}

func matchPrefixedInvoice(text string) Result[string] {
	for _, line := range splitLines(text) {
		if m := prefixedInvoiceRe.FindStringSubmatch(line); m != nil {
			return Matched(m[1])
		}
	}
	return NotMatched[string]()
}

// matchAnyBareNumber returns the first whitespace-delimited 4+ digit token anywhere.
func matchAnyBareNumber(text string) Result[string] {
	for _, line := range splitLines(text) {
		if r := firstBareNumber(line); r.Found() {
			return r
		}
	}
	return NotMatched[string]()
}

func firstBareNumber(line string) Result[string] {
	for _, field := range strings.Fields(line) {
		if m := bareNumberRe.FindStringSubmatch(strings.Trim(field, ":,;")); m != nil {
			return Matched(m[1])
		}
	}
	return NotMatched[string]()
}
