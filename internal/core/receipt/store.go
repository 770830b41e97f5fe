package receipt

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StoreIdentity is the merchant name and branch printed at the top of a receipt.
type StoreIdentity struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type brand struct {
	name   string
	anchor *regexp.Regexp
}

// storeSearchLines bounds how far down the receipt a brand anchor may appear.
const storeSearchLines = 5

var (
	knownBrands = []brand{
		{name: "Ocean Basket", anchor: regexp.MustCompile(`(?i)\bocean\s*basket\b`)},
	}

	decorationRe = regexp.MustCompile(`[*=~#_|]+|-{2,}`)
	spacesRe     = regexp.MustCompile(`\s+`)

	titleCaser = cases.Title(language.English)
)

// ExtractStoreIdentity looks for a known brand anchor near the top of the text
// and falls back to the first two non-blank lines.
func ExtractStoreIdentity(text string) Result[StoreIdentity] {
	return FirstMatch(text, matchBrandAnchor, matchLeadingLines)
}

// matchBrandAnchor treats the remainder of the anchor line as the branch,
// or the next line when the anchor stands alone.
func matchBrandAnchor(text string) Result[StoreIdentity] {
	lines := nonBlankLines(text, storeSearchLines+1)
	for i, line := range lines {
		if i == storeSearchLines {
			break
		}
		for _, b := range knownBrands {
			loc := b.anchor.FindStringIndex(line)
			if loc == nil {
				continue
			}
			location := cleanStoreLine(line[loc[1]:])
			if location == "" && i+1 < len(lines) && isBranchLine(lines[i+1]) {
				location = cleanStoreLine(lines[i+1])
			}
			return Matched(StoreIdentity{Name: b.name, Location: location})
		}
	}
	return NotMatched[StoreIdentity]()
}

// isBranchLine rejects lines that carry receipt fields rather than a branch name.
func isBranchLine(line string) bool {
	switch {
	case ExtractDate(line).Found(),
		labelledInvoiceRe.MatchString(line),
		bareNumberRe.MatchString(line),
		contactLineRe.MatchString(line),
		itemsHeaderRe.MatchString(line),
		looseTotalRe.MatchString(line),
		billTotalRe.MatchString(line):
		return false
	}
	return cleanStoreLine(line) != ""
}

func matchLeadingLines(text string) Result[StoreIdentity] {
	lines := nonBlankLines(text, 2)
	if len(lines) == 0 {
		return NotMatched[StoreIdentity]()
	}
	id := StoreIdentity{Name: lines[0]}
	if len(lines) > 1 {
		id.Location = lines[1]
	}
	return Matched(id)
}

// matchDecoratedHeader handles "*** SPUR STEAK RANCH ***" style headers:
// decoration is stripped and shouting names are title-cased.
func matchDecoratedHeader(text string) Result[StoreIdentity] {
	var cleaned []string
	for _, line := range nonBlankLines(text, storeSearchLines) {
		if c := cleanStoreLine(line); c != "" {
			cleaned = append(cleaned, c)
		}
		if len(cleaned) == 2 {
			break
		}
	}
	if len(cleaned) == 0 {
		return NotMatched[StoreIdentity]()
	}
	id := StoreIdentity{Name: unshout(cleaned[0])}
	if len(cleaned) > 1 {
		id.Location = unshout(cleaned[1])
	}
	return Matched(id)
}

func cleanStoreLine(s string) string {
	s = decorationRe.ReplaceAllString(s, " ")
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.Trim(s, " -:,.")
}

// unshout title-cases s when it is written entirely in capitals.
func unshout(s string) string {
	if strings.ToUpper(s) != s || strings.ToLower(s) == s {
		return s
	}
	return titleCaser.String(strings.ToLower(s))
}
