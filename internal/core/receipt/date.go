package receipt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dayFirstDateRe  = regexp.MustCompile(`\b(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})\b`)
	yearFirstDateRe = regexp.MustCompile(`\b(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})\b`)
	monthNameDateRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{4})\b`)

	timeRe = regexp.MustCompile(`(?i)\b(\d{1,2}):([0-5]\d)(?::[0-5]\d)?(?:\s*([ap])\.?m\.?)?`)

	datePatterns = []*regexp.Regexp{dayFirstDateRe, yearFirstDateRe, monthNameDateRe}

	monthsByPrefix = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}
)

// ExtractDate returns the raw substring matched by the first date shape that
// occurs anywhere in text. Shapes are tried in order: day-first numeric,
// year-first numeric, then "12 Nov 2025".
func ExtractDate(text string) Result[string] {
	matchers := make([]Matcher[string], 0, len(datePatterns))
	for _, re := range datePatterns {
		matchers = append(matchers, matchPattern(re))
	}
	return FirstMatch(text, matchers...)
}

// ExtractEarliestDate returns whichever date shape appears first in the text.
func ExtractEarliestDate(text string) Result[string] {
	best, bestAt := "", -1
	for _, re := range datePatterns {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if bestAt == -1 || loc[0] < bestAt {
			best, bestAt = text[loc[0]:loc[1]], loc[0]
		}
	}
	if bestAt == -1 {
		return NotMatched[string]()
	}
	return Matched(best)
}

func matchPattern(re *regexp.Regexp) Matcher[string] {
	return func(text string) Result[string] {
		if s := re.FindString(text); s != "" {
			return Matched(s)
		}
		return NotMatched[string]()
	}
}

// NormalizeDate converts a raw date substring to YYYY-MM-DD. Numeric
// day-first dates are read as DD/MM/YYYY. Impossible dates are rejected.
func NormalizeDate(raw string) (string, bool) {
	var y, m, d int
	switch {
	case dayFirstDateRe.MatchString(raw):
		p := dayFirstDateRe.FindStringSubmatch(raw)
		d, m, y = atoi(p[1]), atoi(p[2]), atoi(p[3])
	case yearFirstDateRe.MatchString(raw):
		p := yearFirstDateRe.FindStringSubmatch(raw)
		y, m, d = atoi(p[1]), atoi(p[2]), atoi(p[3])
	case monthNameDateRe.MatchString(raw):
		p := monthNameDateRe.FindStringSubmatch(raw)
		d, y = atoi(p[1]), atoi(p[3])
		m = int(monthsByPrefix[strings.ToLower(p[2])])
	default:
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// ExtractTime returns the first clock time in text as HH:mm (24 hour).
func ExtractTime(text string) Result[string] {
	for _, m := range timeRe.FindAllStringSubmatch(text, -1) {
		h, minute := atoi(m[1]), m[2]
		switch strings.ToLower(m[3]) {
		case "p":
			if h < 12 {
				h += 12
			}
		case "a":
			if h == 12 {
				h = 0
			}
		}
		if h > 23 {
			continue
		}
		return Matched(fmt.Sprintf("%02d:%s", h, minute))
	}
	return NotMatched[string]()
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
