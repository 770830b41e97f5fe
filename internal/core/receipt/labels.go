package receipt

import (
	"regexp"
	"strings"
)

var (
	waiterRe     = regexp.MustCompile(`(?i)\b(?:waiter|waitron|server)\s*(?:name)?\s*[:#-]?\s*([A-Za-z][A-Za-z'.-]*(?:[ \t]+[A-Za-z][A-Za-z'.-]*)?)`)
	waiterTailRe = regexp.MustCompile(`(?i)[ \t]+(?:table|tbl|tab)$`)
	tableRe      = regexp.MustCompile(`(?i)\b(?:table|tbl)\s*(?:no\.?|#)?\s*[:#-]?\s*([A-Z]?\d+[A-Z]?)\b`)
)

// ExtractWaiter reads a "WAITER: name" style label.
func ExtractWaiter(text string) Result[string] {
	for _, line := range splitLines(text) {
		m := waiterRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(waiterTailRe.ReplaceAllString(m[1], ""))
		if name != "" {
			return Matched(name)
		}
	}
	return NotMatched[string]()
}

// ExtractTable reads a "TABLE: 12" style label.
func ExtractTable(text string) Result[string] {
	for _, line := range splitLines(text) {
		if m := tableRe.FindStringSubmatch(line); m != nil {
			return Matched(strings.ToUpper(m[1]))
		}
	}
	return NotMatched[string]()
}
