package receipt

import (
	"regexp"
	"strconv"
	"strings"
)

// itemsState is the position of the items scanner relative to the items
// section. itemsClosed is terminal.
type itemsState int

const (
	itemsPending itemsState = iota
	itemsOpen
	itemsClosed
)

// lineEvent classifies one receipt line for the items scanner.
type lineEvent int

const (
	eventLine lineEvent = iota
	eventHeader
	eventBoundary
)

var itemsTransitions = map[itemsState]map[lineEvent]itemsState{
	itemsPending: {eventLine: itemsPending, eventHeader: itemsOpen, eventBoundary: itemsPending},
	itemsOpen:    {eventLine: itemsOpen, eventHeader: itemsOpen, eventBoundary: itemsClosed},
	itemsClosed:  {eventLine: itemsClosed, eventHeader: itemsClosed, eventBoundary: itemsClosed},
}

var (
	itemsHeaderRe   = regexp.MustCompile(`(?i)^\W*(?:item|description|desc)s?\s+(?:qty|quantity)\s+(?:price|unit(?:\s*price)?)\b`)
	itemsBoundaryRe = regexp.MustCompile(`(?i)\b(?:total|sub\s*-?\s*total|vat|tax|bill|summary|amount\s+due|balance)\b`)

	strictItemRe = regexp.MustCompile(`^(.+?)\s+(\d{1,3})\s+R?\s*(\d[\d,]*\.\d{2})\s+R?\s*(\d[\d,]*\.\d{2})$`)
	looseItemRe  = regexp.MustCompile(`^(.+?)\s+(?:[xX]\s*)?(\d{1,3})\s*(?:[xX@]\s*)?\s+R?\s*(\d[\d,]*\.\d{2})(?:\s+R?\s*(\d[\d,]*\.\d{2}))?$`)
)

// itemParser turns one line inside the items section into a LineItem.
type itemParser func(line string) (LineItem, bool)

// ExtractItems returns the line items between the ITEM/QTY/PRICE header and
// the first total, VAT or bill line. Lines that do not look like
// "name qty price value" are skipped.
func ExtractItems(text string) []LineItem {
	return scanItems(text, parseStrictItem)
}

// ExtractItemsLoose also accepts "2 x" quantities and a missing line value.
func ExtractItemsLoose(text string) []LineItem {
	return scanItems(text, parseLooseItem)
}

func classifyItemLine(line string) lineEvent {
	switch {
	case itemsHeaderRe.MatchString(line):
		return eventHeader
	case itemsBoundaryRe.MatchString(line):
		return eventBoundary
	default:
		return eventLine
	}
}

func scanItems(text string, parse itemParser) []LineItem {
	items := []LineItem{}
	state := itemsPending
	for _, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		ev := classifyItemLine(line)
		prev := state
		state = itemsTransitions[state][ev]
		if state == itemsClosed {
			break
		}
		if prev == itemsOpen && ev == eventLine {
			if item, ok := parse(line); ok {
				items = append(items, item)
			}
		}
	}
	return items
}

func parseStrictItem(line string) (LineItem, bool) {
	m := strictItemRe.FindStringSubmatch(line)
	if m == nil {
		return LineItem{}, false
	}
	return buildItem(m[1], m[2], m[3], m[4])
}

func parseLooseItem(line string) (LineItem, bool) {
	m := looseItemRe.FindStringSubmatch(line)
	if m == nil {
		return LineItem{}, false
	}
	return buildItem(m[1], m[2], m[3], m[4])
}

// buildItem validates the captured fields. An empty total means
// quantity * unit price.
func buildItem(name, qty, unit, total string) (LineItem, bool) {
	name = strings.TrimSpace(name)
	q, err := strconv.Atoi(qty)
	if name == "" || err != nil || q <= 0 {
		return LineItem{}, false
	}
	unitPrice, ok := parseAmount(unit)
	if !ok {
		return LineItem{}, false
	}
	totalPrice := roundCents(unitPrice * float64(q))
	if total != "" {
		if totalPrice, ok = parseAmount(total); !ok {
			return LineItem{}, false
		}
	}
	return LineItem{Name: name, Quantity: q, UnitPrice: unitPrice, TotalPrice: totalPrice}, true
}
