package receipt

import (
	"errors"
	"strings"
)

// Strategy names, in cascade priority order.
const (
	StrategyStandard    = "standard"
	StrategyAlternative = "alternative"
	StrategyGeneric     = "generic"
)

// ErrEmptyText is returned by every strategy for blank input.
var ErrEmptyText = errors.New("receipt text is empty")

// Strategy turns raw OCR text into a candidate receipt for one family of
// receipt layouts. Strategies never see each other's results.
type Strategy interface {
	Name() string
	Extract(text string) (*ParsedReceipt, error)
}

// fieldStrategy is a named bundle of field extractors. Nil extractors leave
// their field empty.
type fieldStrategy struct {
	name    string
	store   Matcher[StoreIdentity]
	invoice Matcher[string]
	date    Matcher[string]
	clock   Matcher[string]
	waiter  Matcher[string]
	table   Matcher[string]
	total   Matcher[float64]
	items   func(text string) []LineItem
}

func (s *fieldStrategy) Name() string {
	return s.name
}

func (s *fieldStrategy) Extract(text string) (*ParsedReceipt, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	store := s.store(text).OrElse(StoreIdentity{})
	p := &ParsedReceipt{
		StoreName:     store.Name,
		StoreLocation: store.Location,
		InvoiceNumber: s.invoice(text).Ptr(),
		Date:          s.date(text).Ptr(),
		TotalAmount:   s.total(text).OrElse(0),
		Items:         s.items(text),
		RawText:       text,
		Strategy:      s.name,
	}
	if p.Date != nil {
		if iso, ok := NormalizeDate(*p.Date); ok {
			p.DateISO = iso
		}
	}
	if s.clock != nil {
		p.Time = s.clock(text).OrElse("")
	}
	if s.waiter != nil {
		p.Waiter = s.waiter(text).Ptr()
	}
	if s.table != nil {
		p.Table = s.table(text).Ptr()
	}
	return p, nil
}

// Standard expects clean labelled fields: a brand header, "Invoice #",
// "Bill Total" or "Total: R..." and an ITEM/QTY/PRICE/VALUE table.
func Standard() Strategy {
	return &fieldStrategy{
		name:    StrategyStandard,
		store:   ExtractStoreIdentity,
		invoice: ExtractInvoiceNumber,
		date:    ExtractDate,
		clock:   ExtractTime,
		waiter:  ExtractWaiter,
		table:   ExtractTable,
		total:   ExtractLabelledTotal,
		items:   ExtractItems,
	}
}

// Alternative tolerates shouting or asterisk-framed store names, wider total
// labels (Total, Amount, Sum) and "2 x" item quantities.
func Alternative() Strategy {
	return &fieldStrategy{
		name: StrategyAlternative,
		store: func(text string) Result[StoreIdentity] {
			return FirstMatch(text, matchBrandAnchor, matchDecoratedHeader)
		},
		invoice: ExtractInvoiceNumber,
		date:    ExtractDate,
		clock:   ExtractTime,
		waiter:  ExtractWaiter,
		table:   ExtractTable,
		total:   ExtractLooseTotal,
		items:   ExtractItemsLoose,
	}
}

// Generic makes minimal assumptions: first line is the store, first 4+ digit
// number is the invoice, first date-shaped text is the date and the largest
// amount is the total.
func Generic() Strategy {
	return &fieldStrategy{
		name:    StrategyGeneric,
		store:   matchLeadingLines,
		invoice: matchAnyBareNumber,
		date:    ExtractEarliestDate,
		total:   ExtractMaxAmount,
		items:   ExtractItemsLoose,
	}
}

// DefaultStrategies returns the cascade order: standard, alternative, generic.
func DefaultStrategies() []Strategy {
	return []Strategy{Standard(), Alternative(), Generic()}
}

// StrategyByName looks up one of the built-in strategies.
func StrategyByName(name string) (Strategy, bool) {
	for _, s := range DefaultStrategies() {
		if s.Name() == strings.ToLower(strings.TrimSpace(name)) {
			return s, true
		}
	}
	return nil, false
}
