package receipt

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

// countingStrategy records how many times the wrapped strategy ran.
type countingStrategy struct {
	Strategy
	calls int
}

func (c *countingStrategy) Extract(text string) (*ParsedReceipt, error) {
	c.calls++
	return c.Strategy.Extract(text)
}

type panicStrategy struct{}

func (panicStrategy) Name() string { return "panicky" }

func (panicStrategy) Extract(string) (*ParsedReceipt, error) {
	panic("index out of range")
}

type failingStrategy struct{ err error }

func (failingStrategy) Name() string { return "failing" }

func (f failingStrategy) Extract(string) (*ParsedReceipt, error) {
	return nil, f.err
}

func TestParseRoundTrip(t *testing.T) {
	got, err := NewParser().Parse(context.Background(), oceanBasketText)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got.StoreName != "Ocean Basket" || got.StoreLocation != "The Grove" {
		t.Errorf("store = %q / %q", got.StoreName, got.StoreLocation)
	}
	if got.InvoiceNumber == nil || *got.InvoiceNumber != "09419754" {
		t.Errorf("invoice = %v", got.InvoiceNumber)
	}
	if got.Date == nil || *got.Date != "12/11/2025" {
		t.Errorf("date = %v", got.Date)
	}
	if got.DateISO != "2025-11-12" {
		t.Errorf("date iso = %q", got.DateISO)
	}
	if got.TotalAmount != 524.00 {
		t.Errorf("total = %v", got.TotalAmount)
	}
	wantItems := []LineItem{{Name: "Calamari", Quantity: 1, UnitPrice: 92, TotalPrice: 92}}
	if !reflect.DeepEqual(got.Items, wantItems) {
		t.Errorf("items = %+v", got.Items)
	}
	if got.RawText != oceanBasketText {
		t.Error("raw text not preserved")
	}
	if got.Strategy != StrategyStandard {
		t.Errorf("strategy = %q", got.Strategy)
	}
}

func TestParseShortCircuits(t *testing.T) {
	standard := &countingStrategy{Strategy: Standard()}
	alternative := &countingStrategy{Strategy: Alternative()}
	generic := &countingStrategy{Strategy: Generic()}

	p := NewParser(WithStrategies(standard, alternative, generic))
	if _, err := p.Parse(context.Background(), oceanBasketText); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if standard.calls != 1 || alternative.calls != 0 || generic.calls != 0 {
		t.Errorf("calls = %d/%d/%d, want 1/0/0", standard.calls, alternative.calls, generic.calls)
	}
}

func TestParseExhaustion(t *testing.T) {
	text := "Some Cafe\nInvoice 1234\nTotal: R50.00\n"
	_, err := NewParser().Parse(context.Background(), text)
	if !errors.Is(err, ErrNoStrategySucceeded) {
		t.Fatalf("err = %v, want ErrNoStrategySucceeded", err)
	}

	var nse *NoStrategySucceededError
	if !errors.As(err, &nse) {
		t.Fatalf("err is %T", err)
	}
	want := []string{StrategyStandard, StrategyAlternative, StrategyGeneric}
	if !reflect.DeepEqual(nse.Strategies(), want) {
		t.Errorf("strategies = %v, want %v", nse.Strategies(), want)
	}
	for _, a := range nse.Attempts {
		if !reflect.DeepEqual(a.Problems, []string{"date missing"}) {
			t.Errorf("%s problems = %v", a.Strategy, a.Problems)
		}
	}
}

func TestParseGenericFallback(t *testing.T) {
	text := "Joe's Diner\nLong Street\n05/03/2024\nCoffee R45.00\n"
	got, err := NewParser().Parse(context.Background(), text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Strategy != StrategyGeneric {
		t.Errorf("strategy = %q, want generic", got.Strategy)
	}
	if got.TotalAmount != 45.00 || got.StoreName != "Joe's Diner" {
		t.Errorf("got %+v", got)
	}

	for _, s := range []Strategy{Standard(), Alternative()} {
		c, err := s.Extract(text)
		if err != nil {
			t.Fatalf("%s: %v", s.Name(), err)
		}
		if Validate(c) {
			t.Errorf("%s should not validate", s.Name())
		}
	}
}

func TestParseAlternativeLayout(t *testing.T) {
	text := "*** SPUR STEAK RANCH ***\nMenlyn\nDate: 2024-03-05\nWaiter: Lerato\nITEM QTY PRICE\nBurger 2 x 75.00\nAmount Due 150.00\n"
	got, err := NewParser().Parse(context.Background(), text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Strategy != StrategyAlternative {
		t.Fatalf("strategy = %q, want alternative", got.Strategy)
	}
	if got.StoreName != "Spur Steak Ranch" || got.StoreLocation != "Menlyn" {
		t.Errorf("store = %q / %q", got.StoreName, got.StoreLocation)
	}
	if got.TotalAmount != 150 || len(got.Items) != 1 || got.Items[0].TotalPrice != 150 {
		t.Errorf("total/items = %v / %+v", got.TotalAmount, got.Items)
	}
	if got.Waiter == nil || *got.Waiter != "Lerato" {
		t.Errorf("waiter = %v", got.Waiter)
	}
}

func TestParseRecoversFromStrategyFailures(t *testing.T) {
	boom := errors.New("boom")
	p := NewParser(WithStrategies(panicStrategy{}, failingStrategy{err: boom}, Standard()))

	got, err := p.Parse(context.Background(), oceanBasketText)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Strategy != StrategyStandard {
		t.Errorf("strategy = %q", got.Strategy)
	}

	_, err = NewParser(WithStrategies(panicStrategy{}, failingStrategy{err: boom})).Parse(context.Background(), oceanBasketText)
	var nse *NoStrategySucceededError
	if !errors.As(err, &nse) || len(nse.Attempts) != 2 {
		t.Fatalf("err = %v", err)
	}
	var se *StrategyError
	if !errors.As(nse.Attempts[0].Err, &se) || se.Strategy != "panicky" {
		t.Errorf("first attempt = %v", nse.Attempts[0].Err)
	}
	if !errors.Is(nse.Attempts[1].Err, boom) {
		t.Errorf("second attempt = %v", nse.Attempts[1].Err)
	}
}

func TestParseEmptyText(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), "   \n")
	var nse *NoStrategySucceededError
	if !errors.As(err, &nse) {
		t.Fatalf("err = %v", err)
	}
	for _, a := range nse.Attempts {
		if !errors.Is(a.Err, ErrEmptyText) {
			t.Errorf("%s: %v", a.Strategy, a.Err)
		}
	}
}

func TestParseHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewParser().Parse(ctx, oceanBasketText); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestValidate(t *testing.T) {
	date := "12/11/2025"
	valid := ParsedReceipt{StoreName: "Ocean Basket", TotalAmount: 10, Date: &date}

	tests := []struct {
		name   string
		mutate func(p *ParsedReceipt)
		want   bool
	}{
		{"valid without invoice", func(*ParsedReceipt) {}, true},
		{"zero total", func(p *ParsedReceipt) { p.TotalAmount = 0 }, false},
		{"blank store", func(p *ParsedReceipt) { p.StoreName = "  " }, false},
		{"no date", func(p *ParsedReceipt) { p.Date = nil }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if got := Validate(&c); got != tt.want {
				t.Errorf("Validate = %v, want %v (problems %v)", got, tt.want, Problems(&c))
			}
		})
	}
	if Validate(nil) {
		t.Error("nil candidate should not validate")
	}
}

func TestStrategyByName(t *testing.T) {
	for _, name := range []string{"standard", " Alternative ", "GENERIC"} {
		if _, ok := StrategyByName(name); !ok {
			t.Errorf("StrategyByName(%q) not found", name)
		}
	}
	if _, ok := StrategyByName("ml"); ok {
		t.Error("unknown strategy found")
	}
}

func TestAcceptCopiesCandidate(t *testing.T) {
	p := &ParsedReceipt{StoreName: "Cafe", Items: []LineItem{{Name: "Tea", Quantity: 1}}}
	a := Accept(p, "k1", "https://img", "+27821234567", time.Date(2025, 11, 12, 19, 0, 0, 0, time.UTC))
	a.Items[0].Name = "Coffee"
	if p.Items[0].Name != "Tea" {
		t.Error("Accept shares the items slice")
	}
	if a.Status != StatusPendingValidation || a.ReceiptKey != "k1" {
		t.Errorf("accepted = %+v", a)
	}
}
