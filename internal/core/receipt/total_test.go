package receipt

import "testing"

func TestExtractTotal(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
		ok   bool
	}{
		{
			name: "bill total beats earlier summary",
			text: "ITEM QTY PRICE VALUE\nHake 1 70.00 70.00\nSUMMARY\nFood 70.00\nTotal: R70.00\nBill Total 524.00\n",
			want: 524.00, ok: true,
		},
		{
			name: "bill total beats summary with larger amount",
			text: "SUMMARY\nTotal: R900.00\nBill Total R 524.00\n",
			want: 524.00, ok: true,
		},
		{
			name: "bill total amount on next line",
			text: "SUMMARY\nTotal: R70.00\nBill Total\n524.00\nTendered 600.00\n",
			want: 524.00, ok: true,
		},
		{
			name: "labelled currency total",
			text: "Coffee 1 30.00 30.00\nSub Total: R30.00\nTotal: R 1,234.50\nCash R1,300.00\n",
			want: 1234.50, ok: true,
		},
		{
			name: "labelled total outside summary preferred",
			text: "Total: R100.00\nSUMMARY\nTotal: R40.00\n",
			want: 100.00, ok: true,
		},
		{
			name: "summary total when nothing else",
			text: "SUMMARY\nTotal: R40.00\n",
			want: 40.00, ok: true,
		},
		{
			name: "no label falls back to maximum",
			text: "Coffee 30.00\nCake R45.00\nChange 5.00\n",
			want: 45.00, ok: true,
		},
		{
			name: "nothing currency shaped",
			text: "Cafe\n12/11/2025\n",
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractTotal(tt.text).Get()
			if ok != tt.ok || got != tt.want {
				t.Errorf("got (%v, %v), want (%v, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTotalPolicies(t *testing.T) {
	unlabelled := "Coffee 30.00\nCake R45.00\n"
	if ExtractLabelledTotal(unlabelled).Found() {
		t.Error("labelled total should not guess")
	}
	if ExtractLooseTotal(unlabelled).Found() {
		t.Error("loose total should not guess")
	}

	loose := "Burger 75.00\nAmount Due 150.00\n"
	if got, ok := ExtractLooseTotal(loose).Get(); !ok || got != 150.00 {
		t.Errorf("loose total = (%v, %v), want 150", got, ok)
	}
	if ExtractLabelledTotal(loose).Found() {
		t.Error("labelled total requires a currency prefix")
	}
}

func TestExtractMaxAmount(t *testing.T) {
	got, ok := ExtractMaxAmount("a 1.5 b R 12.00 c 1,200.00 d 2024.1.1").Get()
	if !ok || got != 1200.00 {
		t.Errorf("got (%v, %v), want 1200", got, ok)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"92.00", 92, true},
		{"R45.00", 45, true},
		{"R 1,234.50", 1234.5, true},
		{"12", 0, false},
		{"1.5", 0, false},
		{"12/11/2025", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseAmount(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
