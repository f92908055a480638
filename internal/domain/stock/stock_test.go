package stock

import "testing"

func TestStockTier(t *testing.T) {
	cases := []struct {
		name    string
		current int
		minimum int
		want    Tier
	}{
		{"well stocked", 100, 20, TierGood},
		{"exactly half", 10, 20, TierLow},
		{"exactly quarter", 5, 20, TierCritical},
		{"empty", 0, 20, TierCritical},
		{"zero minimum never divides", 50, 0, TierCritical},
		{"negative minimum treated as zero", 50, -1, TierCritical},
	}
	for _, tc := range cases {
		item := StockItem{CurrentStock: tc.current, MinimumStock: tc.minimum}
		if got := item.StockTier(); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestIsLowStock(t *testing.T) {
	if (&StockItem{CurrentStock: 21, MinimumStock: 20}).IsLowStock() {
		t.Fatalf("above minimum flagged low")
	}
	if !(&StockItem{CurrentStock: 20, MinimumStock: 20}).IsLowStock() {
		t.Fatalf("at minimum should be low")
	}
	if !(&StockItem{CurrentStock: 3, MinimumStock: 20}).IsLowStock() {
		t.Fatalf("below minimum should be low")
	}
}
