package wallet

import "testing"

func TestParseAsset(t *testing.T) {
	tests := []struct {
		assetType, assetCode string
		expected             Currency
		err                  bool
	}{
		{"native", "", XLM, false},
		{"credit_alphanum4", "USDC", USDC, false},
		{"credit_alphanum4", "EURC", EURC, false},
		{"credit_alphanum4", "SHIB", 0, true},
		{"credit_alphanum12", "STELLARCAT", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAsset(tt.assetType, tt.assetCode)
		if (err != nil) != tt.err {
			t.Fatalf("ParseAsset(%q, %q) error = %v, want err %v", tt.assetType, tt.assetCode, err, tt.err)
		}
		if err == nil && got != tt.expected {
			t.Errorf("ParseAsset(%q, %q) = %v, want %v", tt.assetType, tt.assetCode, got, tt.expected)
		}
	}
}

func TestBalancesClone(t *testing.T) {
	b := NewBalances()
	for _, cur := range Currencies() {
		if _, ok := b[cur]; !ok {
			t.Errorf("new balances miss an entry for %s", cur)
		}
	}
	b[XLM] = 42
	c := b.Clone()
	c[XLM] = 7
	if b[XLM] != 42 {
		t.Error("mutating a clone leaked into the original")
	}
}
