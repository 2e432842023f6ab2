package wallet

import "testing"

func TestValuate(t *testing.T) {
	book := mkBook(map[string]int64{
		"XLM:2025-01-01": 400_000,
		"XLM:2025-01-02": 500_000,
	})
	rows := []TxRow{
		{Hash: "tx1", Time: day("2025-01-01"),
			Balances: Balances{XLM: 100 * unit, USDC: 0, EURC: 0}},
		{Hash: "tx2", Time: day("2025-01-02"),
			Balances: Balances{XLM: 60 * unit, USDC: 0, EURC: 10 * unit}},
	}
	valuation, err := Valuate(rows, book)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(valuation) != 2 {
		t.Fatalf("got %d rows, want 2", len(valuation))
	}

	// day 1: 100 XLM at 0.4 = €40.00, all of it inbound flow
	if got := valuation[0].ValueCents[XLM]; got != 4000 {
		t.Errorf("day 1 XLM value = %d, want 4000", got)
	}
	if valuation[0].TotalCents != 4000 || valuation[0].FlowCents != 4000 {
		t.Errorf("day 1 total/flow = %d/%d, want 4000/4000", valuation[0].TotalCents, valuation[0].FlowCents)
	}

	// day 2: 60 XLM at 0.5 = €30.00 plus 10 EURC at par = €10.00;
	// flow: −40 XLM at 0.5 = −€20.00 plus +10 EURC = €10.00
	if got := valuation[1].ValueCents[XLM]; got != 3000 {
		t.Errorf("day 2 XLM value = %d, want 3000", got)
	}
	if got := valuation[1].ValueCents[EURC]; got != 1000 {
		t.Errorf("day 2 EURC value = %d, want 1000", got)
	}
	if valuation[1].TotalCents != 4000 {
		t.Errorf("day 2 total = %d, want 4000", valuation[1].TotalCents)
	}
	if valuation[1].FlowCents != -1000 {
		t.Errorf("day 2 flow = %d, want -1000", valuation[1].FlowCents)
	}
}

func TestValuateMissingPrice(t *testing.T) {
	rows := []TxRow{{Hash: "tx1", Time: day("2025-01-01"),
		Balances: Balances{XLM: unit, USDC: 0, EURC: 0}}}
	if _, err := Valuate(rows, mkBook(nil)); err == nil {
		t.Fatal("expected a missing price error")
	}
}
