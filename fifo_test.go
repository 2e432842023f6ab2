package wallet

import (
	"errors"
	"strings"
	"testing"
)

func TestBatchCreation(t *testing.T) {
	book := mkBook(map[string]int64{"XLM:2025-01-01": 500_000})
	rows := []TxRow{
		mkRow("tx1", day("2025-01-01"), 0, CreateAccount{Amount: 10 * unit}),
	}
	result, err := Run(rows, book)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	batches := result.Batches[XLM]
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	b := batches[0]
	if b.ID != "XLM#0001" {
		t.Errorf("batch id = %q, want XLM#0001", b.ID)
	}
	if b.QtyInitial != 100_000_000 || b.QtyRemaining != 100_000_000 {
		t.Errorf("batch qty = %d/%d, want 100000000/100000000", b.QtyInitial, b.QtyRemaining)
	}
	if b.PriceMicro != 500_000 {
		t.Errorf("batch price = %d, want 500000", b.PriceMicro)
	}
	if b.Kind != AcquireFunding {
		t.Errorf("batch kind = %q, want funding", b.Kind)
	}
}

func TestZeroAmountAcquisitionIsNoOp(t *testing.T) {
	book := mkBook(map[string]int64{"XLM:2025-01-01": 500_000})
	rows := []TxRow{mkRow("tx1", day("2025-01-01"), 0, in(XLM, 0))}
	result, err := Run(rows, book)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Batches[XLM]) != 0 {
		t.Errorf("a zero acquisition created %d batches", len(result.Batches[XLM]))
	}
	if len(result.Fills) != 0 {
		t.Errorf("a zero acquisition created %d fills", len(result.Fills))
	}
}

func TestMultiBatchDisposal(t *testing.T) {
	book := mkBook(map[string]int64{
		"XLM:2025-01-01": 400_000,
		"XLM:2025-01-02": 500_000,
		"XLM:2025-01-03": 600_000,
		"XLM:2025-01-04": 700_000,
	})
	rows := []TxRow{
		mkRow("tx1", day("2025-01-01"), 0, in(XLM, 30*unit)),
		mkRow("tx2", day("2025-01-02"), 0, in(XLM, 40*unit)),
		mkRow("tx3", day("2025-01-03"), 0, in(XLM, 50*unit)),
		mkRow("tx4", day("2025-01-04"), 0, out(XLM, 60*unit)),
	}
	result, err := Run(rows, book)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Fills) != 2 {
		t.Fatalf("got %d fills, want 2", len(result.Fills))
	}

	first, second := result.Fills[0], result.Fills[1]
	if first.BatchID != "XLM#0001" || first.Amount != 30*unit || first.AcqPriceMicro != 400_000 {
		t.Errorf("first fill = %+v, want 30 XLM from batch 1 at 0.4", first)
	}
	if second.BatchID != "XLM#0002" || second.Amount != 30*unit || second.AcqPriceMicro != 500_000 {
		t.Errorf("second fill = %+v, want 30 XLM from batch 2 at 0.5", second)
	}
	// cost 30×0.4 = €12.00, proceeds 30×0.7 = €21.00
	if first.CostCents != 1200 || first.ProceedsCents != 2100 || first.GainCents != 900 {
		t.Errorf("first fill cents = %d/%d/%d, want 1200/2100/900",
			first.CostCents, first.ProceedsCents, first.GainCents)
	}

	batches := result.Batches[XLM]
	if batches[0].QtyRemaining != 0 {
		t.Errorf("batch 1 remaining = %d, want 0", batches[0].QtyRemaining)
	}
	if batches[1].QtyRemaining != 10*unit {
		t.Errorf("batch 2 remaining = %d, want %d", batches[1].QtyRemaining, 10*unit)
	}
	if batches[2].QtyRemaining != 50*unit {
		t.Errorf("batch 3 remaining = %d, want %d untouched", batches[2].QtyRemaining, 50*unit)
	}
	assertConservation(t, result)
}

func TestSwapImpliedPricing(t *testing.T) {
	book := mkBook(map[string]int64{
		"XLM:2025-01-01":  400_000,
		"USDC:2025-01-02": 950_000,
	})
	rows := []TxRow{
		mkRow("tx1", day("2025-01-01"), 0, in(XLM, 100*unit)),
		mkRow("tx2", day("2025-01-02"), 0, Swap{
			Source: XLM, SourceAmount: 100 * unit,
			Destination: USDC, DestinationAmount: 50 * unit,
		}),
	}
	result, err := Run(rows, book)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(result.Fills))
	}
	f := result.Fills[0]
	if f.Kind != DisposeSwap {
		t.Errorf("fill kind = %q, want swap", f.Kind)
	}
	// implied XLM price = round(50 × 950000 / 100) = 475000 micro-EUR
	if f.PriceMicro != 475_000 {
		t.Errorf("disposal price = %d, want 475000", f.PriceMicro)
	}
	if f.CostCents != 4000 || f.ProceedsCents != 4750 || f.GainCents != 750 {
		t.Errorf("fill cents = %d/%d/%d, want 4000/4750/750", f.CostCents, f.ProceedsCents, f.GainCents)
	}

	// destination leg is an ordinary acquisition at its own market price
	usdc := result.Batches[USDC]
	if len(usdc) != 1 {
		t.Fatalf("got %d USDC batches, want 1", len(usdc))
	}
	if usdc[0].QtyInitial != 50*unit || usdc[0].PriceMicro != 950_000 || usdc[0].Kind != AcquireSwap {
		t.Errorf("USDC batch = %+v, want 50 units at 0.95", usdc[0])
	}
	assertConservation(t, result)
}

func TestSwapDestinationVisibleWithinTransaction(t *testing.T) {
	book := mkBook(map[string]int64{
		"XLM:2025-01-01":  400_000,
		"USDC:2025-01-01": 950_000,
	})
	// the same transaction swaps into USDC and immediately spends part of it
	rows := []TxRow{
		mkRow("tx1", day("2025-01-01"), 0,
			in(XLM, 100*unit),
			Swap{Source: XLM, SourceAmount: 100 * unit, Destination: USDC, DestinationAmount: 50 * unit},
			out(USDC, 20*unit),
		),
	}
	result, err := Run(rows, book)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Batches[USDC][0].QtyRemaining; got != 30*unit {
		t.Errorf("USDC remaining = %d, want %d", got, 30*unit)
	}
	assertConservation(t, result)
}

func TestBlendRoundTrip(t *testing.T) {
	book := mkBook(map[string]int64{
		"USDC:2025-01-01": 900_000,
		"USDC:2025-01-02": 900_000,
		"USDC:2025-01-03": 950_000,
	})
	rows := []TxRow{
		mkRow("tx1", day("2025-01-01"), 0, in(USDC, 100*unit)),
		mkRow("tx2", day("2025-01-02"), 0, BlendDeposit{Currency: USDC, Amount: 100 * unit}),
		mkRow("tx3", day("2025-01-03"), 0, BlendWithdraw{Currency: USDC, Amount: 101 * unit}),
	}
	result, err := Run(rows, book)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// the deposit disposes the original lot at the market price
	if len(result.Fills) != 1 || result.Fills[0].Kind != DisposeBlendDeposit {
		t.Fatalf("fills = %+v, want one blend_deposit disposal", result.Fills)
	}
	if result.Fills[0].GainCents != 0 {
		t.Errorf("flat-price deposit gain = %d, want 0", result.Fills[0].GainCents)
	}
	// the withdrawal is a fresh acquisition at the withdrawal-day price
	batches := result.Batches[USDC]
	if len(batches) != 2 {
		t.Fatalf("got %d USDC batches, want 2", len(batches))
	}
	withdrawn := batches[1]
	if withdrawn.Kind != AcquireBlendWithdraw || withdrawn.QtyInitial != 101*unit || withdrawn.PriceMicro != 950_000 {
		t.Errorf("withdrawal batch = %+v", withdrawn)
	}
	assertConservation(t, result)
}

func TestNetworkFeeDisposal(t *testing.T) {
	book := mkBook(map[string]int64{"XLM:2025-01-01": 500_000, "XLM:2025-01-02": 500_000})
	rows := []TxRow{
		mkRow("tx1", day("2025-01-01"), 0, in(XLM, 10*unit)),
		mkRow("tx2", day("2025-01-02"), 1_000_000, out(XLM, unit)),
	}
	result, err := Run(rows, book)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Fills) != 2 {
		t.Fatalf("got %d fills, want 2", len(result.Fills))
	}
	fee := result.Fills[1]
	if fee.Kind != DisposeNetworkFee {
		t.Fatalf("second fill kind = %q, want network_fee", fee.Kind)
	}
	// 0.1 XLM burnt: proceeds zero, the whole cost is a loss
	if fee.ProceedsCents != 0 {
		t.Errorf("fee proceeds = %d, want 0", fee.ProceedsCents)
	}
	if fee.CostCents != 5 || fee.GainCents != -5 {
		t.Errorf("fee cost/gain = %d/%d, want 5/-5", fee.CostCents, fee.GainCents)
	}
	assertConservation(t, result)
}

func TestEURCParInvariant(t *testing.T) {
	book := mkBook(nil)
	rows := []TxRow{
		mkRow("tx1", day("2025-01-01"), 0, in(EURC, 100*unit)),
		mkRow("tx2", day("2025-01-02"), 0, out(EURC, 40*unit)),
	}
	result, err := Run(rows, book)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// EURC never grows a second batch; the par batch absorbs everything
	batches := result.Batches[EURC]
	if len(batches) != 1 || batches[0].ID != "EURC#0001" {
		t.Fatalf("EURC batches = %+v, want the single par batch", batches)
	}
	if batches[0].QtyInitial != 100*unit || batches[0].QtyRemaining != 60*unit {
		t.Errorf("par batch qty = %d/%d, want 1000000000/600000000", batches[0].QtyInitial, batches[0].QtyRemaining)
	}
	if len(result.Fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(result.Fills))
	}
	f := result.Fills[0]
	if f.CostCents != f.ProceedsCents || f.GainCents != 0 {
		t.Errorf("ordinary EURC disposal cents = %d/%d/%d, want zero gain by construction",
			f.CostCents, f.ProceedsCents, f.GainCents)
	}
	if f.CostCents != 4000 {
		t.Errorf("cost = %d, want 4000", f.CostCents)
	}
}

func TestEURCFeeDisposal(t *testing.T) {
	f := newFifo(mkBook(nil))
	if err := f.addBatch(EURC, day("2025-01-01"), "tx1", 10*unit, AcquirePayment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.dispose(EURC, day("2025-01-02"), "tx2", 2*unit, DisposeSwapFee, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fill := f.fills[0]
	if fill.ProceedsCents != 0 {
		t.Errorf("fee proceeds = %d, want 0", fill.ProceedsCents)
	}
	if fill.GainCents != -fill.CostCents {
		t.Errorf("fee gain = %d, want -cost (%d)", fill.GainCents, -fill.CostCents)
	}
}

func TestUnderflow(t *testing.T) {
	book := mkBook(map[string]int64{"XLM:2025-01-01": 400_000, "XLM:2025-01-02": 500_000})
	rows := []TxRow{
		mkRow("tx1", day("2025-01-01"), 0, in(XLM, 30*unit)),
		mkRow("tx2", day("2025-01-02"), 0, out(XLM, 50*unit)),
	}
	result, err := Run(rows, book)
	if err == nil {
		t.Fatal("expected an underflow error")
	}
	var underflow *UnderflowError
	if !errors.As(err, &underflow) {
		t.Fatalf("error %T is not an *UnderflowError", err)
	}
	// the message must locate the failure: currency and timestamp
	msg := err.Error()
	if !strings.Contains(msg, "XLM") {
		t.Errorf("error %q does not name the currency", msg)
	}
	if !strings.Contains(msg, "2025-01-02") {
		t.Errorf("error %q does not name the disposal time", msg)
	}
	// state mutated before the failure is not rolled back: the partial fill
	// against batch 1 is visible in the returned result
	if result == nil || len(result.Fills) != 1 || result.Fills[0].Amount != 30*unit {
		t.Errorf("partial result = %+v, want the 30 XLM fill kept", result)
	}
	if result.Batches[XLM][0].QtyRemaining != 0 {
		t.Errorf("batch 1 remaining = %d, want 0 after the partial fill", result.Batches[XLM][0].QtyRemaining)
	}
}

func TestEURCUnderflow(t *testing.T) {
	rows := []TxRow{mkRow("tx1", day("2025-01-01"), 0, out(EURC, unit))}
	_, err := Run(rows, mkBook(nil))
	if err == nil {
		t.Fatal("expected an underflow error")
	}
	var underflow *UnderflowError
	if !errors.As(err, &underflow) || !underflow.Par {
		t.Fatalf("error %v, want a par-batch underflow", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "EURC") || !strings.Contains(msg, "par") {
		t.Errorf("error %q does not name the EURC par batch", msg)
	}
}

func TestMissingPriceAborts(t *testing.T) {
	rows := []TxRow{mkRow("tx1", day("2025-01-01"), 0, in(XLM, unit))}
	_, err := Run(rows, mkBook(nil))
	if err == nil {
		t.Fatal("expected a missing price error")
	}
	var missing *MissingPriceError
	if !errors.As(err, &missing) {
		t.Fatalf("error %T is not a *MissingPriceError", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "XLM") || !strings.Contains(msg, "2025-01-01") {
		t.Errorf("error %q does not name the currency and date", msg)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	book := mkBook(map[string]int64{
		"XLM:2025-01-01":  400_000,
		"XLM:2025-01-02":  500_000,
		"USDC:2025-01-02": 950_000,
	})
	rows := []TxRow{
		mkRow("tx1", day("2025-01-01"), 100, in(XLM, 100*unit)),
		mkRow("tx2", day("2025-01-02"), 100, Swap{
			Source: XLM, SourceAmount: 40 * unit,
			Destination: USDC, DestinationAmount: 20 * unit,
		}),
	}
	a, err := Run(rows, book)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Run(rows, book)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Fills) != len(b.Fills) {
		t.Fatalf("two runs disagree on fill count: %d vs %d", len(a.Fills), len(b.Fills))
	}
	for i := range a.Fills {
		if a.Fills[i] != b.Fills[i] {
			t.Errorf("fill %d differs between runs: %+v vs %+v", i, a.Fills[i], b.Fills[i])
		}
	}
	assertConservation(t, a)
}

// assertConservation checks that for every currency
// sum(initial) − sum(fill amounts) == sum(remaining).
func assertConservation(t *testing.T, result *FifoResult) {
	t.Helper()
	for cur, batches := range result.Batches {
		var initial, remaining int64
		for _, b := range batches {
			initial += b.QtyInitial
			remaining += b.QtyRemaining
		}
		var disposed int64
		for _, f := range result.Fills {
			if f.Currency == cur {
				disposed += f.Amount
			}
		}
		if initial-disposed != remaining {
			t.Errorf("%s: initial %d − disposed %d != remaining %d", cur, initial, disposed, remaining)
		}
	}
}
