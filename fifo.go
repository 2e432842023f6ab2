package wallet

import (
	"fmt"
	"time"
)

// AcquisitionKind tags how a batch was acquired.
type AcquisitionKind string

const (
	AcquireFunding       AcquisitionKind = "funding"
	AcquirePayment       AcquisitionKind = "payment"
	AcquireSwap          AcquisitionKind = "swap"
	AcquireBlendWithdraw AcquisitionKind = "blend_withdraw"
	// AcquirePar tags the single persistent EURC batch.
	AcquirePar AcquisitionKind = "par"
)

// DisposalKind tags why a quantity left the wallet.
type DisposalKind string

const (
	DisposePayment      DisposalKind = "payment"
	DisposeSwap         DisposalKind = "swap"
	DisposeBlendDeposit DisposalKind = "blend_deposit"
	DisposeSwapFee      DisposalKind = "swap_fee"
	DisposeNetworkFee   DisposalKind = "network_fee"
)

// IsFee reports whether the disposal is fee-flavored: the quantity is burned
// for nothing, so proceeds are zero and the whole cost is a loss.
func (k DisposalKind) IsFee() bool {
	return k == DisposeSwapFee || k == DisposeNetworkFee
}

// Batch is one acquisition lot. QtyRemaining is mutated in place as disposals
// consume it; the other fields never change after creation.
//
// Invariant: 0 <= QtyRemaining <= QtyInitial.
type Batch struct {
	ID           string          `json:"id"` // currency-scoped sequence, e.g. "XLM#0001"
	Currency     Currency        `json:"currency"`
	AcquiredAt   time.Time       `json:"acquiredAt"`
	Kind         AcquisitionKind `json:"kind"`
	TxHash       string          `json:"tx"`
	PriceMicro   int64           `json:"priceMicro"` // acquisition price, micro-Euro
	QtyInitial   int64           `json:"qtyInitial"`
	QtyRemaining int64           `json:"qtyRemaining"`
}

// Fill is the record of a disposal consuming all or part of one batch.
// Created once, immutable. A single disposal spanning several batches
// produces one Fill per consumed batch, in acquisition order.
type Fill struct {
	TxHash        string       `json:"tx"`
	Currency      Currency     `json:"currency"`
	Amount        int64        `json:"amount"` // atomic quantity taken from the batch
	BatchID       string       `json:"batch"`
	AcquiredAt    time.Time    `json:"acquiredAt"`
	AcqPriceMicro int64        `json:"acqPriceMicro"`
	DisposedAt    time.Time    `json:"disposedAt"`
	Kind          DisposalKind `json:"kind"`
	PriceMicro    int64        `json:"priceMicro"` // disposal price, micro-Euro; zero for fees
	CostCents     int64        `json:"costCents"`
	ProceedsCents int64        `json:"proceedsCents"`
	GainCents     int64        `json:"gainCents"` // proceeds − cost
}

// FifoResult holds the two output collections of a FIFO pass: all fills in
// consumption order, and per currency the final batch list, including fully
// depleted batches, for audit. Consumers must not mutate it.
type FifoResult struct {
	Fills   []Fill
	Batches map[Currency][]Batch
}

// UnderflowError reports a disposal requesting more quantity than the sum of
// all remaining batches for a currency. It indicates either bad upstream data
// or an ordering bug, and is never recoverable within the same run.
type UnderflowError struct {
	Currency Currency
	At       time.Time
	Par      bool // true when the EURC par batch underflowed
}

func (e *UnderflowError) Error() string {
	if e.Par {
		return fmt.Sprintf("cannot dispose %s at %s: the EURC par batch has insufficient remaining quantity",
			e.Currency, e.At.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("cannot dispose %s at %s: all batches exhausted",
		e.Currency, e.At.UTC().Format(time.RFC3339))
}

// eurcParBatchID is the fixed identifier of the single persistent EURC batch.
const eurcParBatchID = "EURC#0001"

// fifo is the mutable state of one FIFO pass: per-currency batch lists in
// acquisition order, plus the per-currency batch sequence counters. State is
// private to one Run invocation.
type fifo struct {
	book    *PriceBook
	batches map[Currency][]Batch
	seq     map[Currency]int
	fills   []Fill
}

func newFifo(book *PriceBook) *fifo {
	f := &fifo{
		book:    book,
		batches: make(map[Currency][]Batch),
		seq:     make(map[Currency]int),
	}
	// EURC holds exactly one persistent batch at par for the whole run. It is
	// never removed and carries no per-event acquisition timestamp.
	f.batches[EURC] = []Batch{{
		ID:         eurcParBatchID,
		Currency:   EURC,
		Kind:       AcquirePar,
		PriceMicro: ParPriceMicro,
	}}
	return f
}

// Run replays the normalized ledger against the price book and returns the
// acquisition batches and disposal fills with realized gain/loss.
//
// The pass is single-threaded, synchronous and deterministic: the same rows
// and book always yield the identical result. On error the partial result up
// to the failure point is returned alongside the error — fills already
// recorded for the failing disposal are kept, so a downstream report can show
// exactly where the replay became inconsistent.
func Run(rows []TxRow, book *PriceBook) (*FifoResult, error) {
	f := newFifo(book)
	for i := range rows {
		row := &rows[i]
		for _, op := range row.Operations {
			if err := f.apply(row, op); err != nil {
				return f.result(), fmt.Errorf("transaction %s: %w", row.Hash, err)
			}
		}
		if row.FeeAtomic > 0 {
			if err := f.dispose(XLM, row.Time, row.Hash, row.FeeAtomic, DisposeNetworkFee, 0); err != nil {
				return f.result(), fmt.Errorf("transaction %s: network fee: %w", row.Hash, err)
			}
		}
	}
	return f.result(), nil
}

// apply dispatches one operation summary to the engine.
func (f *fifo) apply(row *TxRow, op Operation) error {
	switch v := op.(type) {
	case CreateAccount:
		return f.addBatch(XLM, row.Time, row.Hash, v.Amount, AcquireFunding)

	case Payment:
		if v.Direction == In {
			return f.addBatch(v.Currency, row.Time, row.Hash, v.Amount, AcquirePayment)
		}
		price, err := f.book.Price(v.Currency, DateOf(row.Time))
		if err != nil {
			return err
		}
		return f.dispose(v.Currency, row.Time, row.Hash, v.Amount, DisposePayment, price)

	case Swap:
		// The source leg's disposal price is implied from the destination
		// leg's market price, anchoring proceeds on the acquired asset.
		destPrice, err := f.book.Price(v.Destination, DateOf(row.Time))
		if err != nil {
			return err
		}
		implied := ImpliedPriceMicro(v.DestinationAmount, destPrice, v.SourceAmount)
		if err := f.dispose(v.Source, row.Time, row.Hash, v.SourceAmount, DisposeSwap, implied); err != nil {
			return err
		}
		// The destination leg is an ordinary acquisition at its own market
		// price, visible to any later disposal in the same transaction.
		return f.addBatch(v.Destination, row.Time, row.Hash, v.DestinationAmount, AcquireSwap)

	case BlendDeposit:
		price, err := f.book.Price(v.Currency, DateOf(row.Time))
		if err != nil {
			return err
		}
		return f.dispose(v.Currency, row.Time, row.Hash, v.Amount, DisposeBlendDeposit, price)

	case BlendWithdraw:
		return f.addBatch(v.Currency, row.Time, row.Hash, v.Amount, AcquireBlendWithdraw)

	case Audit:
		return nil

	default:
		return fmt.Errorf("unhandled operation type %T", op)
	}
}

// addBatch records an acquisition. A zero quantity is a no-op. EURC never
// grows a new batch: the single par batch is incremented instead.
func (f *fifo) addBatch(cur Currency, at time.Time, txHash string, qty int64, kind AcquisitionKind) error {
	if qty == 0 {
		return nil
	}
	if cur == EURC {
		par := &f.batches[EURC][0]
		par.QtyInitial += qty
		par.QtyRemaining += qty
		return nil
	}
	price, err := f.book.Price(cur, DateOf(at))
	if err != nil {
		return err
	}
	f.seq[cur]++
	f.batches[cur] = append(f.batches[cur], Batch{
		ID:           fmt.Sprintf("%s#%04d", cur, f.seq[cur]),
		Currency:     cur,
		AcquiredAt:   at,
		Kind:         kind,
		TxHash:       txHash,
		PriceMicro:   price,
		QtyInitial:   qty,
		QtyRemaining: qty,
	})
	return nil
}

// dispose consumes qty atomic units of cur, walking batches in acquisition
// order and recording one Fill per consumed batch. priceMicro is the disposal
// price: looked-up market price for ordinary disposals, implied price for
// swap sources, zero for fee-flavored disposals.
//
// Fills are appended as batches are walked; if the batch list is exhausted
// before the request is satisfied, the fills recorded so far stay in place
// and an *UnderflowError is returned.
func (f *fifo) dispose(cur Currency, at time.Time, txHash string, qty int64, kind DisposalKind, priceMicro int64) error {
	if qty == 0 {
		return nil
	}
	if cur == EURC {
		par := &f.batches[EURC][0]
		if par.QtyRemaining < qty {
			return &UnderflowError{Currency: cur, At: at, Par: true}
		}
		par.QtyRemaining -= qty
		// Cost at par, proceeds at the supplied price: ordinary EURC
		// disposals realize zero gain by construction.
		cost := Cents(qty, ParPriceMicro)
		proceeds := Cents(qty, priceMicro)
		f.fills = append(f.fills, Fill{
			TxHash:        txHash,
			Currency:      cur,
			Amount:        qty,
			BatchID:       par.ID,
			AcquiredAt:    par.AcquiredAt,
			AcqPriceMicro: ParPriceMicro,
			DisposedAt:    at,
			Kind:          kind,
			PriceMicro:    priceMicro,
			CostCents:     cost,
			ProceedsCents: proceeds,
			GainCents:     proceeds - cost,
		})
		return nil
	}

	remaining := qty
	list := f.batches[cur]
	for i := range list {
		b := &list[i]
		if b.QtyRemaining == 0 {
			continue
		}
		take := min(remaining, b.QtyRemaining)
		cost := Cents(take, b.PriceMicro)
		proceeds := Cents(take, priceMicro)
		f.fills = append(f.fills, Fill{
			TxHash:        txHash,
			Currency:      cur,
			Amount:        take,
			BatchID:       b.ID,
			AcquiredAt:    b.AcquiredAt,
			AcqPriceMicro: b.PriceMicro,
			DisposedAt:    at,
			Kind:          kind,
			PriceMicro:    priceMicro,
			CostCents:     cost,
			ProceedsCents: proceeds,
			GainCents:     proceeds - cost,
		})
		b.QtyRemaining -= take
		remaining -= take
		if remaining == 0 {
			return nil
		}
	}
	return &UnderflowError{Currency: cur, At: at}
}

func (f *fifo) result() *FifoResult {
	return &FifoResult{Fills: f.fills, Batches: f.batches}
}
