package wallet

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Rhymond/go-money"
)

// Euros renders an amount of Euro cents for humans, e.g. "€47.50".
func Euros(cents int64) string {
	return money.New(cents, money.EUR).Display()
}

// WriteFillsCSV writes every disposal fill as one CSV row, in consumption
// order. Monetary columns are formatted Euro amounts; quantity columns are
// nominal units.
func WriteFillsCSV(w io.Writer, fills []Fill) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"tx", "disposed", "kind", "currency", "amount", "batch", "acquired", "acq_price", "price", "cost", "proceeds", "gain"}); err != nil {
		return err
	}
	for _, f := range fills {
		acquired := ""
		if !f.AcquiredAt.IsZero() {
			acquired = f.AcquiredAt.UTC().Format(time.RFC3339)
		}
		err := cw.Write([]string{
			f.TxHash,
			f.DisposedAt.UTC().Format(time.RFC3339),
			string(f.Kind),
			f.Currency.String(),
			FormatAtomic(f.Amount),
			f.BatchID,
			acquired,
			FormatMicro(f.AcqPriceMicro),
			FormatMicro(f.PriceMicro),
			Euros(f.CostCents),
			Euros(f.ProceedsCents),
			Euros(f.GainCents),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBatchesCSV writes the ending batch lists, depleted batches included,
// grouped by currency in enumeration order.
func WriteBatchesCSV(w io.Writer, batches map[Currency][]Batch) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"batch", "currency", "acquired", "kind", "tx", "price", "qty_initial", "qty_remaining"}); err != nil {
		return err
	}
	for _, cur := range Currencies() {
		for _, b := range batches[cur] {
			acquired := ""
			if !b.AcquiredAt.IsZero() {
				acquired = b.AcquiredAt.UTC().Format(time.RFC3339)
			}
			err := cw.Write([]string{
				b.ID,
				b.Currency.String(),
				acquired,
				string(b.Kind),
				b.TxHash,
				FormatMicro(b.PriceMicro),
				FormatAtomic(b.QtyInitial),
				FormatAtomic(b.QtyRemaining),
			})
			if err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteValuationCSV writes one row per transaction with the wallet's
// balances valued in Euro.
func WriteValuationCSV(w io.Writer, rows []ValuationRow) error {
	cw := csv.NewWriter(w)
	header := []string{"tx", "time"}
	for _, cur := range Currencies() {
		header = append(header, cur.String())
	}
	header = append(header, "total", "flow")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, v := range rows {
		rec := []string{v.Hash, v.Time.UTC().Format(time.RFC3339)}
		for _, cur := range Currencies() {
			rec = append(rec, Euros(v.ValueCents[cur]))
		}
		rec = append(rec, Euros(v.TotalCents), Euros(v.FlowCents))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// GainByYear sums realized gain/loss in cents per calendar year, the figure
// a tax declaration needs.
func GainByYear(fills []Fill) map[int]int64 {
	out := make(map[int]int64)
	for _, f := range fills {
		out[f.DisposedAt.UTC().Year()] += f.GainCents
	}
	return out
}

// WriteSummary prints per-year realized gains followed by the overall total.
func WriteSummary(w io.Writer, fills []Fill) error {
	byYear := GainByYear(fills)
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	var total int64
	for _, y := range years {
		total += byYear[y]
		if _, err := fmt.Fprintf(w, "%d: %s\n", y, Euros(byYear[y])); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "total: %s\n", Euros(total))
	return err
}
