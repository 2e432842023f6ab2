package wallet

import "time"

// ValuationRow is one transaction's balance snapshot priced in Euro cents.
// FlowCents is the transaction's cash flow: the balance delta against the
// previous row, each currency valued at this row's date.
type ValuationRow struct {
	Hash       string
	Time       time.Time
	ValueCents map[Currency]int64
	TotalCents int64
	FlowCents  int64
}

// Valuate prices every transaction's post-transaction balances with the
// book. Rows must be in ledger order; the price book must already cover
// every (currency, date) a nonzero balance or delta touches.
func Valuate(rows []TxRow, book *PriceBook) ([]ValuationRow, error) {
	out := make([]ValuationRow, 0, len(rows))
	prev := NewBalances()
	for i := range rows {
		row := &rows[i]
		day := DateOf(row.Time)
		v := ValuationRow{
			Hash:       row.Hash,
			Time:       row.Time,
			ValueCents: make(map[Currency]int64, 3),
		}
		for _, cur := range Currencies() {
			bal := row.Balances[cur]
			delta := bal - prev[cur]
			if bal == 0 && delta == 0 {
				v.ValueCents[cur] = 0
				continue
			}
			price, err := book.Price(cur, day)
			if err != nil {
				return nil, err
			}
			cents := Cents(bal, price)
			v.ValueCents[cur] = cents
			v.TotalCents += cents
			v.FlowCents += Cents(delta, price)
		}
		out = append(out, v)
		prev = row.Balances
	}
	return out, nil
}
