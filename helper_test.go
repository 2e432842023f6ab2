package wallet

import "time"

// unit is one nominal unit in atomic units, to keep test amounts readable.
const unit = int64(AtomicPerUnit)

// day is a helper for tests to get midnight UTC of a "YYYY-MM-DD" day.
func day(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d.Time()
}

// mkBook is a helper for tests to build a price book from "CUR:YYYY-MM-DD"
// keys to micro-Euro prices.
func mkBook(entries map[string]int64) *PriceBook {
	b := NewPriceBook()
	for k, v := range entries {
		cur, d, err := splitPriceKey(k)
		if err != nil {
			panic(err)
		}
		b.Set(cur, d, v)
	}
	return b
}

// mkRow is a helper for tests to build a ledger row from its operations.
func mkRow(hash string, t time.Time, fee int64, ops ...Operation) TxRow {
	return TxRow{Hash: hash, Time: t, FeeAtomic: fee, Operations: ops}
}

// in and out are payment constructors with only the fields the engine reads.
func in(cur Currency, amount int64) Payment {
	return Payment{Direction: In, Currency: cur, Amount: amount}
}
func out(cur Currency, amount int64) Payment {
	return Payment{Direction: Out, Currency: cur, Amount: amount}
}
