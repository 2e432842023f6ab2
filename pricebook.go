package wallet

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"
)

// MissingPriceError reports that the price book has no entry for a required
// (currency, date) pair. It is fatal: the caller should re-fetch prices and
// retry the entire run.
type MissingPriceError struct {
	Currency Currency
	Day      Date
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("no EUR price for %s on %s", e.Currency, e.Day)
}

// PriceBook is a day-granularity table mapping each tradable currency to a
// Euro price in micro-Euro. It is fully pre-populated before the accounting
// pass begins, so that the pass itself performs no network I/O.
//
// Entries are keyed "{currency}:{YYYY-MM-DD}". EURC never consults the table:
// its price is always par.
type PriceBook struct {
	prices map[string]int64
}

// NewPriceBook returns an empty price book.
func NewPriceBook() *PriceBook {
	return &PriceBook{prices: make(map[string]int64)}
}

func priceKey(cur Currency, day Date) string {
	return cur.String() + ":" + day.String()
}

// Set records the micro-Euro price of a currency on a given day.
func (b *PriceBook) Set(cur Currency, day Date, microEUR int64) {
	b.prices[priceKey(cur, day)] = microEUR
}

// Price returns the micro-Euro price of a currency on a given UTC day.
// EURC always returns par without a lookup. A missing entry returns a
// *MissingPriceError.
func (b *PriceBook) Price(cur Currency, day Date) (int64, error) {
	if cur == EURC {
		return ParPriceMicro, nil
	}
	price, ok := b.prices[priceKey(cur, day)]
	if !ok {
		return 0, &MissingPriceError{Currency: cur, Day: day}
	}
	return price, nil
}

// Has reports whether the book holds an entry for the pair. EURC is always
// covered.
func (b *PriceBook) Has(cur Currency, day Date) bool {
	if cur == EURC {
		return true
	}
	_, ok := b.prices[priceKey(cur, day)]
	return ok
}

// Len returns the number of entries in the book.
func (b *PriceBook) Len() int { return len(b.prices) }

// RequiredDates returns, per tradable currency, the sorted list of UTC dates
// the accounting pass will query for the given ledger: every transaction day
// on which the currency is either moved or held. EURC is excluded since it
// never needs a lookup.
func RequiredDates(rows []TxRow) map[Currency][]Date {
	seen := map[Currency]map[Date]struct{}{
		XLM:  make(map[Date]struct{}),
		USDC: make(map[Date]struct{}),
	}
	for _, row := range rows {
		day := DateOf(row.Time)
		for cur := range seen {
			if row.Balances[cur] != 0 || rowTouches(row, cur) {
				seen[cur][day] = struct{}{}
			}
		}
	}
	required := make(map[Currency][]Date, len(seen))
	for cur, days := range seen {
		list := make([]Date, 0, len(days))
		for day := range days {
			list = append(list, day)
		}
		slices.SortFunc(list, func(a, b Date) int {
			switch {
			case a.Before(b):
				return -1
			case a.After(b):
				return 1
			default:
				return 0
			}
		})
		required[cur] = list
	}
	return required
}

// rowTouches reports whether any operation in the row moves the currency.
func rowTouches(row TxRow, cur Currency) bool {
	for _, op := range row.Operations {
		switch v := op.(type) {
		case CreateAccount:
			if cur == XLM {
				return true
			}
		case Payment:
			if v.Currency == cur {
				return true
			}
		case Swap:
			if v.Source == cur || v.Destination == cur {
				return true
			}
		case BlendDeposit:
			if v.Currency == cur {
				return true
			}
		case BlendWithdraw:
			if v.Currency == cur {
				return true
			}
		}
	}
	return cur == XLM && row.FeeAtomic > 0
}

// pricePoint is the JSONL persistence form of one book entry.
type pricePoint struct {
	Currency Currency `json:"currency"`
	Date     Date     `json:"date"`
	MicroEUR int64    `json:"micro_eur"`
}

// Encode writes the book as JSONL, one entry per line in stable key order,
// so the cache file diffs cleanly between runs.
func (b *PriceBook) Encode(w io.Writer) error {
	keys := make([]string, 0, len(b.prices))
	for k := range b.prices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	enc := json.NewEncoder(w)
	for _, k := range keys {
		cur, day, err := splitPriceKey(k)
		if err != nil {
			return err
		}
		if err := enc.Encode(pricePoint{Currency: cur, Date: day, MicroEUR: b.prices[k]}); err != nil {
			return err
		}
	}
	return nil
}

// DecodePriceBook reads a JSONL price book written by Encode.
func DecodePriceBook(r io.Reader) (*PriceBook, error) {
	book := NewPriceBook()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var p pricePoint
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("invalid price book line %q: %w", string(line), err)
		}
		book.Set(p.Currency, p.Date, p.MicroEUR)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return book, nil
}

func splitPriceKey(key string) (Currency, Date, error) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			cur, err := ParseCurrency(key[:i])
			if err != nil {
				return 0, Date{}, err
			}
			day, err := ParseDate(key[i+1:])
			if err != nil {
				return 0, Date{}, err
			}
			return cur, day, nil
		}
	}
	return 0, Date{}, fmt.Errorf("invalid price key %q", key)
}
