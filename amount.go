package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Two fixed integer scales carry every financial quantity in this package:
// amounts in atomic units and prices in micro-Euro. All arithmetic is exact;
// the single rounding point is the half-up conversion to cents.
const (
	// AtomicPerUnit is the number of atomic units in one nominal unit.
	AtomicPerUnit = 10_000_000
	// MicroPerEuro is the number of micro-Euro in one Euro.
	MicroPerEuro = 1_000_000
	// ParPriceMicro is the fixed EURC valuation: 1 EURC = 1 EUR.
	ParPriceMicro = 1_000_000
)

const atomicDecimals = 7

// centsDivisor scales atomic×micro products down to cents:
// 10^7 atomic × 10^6 micro-Euro / 10^2 cents = 10^11.
var centsDivisor = decimal.New(1, 11)

// ParseAtomic converts a decimal string amount (e.g. "37702.4250015") to
// atomic integer units by scaling by 10^7, truncating (not rounding) any
// digits beyond 7 decimal places. A bare integer string (already atomic, e.g.
// raw Horizon fee values) passes through unchanged.
//
// The conversion is exact; no floating point is involved.
func ParseAtomic(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if !hasDot {
		v, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		if neg {
			v = -v
		}
		return v, nil
	}
	if intPart == "" {
		intPart = "0"
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if len(fracPart) > atomicDecimals {
		// Truncate, never round: the ledger must reproduce amounts exactly.
		fracPart = fracPart[:atomicDecimals]
	}
	fracPart += strings.Repeat("0", atomicDecimals-len(fracPart))
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	v := whole*AtomicPerUnit + frac
	if neg {
		v = -v
	}
	return v, nil
}

// FormatAtomic renders an atomic quantity as a decimal string, trimming
// trailing zeros ("100000000" -> "10", "4250015" -> "0.4250015").
func FormatAtomic(v int64) string {
	return decimal.New(v, -atomicDecimals).String()
}

// FormatMicro renders a micro-Euro price as a decimal Euro string.
func FormatMicro(v int64) string {
	return decimal.New(v, -6).String()
}

// Cents values an atomic quantity at a micro-Euro price, in integer cents,
// rounding half-up at the single point where cents are derived. Negative
// inputs round symmetrically (half away from zero).
func Cents(qtyAtomic, priceMicro int64) int64 {
	q := decimal.NewFromInt(qtyAtomic)
	p := decimal.NewFromInt(priceMicro)
	return q.Mul(p).DivRound(centsDivisor, 0).IntPart()
}

// ImpliedPriceMicro derives a swap's source-side disposal price from the
// destination leg: round(destAmount × destPriceMicro / sourceAmount),
// half-up on the integer division.
//
// This anchors proceeds on the better-known leg (the acquired asset) and
// derives the disposed asset's effective sale price from the trade itself.
func ImpliedPriceMicro(destAmount, destPriceMicro, sourceAmount int64) int64 {
	d := decimal.NewFromInt(destAmount)
	p := decimal.NewFromInt(destPriceMicro)
	s := decimal.NewFromInt(sourceAmount)
	return d.Mul(p).DivRound(s, 0).IntPart()
}
