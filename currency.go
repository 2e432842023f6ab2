package wallet

import "fmt"

// Currency is the closed set of assets this wallet accounts for. Any other
// asset code appearing in the source data is a hard error at ledger
// construction time.
type Currency int

const (
	// XLM is the Stellar network-native asset.
	XLM Currency = iota
	// USDC is the USD-pegged asset.
	USDC
	// EURC is the EUR-pegged asset, valued at par throughout.
	EURC
)

// Currencies returns all supported currencies in stable order.
func Currencies() []Currency { return []Currency{XLM, USDC, EURC} }

func (c Currency) String() string {
	switch c {
	case XLM:
		return "XLM"
	case USDC:
		return "USDC"
	case EURC:
		return "EURC"
	default:
		return "unknown"
	}
}

// ParseCurrency parses an asset code into a Currency.
func ParseCurrency(code string) (Currency, error) {
	switch code {
	case "XLM":
		return XLM, nil
	case "USDC":
		return USDC, nil
	case "EURC":
		return EURC, nil
	default:
		return 0, fmt.Errorf("unsupported currency %q", code)
	}
}

// ParseAsset maps Horizon's asset_type/asset_code field pair into a Currency.
// The native asset has asset_type "native" and no code.
func ParseAsset(assetType, assetCode string) (Currency, error) {
	if assetType == "native" {
		return XLM, nil
	}
	cur, err := ParseCurrency(assetCode)
	if err != nil {
		return 0, fmt.Errorf("unsupported asset %s/%s", assetType, assetCode)
	}
	return cur, nil
}

// MarshalText implements encoding.TextMarshaler so currencies serialize as
// their code in JSON objects and keys.
func (c Currency) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Currency) UnmarshalText(text []byte) error {
	cur, err := ParseCurrency(string(text))
	if err != nil {
		return err
	}
	*c = cur
	return nil
}

// Balances maps each supported currency to a signed quantity in atomic units.
// A Balances always carries an entry for all three currencies.
type Balances map[Currency]int64

// NewBalances returns a zeroed balance for every supported currency.
func NewBalances() Balances {
	b := make(Balances, 3)
	for _, cur := range Currencies() {
		b[cur] = 0
	}
	return b
}

// Clone returns an independent copy of the balances.
func (b Balances) Clone() Balances {
	c := make(Balances, len(b))
	for cur, qty := range b {
		c[cur] = qty
	}
	return c
}
