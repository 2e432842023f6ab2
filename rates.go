package wallet

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// DefaultCoinGeckoURL is the public CoinGecko API server.
const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// coingeckoIDs maps fetchable currencies to their CoinGecko coin ids. EURC
// is absent on purpose: it is priced at par and never fetched.
var coingeckoIDs = map[Currency]string{
	XLM:  "stellar",
	USDC: "usd-coin",
}

// CoinGecko fetches daily EUR prices from the CoinGecko market chart API.
type CoinGecko struct {
	BaseURL string
	Client  *http.Client
}

// NewCoinGecko returns a rate fetcher backed by the daily disk cache in
// cacheDir.
func NewCoinGecko(base, cacheDir string) *CoinGecko {
	if base == "" {
		base = DefaultCoinGeckoURL
	}
	return &CoinGecko{BaseURL: base, Client: daily(cacheDir)}
}

/*
	{
	    "prices": [
	        [1704067241331, 0.110472],
	        [1704153642290, 0.112315]
	    ],
	    "market_caps": [...],
	    "total_volumes": [...]
	}
*/
func (g *CoinGecko) rangePrices(cur Currency, from, to Date) (map[Date]int64, error) {
	id, ok := coingeckoIDs[cur]
	if !ok {
		return nil, fmt.Errorf("no CoinGecko id for %s", cur)
	}
	// widen by a day on each side so the first and last samples land inside
	addr := fmt.Sprintf("%s/coins/%s/market_chart/range?vs_currency=eur&from=%d&to=%d",
		g.BaseURL, url.PathEscape(id), from.Add(-1).Unix(), to.Add(2).Unix())

	var jobj any
	if err := jwget(g.Client, addr, &jobj); err != nil {
		return nil, fmt.Errorf("error in wget %q: %w", id, err)
	}
	path := "$.prices"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %q %w", id, path, err)
	}
	jlist, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing %q: %q %s %v", id, path, "not a list", jval)
	}

	// Samples come in chronological order; keep the last one of each UTC day
	// as that day's price.
	prices := make(map[Date]int64)
	for _, jpair := range jlist {
		pair, ok := jpair.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("error parsing %q: malformed price sample %v", id, jpair)
		}
		ms, ok1 := pair[0].(float64)
		val, ok2 := pair[1].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("error parsing %q: non-numeric price sample %v", id, pair)
		}
		day := DateOf(time.UnixMilli(int64(ms)))
		prices[day] = decimal.NewFromFloat(val).Mul(decimal.New(1, 6)).Round(0).IntPart()
	}
	return prices, nil
}

// PopulateRates fetches daily EUR prices for every (currency, date) pair the
// rows will need and merges them into the book, skipping pairs the book
// already has. It returns an error naming the first pair that remains
// missing after the fetch.
func (g *CoinGecko) PopulateRates(book *PriceBook, rows []TxRow) error {
	for cur, days := range RequiredDates(rows) {
		missing := make([]Date, 0, len(days))
		for _, day := range days {
			if !book.Has(cur, day) {
				missing = append(missing, day)
			}
		}
		if len(missing) == 0 {
			continue
		}
		// one range request per currency covers all missing days
		prices, err := g.rangePrices(cur, missing[0], missing[len(missing)-1])
		if err != nil {
			return err
		}
		for day, micro := range prices {
			book.Set(cur, day, micro)
		}
		for _, day := range missing {
			if !book.Has(cur, day) {
				return &MissingPriceError{Currency: cur, Day: day}
			}
		}
	}
	return nil
}
