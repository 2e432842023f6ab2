package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	wallet "github.com/kovipu/stellar-wallet-to-euros"
)

// ratesCmd holds the flags for the 'rates' subcommand.
type ratesCmd struct{}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "fetches the daily EUR prices the report needs" }
func (*ratesCmd) Usage() string {
	return `swe rates

Scans the fetch cache for every (currency, day) pair the report will price,
fetches the missing daily EUR rates from CoinGecko and merges them into the
local price book. Already-known rates are never re-fetched.
`
}

func (c *ratesCmd) SetFlags(*flag.FlagSet) {}

func (c *ratesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := OpenConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	rows, err := loadRows(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	book, err := wallet.LoadPriceBook(cfg.PriceBookFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	g := wallet.NewCoinGecko(cfg.CoinGeckoURL, cfg.HTTPCacheDir())
	if err := g.PopulateRates(book, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching rates: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := wallet.SavePriceBook(cfg.PriceBookFile(), book); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing price book: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Price book holds %d rates in %s.\n", book.Len(), cfg.PriceBookFile())
	return subcommands.ExitSuccess
}
