package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	wallet "github.com/kovipu/stellar-wallet-to-euros"
)

// fetchCmd holds the flags for the 'fetch' subcommand.
type fetchCmd struct {
	account string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetches the wallet's history from Horizon" }
func (*fetchCmd) Usage() string {
	return `swe fetch [-account <G...>]

Fetches every transaction and operation of the wallet account from the
Horizon API and writes them to the local fetch cache. Failed transactions
and inbound dust payments below the configured threshold are dropped.

The fetch is incremental in effect: responses are cached on disk with daily
expiry, so re-running within a day costs nothing.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Wallet account id, overriding the configuration file.")
}

func (c *fetchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := wallet.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.account != "" {
		cfg.Account = c.account
	}
	if cfg.Account == "" {
		fmt.Fprintln(os.Stderr, "Error: no wallet account configured")
		return subcommands.ExitUsageError
	}
	dust, err := cfg.DustAtomic()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	h := wallet.NewHorizon(cfg.HorizonURL, cfg.HTTPCacheDir())
	txs, err := h.History(cfg.Account, dust)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching from Horizon: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := wallet.SaveTransactions(cfg.TransactionsFile(), txs); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing fetch cache: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Fetched %d transactions into %s.\n", len(txs), cfg.TransactionsFile())
	return subcommands.ExitSuccess
}
