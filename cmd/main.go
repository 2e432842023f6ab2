package cmd

import (
	"flag"
	"fmt"

	"github.com/google/subcommands"
	wallet "github.com/kovipu/stellar-wallet-to-euros"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&fetchCmd{}, "data")
	c.Register(&ratesCmd{}, "data")

	c.Register(&ledgerCmd{}, "reporting")
	c.Register(&reportCmd{}, "reporting")
}

var configFile = flag.String("config", "swe.toml", "Path to the TOML configuration file")

// OpenConfig loads the configuration file and checks the wallet account is
// set, since every subcommand needs it.
func OpenConfig() (*wallet.Config, error) {
	cfg, err := wallet.LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	if cfg.Account == "" {
		return nil, fmt.Errorf("no wallet account configured: set 'account' in %s or the SWE_ACCOUNT environment variable", *configFile)
	}
	return cfg, nil
}

// loadRows reads the fetch cache and normalizes it into ledger rows.
func loadRows(cfg *wallet.Config) ([]wallet.TxRow, error) {
	txs, err := wallet.LoadTransactions(cfg.TransactionsFile())
	if err != nil {
		return nil, fmt.Errorf("could not load the fetch cache (run 'swe fetch' first): %w", err)
	}
	return wallet.BuildLedger(cfg.Account, txs)
}
