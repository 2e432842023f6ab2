package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	wallet "github.com/kovipu/stellar-wallet-to-euros"
)

// ledgerCmd holds the flags for the 'ledger' subcommand.
type ledgerCmd struct {
	output string
}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "prints the normalized ledger with running balances" }
func (*ledgerCmd) Usage() string {
	return `swe ledger [-o <file>]

Normalizes the fetch cache into one JSONL row per transaction: its typed
operations and the wallet's balances right after it. Useful to eyeball the
history before running the report.
`
}

func (c *ledgerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Write to this file instead of stdout.")
}

func (c *ledgerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	out := os.Stdout
	if c.output != "" {
		out, err = os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %q for writing: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
	}
	if err := wallet.EncodeRows(out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
