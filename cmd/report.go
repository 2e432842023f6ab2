package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	wallet "github.com/kovipu/stellar-wallet-to-euros"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	dir string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "computes FIFO gains and writes the report files" }
func (*reportCmd) Usage() string {
	return `swe report [-dir <directory>]

Replays the wallet's history against the price book with strict FIFO cost
basis and writes three CSV files — fills.csv (every disposal with cost,
proceeds and gain), batches.csv (the ending acquisition lots) and
valuation.csv (Euro value of the balances after each transaction) — then
prints the realized gain per year.

Run 'swe fetch' and 'swe rates' first.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", "", "Directory for the CSV files. Defaults to the data directory.")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	result, err := wallet.Run(rows, book)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	valuation, err := wallet.Valuate(rows, book)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	dir := c.dir
	if dir == "" {
		dir = cfg.DataDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create %q: %v\n", dir, err)
		return subcommands.ExitFailure
	}
	files := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"fills.csv", func(f *os.File) error { return wallet.WriteFillsCSV(f, result.Fills) }},
		{"batches.csv", func(f *os.File) error { return wallet.WriteBatchesCSV(f, result.Batches) }},
		{"valuation.csv", func(f *os.File) error { return wallet.WriteValuationCSV(f, valuation) }},
	}
	for _, file := range files {
		path := filepath.Join(dir, file.name)
		out, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %q for writing: %v\n", path, err)
			return subcommands.ExitFailure
		}
		err = file.write(out)
		out.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", path, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Wrote %s.\n", path)
	}

	fmt.Println("Realized gains:")
	if err := wallet.WriteSummary(os.Stdout, result.Fills); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
