package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cgt/renderer"
	"github.com/google/subcommands"
)

type holdingsCmd struct{}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "remaining asset volumes and open lots" }
func (*holdingsCmd) Usage() string {
	return `cgt holdings <transactions.csv>...

  Processes the transaction logs and displays the remaining volume per asset
  and the open lots backing it, after the last transaction.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "missing transaction log files")
		return subcommands.ExitUsageError
	}
	cfg, err := LoadAppConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := processLedger(cfg, f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing transactions: %v\n", err)
		return subcommands.ExitFailure
	}

	statements := ledger.Statements()
	if len(statements) == 0 {
		fmt.Fprintln(os.Stderr, "no transactions processed")
		return subcommands.ExitFailure
	}
	last := statements[len(statements)-1]
	portfolio := last.Portfolio()
	portfolio.Compact()
	printMarkdown(renderer.HoldingsMarkdown(cfg, portfolio))
	return subcommands.ExitSuccess
}
