package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cgt/renderer"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	year int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "annual capital gains statements" }
func (*reportCmd) Usage() string {
	return `cgt report [-year <year>] <transactions.csv>...

  Processes the transaction logs and displays the annual statement of each
  financial year: gross, discountable and taxable gains, losses, and the net
  result. Use -year to display a single year.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "Financial year to report on. All years by default.")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	found := false
	for _, s := range ledger.Statements() {
		if c.year != 0 && s.Year() != c.year {
			continue
		}
		found = true
		printMarkdown(renderer.StatementMarkdown(s))
	}
	if !found {
		fmt.Fprintf(os.Stderr, "no statement for financial year %d\n", c.year)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
