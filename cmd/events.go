package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/cgt"
	"github.com/google/subcommands"
)

// eventsCmd holds the flags for the 'events' subcommand.
type eventsCmd struct {
	outputFile string
}

func (*eventsCmd) Name() string     { return "events" }
func (*eventsCmd) Synopsis() string { return "export every gain and loss event as CSV" }
func (*eventsCmd) Usage() string {
	return `cgt events [-o <file>] <transactions.csv>...

  Processes the transaction logs and exports one CSV row per gain or loss
  event, with the acquisition, matched lot, and disposal details flattened
  in. Writes to stdout by default.
`
}

func (c *eventsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputFile, "o", "", "Output file. Writes to stdout by default.")
}

func (c *eventsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	var out io.Writer = os.Stdout
	if c.outputFile != "" {
		file, err := os.Create(c.outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.outputFile, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		out = file
	}

	if err := cgt.ExportGainLoss(out, cfg, ledger.Events()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing events: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
