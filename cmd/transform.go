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

// transformCmd holds the flags for the 'transform' subcommand.
type transformCmd struct {
	exchange   string
	outputFile string
}

func (*transformCmd) Name() string     { return "transform" }
func (*transformCmd) Synopsis() string { return "convert raw exchange logs to the canonical CSV" }
func (*transformCmd) Usage() string {
	return `cgt transform -exchange <name> [-o <file>] <log.csv>...

  Converts raw exchange log files into the canonical combined transaction
  CSV, sorted by timestamp. Local-fiat amounts missing from USD-only logs
  are back-filled from the daily exchange rate.
`
}

func (c *transformCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.exchange, "exchange", "", "Exchange the logs come from (bitstamp, exodus, nexo, independentreserve)")
	f.StringVar(&c.outputFile, "o", "", "Output file. Writes to stdout by default.")
}

func (c *transformCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.exchange == "" {
		fmt.Fprintln(os.Stderr, "missing -exchange flag")
		return subcommands.ExitUsageError
	}
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "missing exchange log files")
		return subcommands.ExitUsageError
	}
	cfg, err := LoadAppConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	transformer, err := cgt.NewTransformer(c.exchange, cfg, cgt.NewRateProvider())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	var inputs []io.Reader
	for _, name := range f.Args() {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		inputs = append(inputs, file)
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

	if err := transformer.Transform(out, inputs...); err != nil {
		fmt.Fprintf(os.Stderr, "Error transforming logs: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
