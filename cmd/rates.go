package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/cgt"
	"github.com/etnz/cgt/date"
	"github.com/google/subcommands"
)

// ratesCmd holds the flags for the 'rates' subcommand.
type ratesCmd struct {
	pair  string
	start string
	end   string
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "daily fiat exchange rates for a date range" }
func (*ratesCmd) Usage() string {
	return `cgt rates -pair <audusd> -s <date> [-d <date>]

  Queries the daily exchange rate for a fiat pair over a date range, filling
  market gaps forward, and displays one rate per day.
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.pair, "pair", "audusd", "Fiat pair to query, six letters")
	f.StringVar(&c.start, "s", "", "Start date of the range (2006-01-02)")
	f.StringVar(&c.end, "d", date.Today().String(), "End date of the range (2006-01-02)")
}

func (c *ratesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.start == "" {
		fmt.Fprintln(os.Stderr, "missing -s start date")
		return subcommands.ExitUsageError
	}
	start, err := date.Parse(c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitUsageError
	}
	end, err := date.Parse(c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}

	rates, err := cgt.NewRateProvider().Query(c.pair, start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying rates: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s from %s to %s\n\n", strings.ToUpper(c.pair), start, end)
	fmt.Fprintln(&b, "| Date | Rate |")
	fmt.Fprintln(&b, "|:---|---:|")
	for on := start; !on.After(end); on = on.Add(1) {
		if rate, ok := rates[on]; ok {
			fmt.Fprintf(&b, "| %s | %.4f |\n", on, rate)
		}
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
