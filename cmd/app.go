// Package cmd implements the CLI application to compute capital gains from
// transaction logs.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/cgt"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "reports")
	c.Register(&eventsCmd{}, "reports")
	c.Register(&holdingsCmd{}, "reports")

	c.Register(&transformCmd{}, "logs")
	c.Register(&ratesCmd{}, "logs")

	c.Register(&topicCmd{}, "documentation")
}

// CommandNames returns the registered subcommand names, for shell completion.
func CommandNames() []string {
	return []string{"report", "events", "holdings", "transform", "rates", "topic",
		"help", "flags", "commands"}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the configuration file (JSON). Defaults apply when empty.")
var orderFlag = flag.String("order", "", "Override the lot accounting order (fifo, lifo)")

// LoadAppConfig loads the run configuration, applying the global flag overrides.
func LoadAppConfig() (cgt.Config, error) {
	cfg := cgt.DefaultConfig()
	if *configFile != "" {
		loaded, err := cgt.LoadConfig(*configFile)
		if err != nil {
			return cgt.Config{}, err
		}
		cfg = loaded
	}
	if *orderFlag != "" {
		order, err := cgt.ParseAccountingOrder(*orderFlag)
		if err != nil {
			return cgt.Config{}, err
		}
		cfg.Order = order
	}
	return cfg, cfg.Validate()
}

// LoadTransactions reads every transaction CSV, merges them, and sorts the
// result chronologically.
func LoadTransactions(cfg cgt.Config, files []string) ([]cgt.Transaction, error) {
	var txs []cgt.Transaction
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("cannot open transaction log %q: %w", file, err)
		}
		imported, err := cgt.ImportTransactions(f, cfg)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("cannot read transaction log %q: %w", file, err)
		}
		txs = append(txs, imported...)
	}
	cgt.SortTransactions(txs)
	return txs, nil
}

// processLedger runs the full transaction stream through a fresh ledger.
func processLedger(cfg cgt.Config, files []string) (*cgt.Ledger, error) {
	txs, err := LoadTransactions(cfg, files)
	if err != nil {
		return nil, err
	}
	ledger := cgt.NewLedger(cfg)
	if err := ledger.ProcessAll(txs); err != nil {
		return nil, err
	}
	return ledger, nil
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when rendering fails (e.g. output is not a terminal).
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
