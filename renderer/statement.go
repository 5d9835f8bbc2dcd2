// Package renderer builds markdown reports from annual statements and
// portfolios. Output is plain markdown, suitable for a terminal renderer or a
// file.
package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/cgt"
)

// StatementMarkdown renders the annual statement: the taxable summary, then
// every gain and loss event of the year.
func StatementMarkdown(s *cgt.Statement) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Financial Year %d\n\n", s.Year())

	fmt.Fprint(&b, "## Summary\n\n")
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Gross gains | %s |\n", s.GrossGains().SignedString())
	fmt.Fprintf(&b, "| Discountable gains | %s |\n", s.DiscountableGains().SignedString())
	fmt.Fprintf(&b, "| Non-discountable gains | %s |\n", s.NonDiscountableGains().SignedString())
	fmt.Fprintf(&b, "| Taxable gains | %s |\n", s.TaxableGains().SignedString())
	fmt.Fprintf(&b, "| Losses this year | %s |\n", s.ThisYearLosses().SignedString())
	if carried, ok := s.PreviousYearLoss(); ok {
		fmt.Fprintf(&b, "| Loss carried from previous year | %s |\n", carried.Amount.SignedString())
	}
	fmt.Fprintf(&b, "| **Net gain** | **%s** |\n\n", s.NetGain().SignedString())

	fmt.Fprint(&b, "## Gains\n\n")
	eventsTable(&b, s.Gains())

	fmt.Fprint(&b, "\n## Losses\n\n")
	eventsTable(&b, s.Losses())

	return b.String()
}

// eventsTable renders gain or loss events as one markdown table row each.
func eventsTable(b *strings.Builder, events []cgt.GainLoss) {
	if len(events) == 0 {
		fmt.Fprintln(b, "None.")
		return
	}
	fmt.Fprintln(b, "| Date | Event | Matched | Held Since | Amount | Discountable |")
	fmt.Fprintln(b, "|:---|:---|---:|:---|---:|:---:|")
	for _, ev := range events {
		when, label, matched, acquired := "", ev.Description, "", ""
		if !ev.Disposed.IsZero() {
			when = ev.Disposed.String()
		}
		if lot, ok := ev.Lot(); ok {
			label = strings.ToUpper(lot.Asset()) + " disposal"
			matched = ev.Matched.String()
			acquired = ev.Acquired.String()
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n",
			when, label, matched, acquired, ev.Amount.SignedString(), ev.DiscountLabel())
	}
}

// HoldingsMarkdown renders the remaining volume per asset and the open lots
// backing it.
func HoldingsMarkdown(cfg cgt.Config, p *cgt.Portfolio) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Holdings\n\n")
	fmt.Fprintln(&b, "| Asset | Volume |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, asset := range cfg.Assets {
		holding := p.Holding(asset)
		if holding.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s |\n", strings.ToUpper(asset), holding)
	}

	fmt.Fprint(&b, "\n## Open Lots\n\n")
	fmt.Fprintln(&b, "| Asset | Acquired | Initial | Remaining | Unit Price | Cost Basis |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|")
	for _, asset := range cfg.Assets {
		for _, lot := range p.Lots(asset) {
			if !lot.Remaining().IsPositive() {
				continue
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				strings.ToUpper(asset),
				lot.Acquisition().When(),
				lot.Initial(),
				lot.Remaining(),
				lot.UnitPrice(),
				lot.CostBasis(),
			)
		}
	}
	return b.String()
}
