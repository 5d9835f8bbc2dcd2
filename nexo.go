package cgt

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// NexoTransformer converts Nexo account logs. Nexo values every movement in
// USD, so the configuration must track USD as a fiat; interest payouts
// become two rows, an income event and an acquisition at the payout
// valuation, so the later disposal has a cost base.
type NexoTransformer struct {
	cfg   Config
	rates *RateProvider
}

func (t *NexoTransformer) Transform(out io.Writer, inputs ...io.Reader) error {
	if !t.cfg.IsFiat("usd") {
		return fmt.Errorf("nexo logs are valued in USD: add usd to the configured fiats")
	}

	var rows []row
	for _, in := range inputs {
		_, records, err := readCells(in, "Nexo")
		if err != nil {
			return err
		}
		for _, cells := range records {
			converted, err := t.convert(cells)
			if err != nil {
				return err
			}
			rows = append(rows, converted...)
		}
	}
	sortRows(rows)

	if err := backfillLocalFiat(t.cfg, t.rates, rows); err != nil {
		return err
	}
	return writeCanonical(out, t.cfg, rows)
}

// convert maps one Nexo record to canonical rows. Interest payouts produce
// two rows; internal term-deposit moves produce none.
//
// Nexo columns: Transaction, Type, Input Currency, Input Amount,
// Output Currency, Output Amount, USD Equivalent, Fee, Fee Currency,
// Details, Date / Time (UTC).
func (t *NexoTransformer) convert(cells map[string]string) ([]row, error) {
	kind := cells["Type"]
	symbol := strings.ToLower(cells["Output Currency"])
	comments := "Transaction: " + cells["Transaction"] + " | " + cells["Details"]

	for _, cur := range []string{strings.ToLower(cells["Input Currency"]), symbol} {
		if !t.cfg.IsAsset(cur) && !t.cfg.IsFiat(cur) {
			return nil, fmt.Errorf("no configuration for Nexo currency %q", cur)
		}
	}

	switch kind {
	case "Top up Crypto", "Withdrawal":
		r := row{
			"Type":     kind,
			"Exchange": "Nexo",
			"Datetime": cells["Date / Time (UTC)"],
			"Comments": comments,
		}
		if kind == "Top up Crypto" {
			r["Operation"] = "deposit"
		} else {
			r["Operation"] = "withdrawal"
		}
		r[strings.ToUpper(symbol)] = cells["Output Amount"]
		// Nexo writes '-' for no fee.
		fee, feeSym := cells["Fee"], strings.ToLower(cells["Fee Currency"])
		if fee != "" && fee != "-" && feeSym != "" && feeSym != "-" {
			if t.cfg.IsAsset(feeSym) || t.cfg.IsFiat(feeSym) {
				r["Fee("+strings.ToUpper(feeSym)+")"] = fee
			}
		}
		return []row{r}, nil
	case "Interest", "Fixed Term Interest":
		return t.interest(cells["Date / Time (UTC)"], symbol, cells["Output Amount"], cells["USD Equivalent"], comments)
	case "Locking Term Deposit", "Unlocking Term Deposit":
		log.Printf("skipping Nexo internal transfer %s for %s", kind, cells["Transaction"])
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported Nexo row kind %q", kind)
	}
}

// interest turns one interest payout into two rows: the USD value is income
// when it accrues, and the received volume opens a lot at that valuation.
func (t *NexoTransformer) interest(when, symbol, amount, usdEquivalent, comments string) ([]row, error) {
	volume, err := parseQuantity(amount)
	if err != nil || !volume.IsPositive() {
		return nil, fmt.Errorf("interest volume must be positive: %s", comments)
	}
	value, err := parseQuantity(strings.ReplaceAll(usdEquivalent, "$", ""))
	if err != nil || !value.IsPositive() {
		log.Printf("skipping Nexo interest with no USD valuation: %s", comments)
		return nil, nil
	}

	column := strings.ToUpper(symbol)
	gain := row{
		"Type":      "Interest",
		"Exchange":  "Nexo",
		"Datetime":  when,
		"Operation": "gain",
		column:      amount,
		"USD":       value.String(),
		"Comments":  comments + " [GAIN]",
	}
	buy := row{
		"Type":      "Interest",
		"Exchange":  "Nexo",
		"Datetime":  when,
		"Operation": "buy",
		"Pair":      symbol + "usd",
		column:      amount,
		"USD":       value.String(),
		"Comments":  comments + " [BUY]",
	}
	return []row{gain, buy}, nil
}
