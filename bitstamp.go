package cgt

import (
	"io"
	"log"
	"strings"
)

// BitstampTransformer converts Bitstamp account logs. Bitstamp reports
// values in USD only, so when the local fiat differs the transformer
// back-fills local-fiat amounts and fees from the daily exchange rate.
type BitstampTransformer struct {
	cfg   Config
	rates *RateProvider
}

func (t *BitstampTransformer) Transform(out io.Writer, inputs ...io.Reader) error {
	var rows []row
	for _, in := range inputs {
		_, records, err := readCells(in, "Bitstamp")
		if err != nil {
			return err
		}
		for _, cells := range records {
			if r, ok := t.convert(cells); ok {
				rows = append(rows, r)
			}
		}
	}
	sortRows(rows)

	if err := backfillLocalFiat(t.cfg, t.rates, rows); err != nil {
		return err
	}
	return writeCanonical(out, t.cfg, rows)
}

// convert maps one Bitstamp record to a canonical row, skipping the row
// kinds (staking, sub-account moves) that the engine has no operation for.
//
// Bitstamp columns: ID, Account, Type, Subtype, Datetime, Amount,
// Amount currency, Value, Value currency, Rate, Rate currency, Fee,
// Fee currency, Order ID.
func (t *BitstampTransformer) convert(cells map[string]string) (row, bool) {
	kind, subtype := cells["Type"], cells["Subtype"]

	r := row{
		"Type":     kind,
		"Exchange": "Bitstamp",
		"Datetime": cells["Datetime"],
	}
	if id := cells["Order ID"]; id != "" {
		r["Comments"] = "Order ID: " + id
	}

	amountSym := strings.ToLower(cells["Amount currency"])
	valueSym := strings.ToLower(cells["Value currency"])
	feeSym := strings.ToLower(cells["Fee currency"])

	switch {
	case kind == "Market" && (subtype == "Buy" || subtype == "Sell"):
		r["Operation"] = strings.ToLower(subtype)
		if valueSym != "" {
			r["Pair"] = amountSym + valueSym
		}
		if t.cfg.IsAsset(amountSym) {
			r[strings.ToUpper(amountSym)] = cells["Amount"]
		}
		if t.cfg.IsFiat(valueSym) {
			r[strings.ToUpper(valueSym)] = cells["Value"]
		}
	case kind == "Deposit":
		r["Operation"] = "deposit"
		if t.cfg.IsAsset(amountSym) || t.cfg.IsFiat(amountSym) {
			r[strings.ToUpper(amountSym)] = cells["Amount"]
		}
	case kind == "Withdrawal":
		r["Operation"] = "withdrawal"
		if t.cfg.IsAsset(amountSym) || t.cfg.IsFiat(amountSym) {
			r[strings.ToUpper(amountSym)] = cells["Amount"]
		}
	default:
		log.Printf("skipping unsupported Bitstamp row kind %s/%s", kind, subtype)
		return nil, false
	}

	if fee := cells["Fee"]; fee != "" && (t.cfg.IsAsset(feeSym) || t.cfg.IsFiat(feeSym)) {
		r["Fee("+strings.ToUpper(feeSym)+")"] = fee
	}
	return r, true
}
