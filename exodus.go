package cgt

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// ExodusTransformer converts Exodus wallet exports. Exodus logs plain wallet
// movements only (deposits and withdrawals, with negative outgoing amounts);
// the per-row provenance fields are kept in the comments column.
type ExodusTransformer struct {
	cfg   Config
	rates *RateProvider
}

func (t *ExodusTransformer) Transform(out io.Writer, inputs ...io.Reader) error {
	var rows []row
	for _, in := range inputs {
		_, records, err := readCells(in, "Exodus")
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

// convert maps one Exodus record to a canonical row.
//
// Exodus columns: DATE, TYPE, FROMPORTFOLIO, TOPORTFOLIO, OUTAMOUNT,
// OUTCURRENCY, FEEAMOUNT, FEECURRENCY, FROMADDRESS, TOADDRESS, OUTTXID,
// OUTTXURL, INAMOUNT, INCURRENCY, INTXID, INTXURL, ORDERID, PERSONALNOTE.
func (t *ExodusTransformer) convert(cells map[string]string) (row, bool) {
	kind := strings.ToLower(cells["TYPE"])
	r := row{
		"Exchange": "Exodus",
		"Datetime": cells["DATE"],
	}

	var raw, symbol string
	switch kind {
	case "deposit":
		raw, symbol = cells["INAMOUNT"], strings.ToLower(cells["INCURRENCY"])
		r["Type"], r["Operation"] = "Deposit", "deposit"
	case "withdrawal":
		raw, symbol = cells["OUTAMOUNT"], strings.ToLower(cells["OUTCURRENCY"])
		r["Type"], r["Operation"] = "Withdrawal", "withdrawal"
	default:
		log.Printf("skipping unsupported Exodus row kind %q", cells["TYPE"])
		return nil, false
	}
	if raw == "" || symbol == "" {
		log.Printf("skipping Exodus %s with missing amount or currency", kind)
		return nil, false
	}
	if !t.cfg.IsAsset(symbol) && !t.cfg.IsFiat(symbol) {
		log.Printf("skipping Exodus %s in untracked currency %q", kind, symbol)
		return nil, false
	}
	// Exodus reports outgoing amounts as negative.
	r[strings.ToUpper(symbol)] = strings.TrimPrefix(raw, "-")

	if kind == "withdrawal" {
		fee := strings.TrimPrefix(cells["FEEAMOUNT"], "-")
		feeSym := strings.ToLower(cells["FEECURRENCY"])
		switch {
		case fee == "" || feeSym == "":
			// no fee on this movement
		case t.cfg.IsAsset(feeSym) || t.cfg.IsFiat(feeSym):
			r["Fee("+strings.ToUpper(feeSym)+")"] = fee
		default:
			log.Printf("ignoring Exodus fee in untracked currency %q", feeSym)
		}
	}

	parts := []string{fmt.Sprintf("Exodus %s: %s %s", kind, raw, strings.ToUpper(symbol))}
	parts = append(parts, exodusDetails(cells)...)
	r["Comments"] = strings.Join(parts, "; ")
	return r, true
}

// exodusDetails collects the provenance fields worth keeping in the comments.
func exodusDetails(cells map[string]string) []string {
	var parts []string
	for _, field := range []struct{ column, label string }{
		{"FROMPORTFOLIO", "From"},
		{"TOPORTFOLIO", "To"},
		{"FROMADDRESS", "FromAddr"},
		{"TOADDRESS", "ToAddr"},
		{"OUTTXURL", "OutTx"},
		{"INTXURL", "InTx"},
		{"ORDERID", "OrderID"},
		{"PERSONALNOTE", "Note"},
	} {
		if v := cells[field.column]; v != "" {
			parts = append(parts, field.label+": "+v)
		}
	}
	return parts
}
