package cgt

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// IndependentReserveTransformer converts Independent Reserve rollup logs.
// The rollup export splits one economic transaction over several rows (the
// two trade legs, brokerage, GST, withdrawal fees), so rows are regrouped by
// order guid or blockchain transaction before conversion. The export is
// already denominated in the account currency; no backfill is needed.
type IndependentReserveTransformer struct {
	cfg Config
}

func (t *IndependentReserveTransformer) Transform(out io.Writer, inputs ...io.Reader) error {
	var rows []row
	for _, in := range inputs {
		converted, err := t.read(in)
		if err != nil {
			return err
		}
		rows = append(rows, converted...)
	}
	sortRows(rows)
	return writeCanonical(out, t.cfg, rows)
}

func (t *IndependentReserveTransformer) read(in io.Reader) ([]row, error) {
	header, records, err := readCells(skipSepLine(in), "Independent Reserve")
	if err != nil {
		return nil, err
	}
	if err := checkRollup(header); err != nil {
		return nil, err
	}

	var rows []row
	for _, group := range groupRecords(records) {
		r, ok, err := t.convertGroup(group)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, r)
		}
	}
	return rows, nil
}

// skipSepLine consumes the Excel "sep=," hint line some exports start with.
func skipSepLine(in io.Reader) io.Reader {
	br := bufio.NewReader(in)
	if peek, err := br.Peek(4); err == nil && string(peek) == "sep=" {
		br.ReadString('\n')
	}
	return br
}

// checkRollup verifies the export is the rollup format. The breakdown format
// reports per-settlement rows that cannot be regrouped reliably.
func checkRollup(header []string) error {
	for _, col := range header {
		switch col {
		case "Settlement Date":
			return nil
		case "Settled":
			return fmt.Errorf("unsupported Independent Reserve log format: export using the rollup format")
		}
	}
	return fmt.Errorf("unable to determine Independent Reserve log format")
}

// groupRecords regroups related rows: the legs and fees of one order share
// an order guid, on-chain movements share a blockchain transaction, anything
// else stands alone. Groups keep the order of first appearance.
func groupRecords(records []map[string]string) [][]map[string]string {
	type key struct{ kind, id string }
	var groups [][]map[string]string
	index := make(map[key]int)
	for _, c := range records {
		var k key
		switch {
		case c["Order Guid"] != "":
			k = key{"order", c["Order Guid"]}
		case c["BlockchainTransaction"] != "":
			k = key{"blockchain", c["BlockchainTransaction"]}
		default:
			groups = append(groups, []map[string]string{c})
			continue
		}
		if i, ok := index[k]; ok {
			groups[i] = append(groups[i], c)
		} else {
			index[k] = len(groups)
			groups = append(groups, []map[string]string{c})
		}
	}
	return groups
}

func (t *IndependentReserveTransformer) convertGroup(group []map[string]string) (row, bool, error) {
	r := row{
		"Exchange": "IndependentReserve",
		"Datetime": group[0]["Date"],
	}
	kinds := make(map[string]bool, len(group))
	for _, c := range group {
		kinds[c["Type"]] = true
	}
	switch {
	case kinds["Trade"]:
		return t.convertTrade(group, r)
	case kinds["Withdrawal"]:
		return t.convertWithdrawal(group, r)
	case len(group) == 1:
		return t.convertSingle(group[0], r)
	default:
		return nil, false, fmt.Errorf("unexpected Independent Reserve row group: %v", group)
	}
}

// convertTrade merges the two trade legs with their brokerage and GST rows.
// The credited leg is what was bought, the debited leg what was paid; which
// side is the tracked asset decides buy versus sell.
func (t *IndependentReserveTransformer) convertTrade(group []map[string]string, r row) (row, bool, error) {
	var credit, debit map[string]string
	legs := 0
	for _, c := range group {
		if c["Type"] != "Trade" {
			continue
		}
		legs++
		if q, err := parseQuantity(c["Credit"]); err == nil && q.IsPositive() {
			credit = c
		}
		if q, err := parseQuantity(c["Debit"]); err == nil && q.IsPositive() {
			debit = c
		}
	}
	if legs != 2 {
		log.Printf("skipping Independent Reserve order with %d trade legs, want 2", legs)
		return nil, false, nil
	}
	if credit == nil || debit == nil {
		log.Printf("skipping Independent Reserve order without a credited and a debited leg")
		return nil, false, nil
	}

	creditSym := strings.ToLower(credit["Currency"])
	debitSym := strings.ToLower(debit["Currency"])
	r[strings.ToUpper(creditSym)] = credit["Credit"]
	r[strings.ToUpper(debitSym)] = debit["Debit"]
	switch {
	case t.cfg.IsAsset(creditSym):
		r["Operation"], r["Pair"] = "buy", creditSym+debitSym
	case t.cfg.IsAsset(debitSym):
		r["Operation"], r["Pair"] = "sell", debitSym+creditSym
	default:
		log.Printf("skipping Independent Reserve trade with no tracked asset: %s for %s",
			credit["Currency"], debit["Currency"])
		return nil, false, nil
	}

	// Brokerage and GST make up one fee, summed per currency.
	fees := make(map[string]decimal.Decimal)
	for _, c := range group {
		if c["Type"] != "Brokerage" && c["Type"] != "GST" {
			continue
		}
		q, err := parseQuantity(c["Debit"])
		if err != nil || !q.IsPositive() {
			continue
		}
		sym := strings.ToUpper(c["Currency"])
		fees[sym] = fees[sym].Add(q.Decimal())
	}
	for sym, total := range fees {
		r["Fee("+sym+")"] = total.String()
	}

	r["Type"] = "Market"
	r["Comments"] = irComments(group[0]["Comment"], "Order Guid", group[0]["Order Guid"])
	return r, true, nil
}

// convertWithdrawal merges a withdrawal row with its fee row.
func (t *IndependentReserveTransformer) convertWithdrawal(group []map[string]string, r row) (row, bool, error) {
	if len(group) != 2 {
		return nil, false, fmt.Errorf("independent reserve withdrawal group has %d rows, want amount and fee", len(group))
	}
	symbol := strings.ToLower(group[0]["Currency"])
	if symbol == "" || symbol != strings.ToLower(group[1]["Currency"]) {
		return nil, false, fmt.Errorf("independent reserve withdrawal group mixes currencies")
	}
	var amount, fee map[string]string
	for _, c := range group {
		switch c["Type"] {
		case "Withdrawal":
			amount = c
		case "Withdrawal Fee":
			fee = c
		default:
			return nil, false, fmt.Errorf("unexpected %q row in Independent Reserve withdrawal group", c["Type"])
		}
	}
	if amount == nil || fee == nil {
		return nil, false, fmt.Errorf("independent reserve withdrawal group misses the amount or the fee row")
	}

	r["Operation"], r["Type"] = "withdrawal", "Withdrawal"
	r[strings.ToUpper(symbol)] = amount["Debit"]
	r["Fee("+strings.ToUpper(symbol)+")"] = fee["Debit"]
	r["Comments"] = irComments(group[0]["Comment"], "BlockchainTransaction", amount["BlockchainTransaction"])
	return r, true, nil
}

// convertSingle handles a standalone credit row, typically a deposit.
func (t *IndependentReserveTransformer) convertSingle(c map[string]string, r row) (row, bool, error) {
	if q, err := parseQuantity(c["Debit"]); err == nil && q.IsPositive() {
		return nil, false, fmt.Errorf("unexpected debit on standalone Independent Reserve %s row", c["Type"])
	}
	r["Operation"] = strings.ToLower(c["Type"])
	r["Type"] = c["Type"]
	r[strings.ToUpper(c["Currency"])] = c["Credit"]
	r["Comments"] = irComments(c["Comment"], "BlockchainTransaction", c["BlockchainTransaction"])
	return r, true, nil
}

// irComments joins the export comment with a reference field, when present.
func irComments(comment, label, ref string) string {
	switch {
	case ref == "":
		return comment
	case comment == "":
		return label + ": " + ref
	default:
		return comment + ", " + label + ": " + ref
	}
}
