package cgt

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// this file handles the canonical CSV formats: the combined transaction log
// read by the engine, and the line-oriented gain/loss event export.

// parseLayouts are tried in order when reading a transaction timestamp.
var parseLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// parseTime parses a transaction timestamp trying each supported layout.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time: %q", s)
}

var numberPrefix = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// parseQuantity parses a numeric CSV cell tolerantly: empty is zero,
// thousands separators are stripped, and trailing junk after a leading
// number is ignored.
func parseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return Quantity{}, nil
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return Q(d), nil
	}
	if m := numberPrefix.FindString(s); m != "" {
		d, err := decimal.NewFromString(m)
		if err == nil {
			return Q(d), nil
		}
	}
	return Quantity{}, fmt.Errorf("unable to parse number: %q", s)
}

// Columns returns the canonical CSV header for a configuration: metadata
// columns, one amount column per symbol, one fee column per symbol, comments.
func Columns(cfg Config) []string {
	cols := []string{"Type", "Exchange", "Datetime", "Operation", "Pair"}
	for _, symbol := range append(append([]string{}, cfg.Assets...), cfg.Fiats...) {
		cols = append(cols, strings.ToUpper(symbol))
	}
	for _, symbol := range append(append([]string{}, cfg.Assets...), cfg.Fiats...) {
		cols = append(cols, "Fee("+strings.ToUpper(symbol)+")")
	}
	return append(cols, "Comments")
}

var feeColumn = regexp.MustCompile(`^Fee\((.+)\)$`)

// ImportTransactions reads the canonical combined CSV. Rows with an operation
// outside the vocabulary are skipped with a diagnostic; rows that fail
// validation (missing timestamp, negative amount) are skipped too, leaving
// the caller a complete slice of valid transactions in file order.
func ImportTransactions(r io.Reader, cfg Config) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read transaction CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var txs []Transaction
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("cannot read transaction CSV line %d: %w", line, err)
		}
		tx, err := importRow(header, record, cfg)
		if err != nil {
			log.Printf("skipping line %d: %v", line, err)
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func importRow(header, record []string, cfg Config) (Transaction, error) {
	var (
		when      time.Time
		operation Operation
		pair      string
		exchange  string
		notes     string
	)
	amounts := make(map[string]Quantity)
	fees := make(map[string]Quantity)

	opSeen := false
	for i, column := range header {
		if i >= len(record) {
			break
		}
		cell := strings.TrimSpace(record[i])
		switch column {
		case "Datetime":
			if cell == "" {
				return Transaction{}, fmt.Errorf("%w: missing timestamp", ErrMalformedTransaction)
			}
			t, err := parseTime(cell)
			if err != nil {
				return Transaction{}, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
			}
			when = t
		case "Operation":
			op, err := ParseOperation(strings.ToLower(cell))
			if err != nil {
				return Transaction{}, err
			}
			operation = op
			opSeen = true
		case "Pair":
			pair = strings.ToLower(cell)
		case "Exchange":
			exchange = cell
		case "Comments":
			notes = cell
		case "Type":
			// source row kind, informational only
		default:
			if m := feeColumn.FindStringSubmatch(column); m != nil {
				symbol := strings.ToLower(m[1])
				if cfg.IsAsset(symbol) || cfg.IsFiat(symbol) {
					q, err := parseQuantity(cell)
					if err != nil {
						return Transaction{}, fmt.Errorf("%w: column %s: %v", ErrMalformedTransaction, column, err)
					}
					if !q.IsZero() {
						fees[symbol] = q
					}
				}
				continue
			}
			symbol := strings.ToLower(column)
			if cfg.IsAsset(symbol) || cfg.IsFiat(symbol) {
				q, err := parseQuantity(cell)
				if err != nil {
					return Transaction{}, fmt.Errorf("%w: column %s: %v", ErrMalformedTransaction, column, err)
				}
				if !q.IsZero() {
					amounts[symbol] = q
				}
			}
			// rate and other unknown columns are ignored
		}
	}
	if !opSeen {
		return Transaction{}, fmt.Errorf("%w: missing operation", ErrMalformedTransaction)
	}
	tx, err := NewTransaction(when, operation, pair, amounts, fees, notes)
	if err != nil {
		return Transaction{}, err
	}
	tx.Exchange = exchange
	return tx, nil
}

// SortTransactions stably orders transactions by timestamp, preserving file
// order for equal timestamps.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Time.Before(txs[j].Time) })
}

// EventColumns is the header of the gain/loss event export, matching Row.
var EventColumns = []string{
	"gain_or_loss",
	"disposal_date",
	"amount",
	"discountable",
	"description",
	"acquisition.amount",
	"acquisition.volume",
	"acquisition.date",
	"acquisition.operation",
	"acquisition.pair",
	"acquisition.secondary",
	"lot.asset",
	"lot.cost_basis",
	"lot.initial_volume",
	"lot.unit_price",
	"lot.remaining_volume",
	"matched_volume",
	"disposal.amount",
	"disposal.volume",
	"disposal.date",
	"disposal.operation",
	"disposal.pair",
	"disposal.secondary",
}

// ExportGainLoss writes the events as a line-oriented CSV, one row per event
// in the given order.
func ExportGainLoss(w io.Writer, cfg Config, events []GainLoss) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EventColumns); err != nil {
		return fmt.Errorf("cannot write event CSV header: %w", err)
	}
	for _, ev := range events {
		if err := cw.Write(ev.Row(cfg)); err != nil {
			return fmt.Errorf("cannot write event CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
