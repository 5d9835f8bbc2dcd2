package cgt

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/etnz/cgt/date"
	"github.com/shopspring/decimal"
)

// this file holds the transformer registry and the plumbing shared by all
// exchange converters; each supported exchange lives in a sibling file.

// A Transformer converts one exchange's raw log files into canonical
// transaction rows, ready to merge into the combined log.
type Transformer interface {
	// Transform reads raw exchange logs and writes the canonical CSV.
	Transform(out io.Writer, inputs ...io.Reader) error
}

// NewTransformer returns the transformer for an exchange name.
func NewTransformer(exchange string, cfg Config, rates *RateProvider) (Transformer, error) {
	switch strings.ToLower(exchange) {
	case "bitstamp":
		return &BitstampTransformer{cfg: cfg, rates: rates}, nil
	case "exodus":
		return &ExodusTransformer{cfg: cfg, rates: rates}, nil
	case "nexo":
		return &NexoTransformer{cfg: cfg, rates: rates}, nil
	case "independentreserve", "independent-reserve":
		return &IndependentReserveTransformer{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("no transformer for exchange %q", exchange)
	}
}

// row is one canonical CSV row under construction, keyed by column name.
type row map[string]string

// readCells reads a raw exchange CSV into one map per record, keyed by the
// trimmed header names, and returns the header alongside.
func readCells(in io.Reader, exchange string) ([]string, []map[string]string, error) {
	cr := csv.NewReader(in)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read %s CSV header: %w", exchange, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []map[string]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("cannot read %s CSV row: %w", exchange, err)
		}
		cells := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				cells[col] = strings.TrimSpace(record[i])
			}
		}
		records = append(records, cells)
	}
	return header, records, nil
}

// sortRows stably orders canonical rows by timestamp, preserving the
// conversion order for equal timestamps.
func sortRows(rows []row) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, erri := parseTime(rows[i]["Datetime"])
		tj, errj := parseTime(rows[j]["Datetime"])
		if erri != nil || errj != nil {
			return rows[i]["Datetime"] < rows[j]["Datetime"]
		}
		return ti.Before(tj)
	})
}

// writeCanonical writes the rows as the canonical combined CSV.
func writeCanonical(out io.Writer, cfg Config, rows []row) error {
	columns := Columns(cfg)
	cw := csv.NewWriter(out)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("cannot write canonical CSV header: %w", err)
	}
	record := make([]string, len(columns))
	for _, r := range rows {
		for i, col := range columns {
			record[i] = r[col]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("cannot write canonical CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// backfillLocalFiat fills local-fiat amounts and fees from USD values using
// the daily exchange rate. A day with no published rate leaves the row
// untouched with a diagnostic.
func backfillLocalFiat(cfg Config, rates *RateProvider, rows []row) error {
	local := strings.ToLower(cfg.LocalFiat)
	if local == "usd" || len(rows) == 0 || rates == nil {
		return nil
	}

	first, err := parseTime(rows[0]["Datetime"])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
	}
	last, err := parseTime(rows[len(rows)-1]["Datetime"])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
	}
	pair := local + "usd"
	dayrate, err := rates.Query(pair, date.FromTime(first), date.FromTime(last))
	if err != nil {
		return err
	}

	localCol := strings.ToUpper(local)
	for _, r := range rows {
		when, err := parseTime(r["Datetime"])
		if err != nil {
			continue
		}
		rate, ok := dayrate[date.FromTime(when)]
		if !ok || rate <= 0 {
			log.Printf("missing %s rate for %s, cannot convert USD to %s", pair, date.FromTime(when), localCol)
			continue
		}
		fill(r, "USD", localCol, rate)
		fill(r, "Fee(USD)", "Fee("+localCol+")", rate)
	}
	return nil
}

// fill converts one USD cell to the local fiat when the local cell is empty.
func fill(r row, usdCol, localCol string, rate float64) {
	usd, err := parseQuantity(r[usdCol])
	if err != nil || !usd.IsPositive() {
		return
	}
	if existing, err := parseQuantity(r[localCol]); err == nil && !existing.IsZero() {
		return
	}
	converted := usd.Decimal().Div(decimal.NewFromFloat(rate)).Round(2)
	r[localCol] = converted.String()
}
