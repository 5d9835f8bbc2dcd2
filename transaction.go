package cgt

import (
	"fmt"
	"time"

	"github.com/etnz/cgt/date"
)

// Transaction is an immutable, validated record of one economic event.
// It is only constructed through NewTransaction (or the CSV importer), and
// components that keep a reference to one store a Clone, never the caller's
// value.
type Transaction struct {
	Time      time.Time
	Operation Operation
	Pair      string              // trading pair symbol for buy/sell, empty otherwise
	Amounts   map[string]Quantity // symbol -> non-negative quantity moved
	Fees      map[string]Quantity // symbol -> fee paid, denominated in that symbol
	Exchange  string
	Notes     string
}

// NewTransaction builds a validated transaction. A zero timestamp or a
// negative amount is ErrMalformedTransaction.
func NewTransaction(on time.Time, op Operation, pair string, amounts, fees map[string]Quantity, notes string) (Transaction, error) {
	if on.IsZero() {
		return Transaction{}, fmt.Errorf("%w: missing timestamp (operation %s)", ErrMalformedTransaction, op)
	}
	t := Transaction{Time: on, Operation: op, Pair: pair, Notes: notes}
	t.Amounts = make(map[string]Quantity, len(amounts))
	for symbol, q := range amounts {
		if q.IsNegative() {
			return Transaction{}, fmt.Errorf("%w: negative amount %s %s on %s", ErrMalformedTransaction, q, symbol, on)
		}
		t.Amounts[symbol] = q
	}
	t.Fees = make(map[string]Quantity, len(fees))
	for symbol, q := range fees {
		if q.IsNegative() {
			return Transaction{}, fmt.Errorf("%w: negative fee %s %s on %s", ErrMalformedTransaction, q, symbol, on)
		}
		t.Fees[symbol] = q
	}
	return t, nil
}

// Clone returns a value snapshot of the transaction. Lots and gain/loss events
// own clones so later mutation elsewhere can never change recorded history.
func (t Transaction) Clone() Transaction {
	c := t
	c.Amounts = make(map[string]Quantity, len(t.Amounts))
	for symbol, q := range t.Amounts {
		c.Amounts[symbol] = q
	}
	c.Fees = make(map[string]Quantity, len(t.Fees))
	for symbol, q := range t.Fees {
		c.Fees[symbol] = q
	}
	return c
}

// Amount returns the quantity moved for a symbol, zero if absent.
func (t Transaction) Amount(symbol string) Quantity { return t.Amounts[symbol] }

// Fee returns the fee paid in a symbol, zero if absent.
func (t Transaction) Fee(symbol string) Quantity { return t.Fees[symbol] }

// When returns the day the transaction occurred.
func (t Transaction) When() date.Date { return date.FromTime(t.Time) }

// FinancialYear returns the financial year the transaction belongs to.
func (t Transaction) FinancialYear(cfg Config) int {
	return t.When().FinancialYear(cfg.FYStartMonth)
}

// Fiat returns the local-fiat amount moved in this transaction.
func (t Transaction) Fiat(cfg Config) Money {
	return M(t.Amount(cfg.LocalFiat).Decimal(), cfg.CurrencyCode())
}

// FiatFee returns the fee paid in the local fiat.
func (t Transaction) FiatFee(cfg Config) Money {
	return M(t.Fee(cfg.LocalFiat).Decimal(), cfg.CurrencyCode())
}

// Decompose resolves the trade's pair into the disposed and acquired symbols.
// A sell disposes the base and acquires the quote; a buy is the reverse.
// Only meaningful for trades; an unknown or missing pair is ErrUnknownPair.
func (t Transaction) Decompose(cfg Config) (disposed, acquired string, err error) {
	if !t.Operation.IsTrade() {
		return "", "", nil
	}
	pair, ok := cfg.Pairs[t.Pair]
	if !ok {
		return "", "", fmt.Errorf("%w: %q on %s", ErrUnknownPair, t.Pair, t.When())
	}
	if t.Operation == Buy {
		return pair.Quote, pair.Base, nil
	}
	return pair.Base, pair.Quote, nil
}

// Volume returns the principal volume of the transaction for reporting: the
// base-asset amount for trades, otherwise the first positive tracked-asset
// amount, falling back to the first positive fiat amount.
func (t Transaction) Volume(cfg Config) (Quantity, bool) {
	if t.Operation.IsTrade() {
		if pair, ok := cfg.Pairs[t.Pair]; ok {
			return t.Amount(pair.Base), true
		}
		return Quantity{}, false
	}
	for _, symbol := range cfg.Assets {
		if q := t.Amount(symbol); q.IsPositive() {
			return q, true
		}
	}
	for _, symbol := range cfg.Fiats {
		if q := t.Amount(symbol); q.IsPositive() {
			return q, true
		}
	}
	return Quantity{}, false
}

// Secondary returns the amount moved in the first non-local fiat (the
// "secondary currency" column of the export format).
func (t Transaction) Secondary(cfg Config) Quantity {
	for _, symbol := range cfg.Fiats {
		if symbol != cfg.LocalFiat {
			return t.Amount(symbol)
		}
	}
	return Quantity{}
}

// InKindFee returns the first tracked asset in which a fee was paid, with its
// volume. Trades exclude the traded pair's own sides: a fee paid in the
// disposed or acquired asset is already part of the trade's flows.
func (t Transaction) InKindFee(cfg Config) (asset string, volume Quantity, ok bool) {
	disposed, acquired, _ := t.Decompose(cfg)
	for _, symbol := range cfg.Assets {
		if symbol == disposed || symbol == acquired {
			continue
		}
		if q := t.Fee(symbol); q.IsPositive() {
			return symbol, q, true
		}
	}
	return "", Quantity{}, false
}

// FeeDisposal builds the synthetic sell that realizes an in-kind fee against
// the fee asset's own lot queue. The proceeds are the fee's local-fiat value.
func (t Transaction) FeeDisposal(cfg Config) (Transaction, bool) {
	asset, volume, ok := t.InKindFee(cfg)
	if !ok {
		return Transaction{}, false
	}
	mocked := t.Clone()
	mocked.Operation = Sell
	mocked.Pair = asset + cfg.LocalFiat
	mocked.Amounts[asset] = volume
	mocked.Amounts[cfg.LocalFiat] = t.Fee(cfg.LocalFiat)
	delete(mocked.Fees, asset)
	delete(mocked.Fees, cfg.LocalFiat)
	return mocked, true
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s", t.Time.Format(time.DateTime), t.Operation, t.Pair)
}
