package cgt

import (
	"fmt"
)

// Ledger drives an ordered transaction stream into per-financial-year
// statements. On the first transaction of a new year it closes the previous
// statement: the fee loss is created, the portfolio is deep-copied as the new
// year's starting state, and a negative net result is carried as the new
// year's previous-year loss.
//
// The ledger does not reorder anything; feeding it transactions out of
// chronological order is the caller's bug.
type Ledger struct {
	cfg        Config
	statements []*Statement // ordered by financial year
}

// NewLedger creates a ledger for the run configuration.
func NewLedger(cfg Config) *Ledger {
	return &Ledger{cfg: cfg}
}

// Process routes one transaction to its financial year's statement, creating
// the statement and rolling the previous year over if needed.
func (l *Ledger) Process(tx Transaction) error {
	year := tx.FinancialYear(l.cfg)

	if len(l.statements) == 0 {
		l.statements = append(l.statements, NewStatement(l.cfg, year, nil, nil))
	}
	current := l.statements[len(l.statements)-1]

	switch {
	case year == current.year:
		// fall through to Process below
	case year > current.year:
		if err := current.CreateFeeLoss(); err != nil {
			return err
		}
		next := NewStatement(l.cfg, year, current.portfolio.Clone(), current.CarriedLosses())
		l.statements = append(l.statements, next)
		current = next
	default:
		return fmt.Errorf("%w: transaction on %s belongs to financial year %d but year %d is already open",
			ErrMalformedTransaction, tx.When(), year, current.year)
	}

	return current.Process(tx)
}

// ProcessAll processes a pre-sorted transaction stream and finalizes the run.
func (l *Ledger) ProcessAll(txs []Transaction) error {
	for _, tx := range txs {
		if err := l.Process(tx); err != nil {
			return err
		}
	}
	return l.Finalize()
}

// Finalize closes the last open statement by creating its fee loss. Must be
// called exactly once, after the last transaction.
func (l *Ledger) Finalize() error {
	if len(l.statements) == 0 {
		return nil
	}
	return l.statements[len(l.statements)-1].CreateFeeLoss()
}

// Statements returns the per-year statements in chronological order.
func (l *Ledger) Statements() []*Statement { return l.statements }

// Events returns every gain and loss event of the run in emission order,
// year by year, gains and losses interleaved as they were produced.
func (l *Ledger) Events() []GainLoss {
	var events []GainLoss
	for _, s := range l.statements {
		events = append(events, s.events...)
	}
	return events
}
