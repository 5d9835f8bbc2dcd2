package cgt

import (
	"time"

	"github.com/etnz/cgt/date"
)

// discountDays is the holding period, in whole days, a gain must strictly
// exceed to qualify for the 50% taxable-amount discount.
const discountDays = 365

// holdingDays returns the whole days elapsed between the acquisition and
// disposal timestamps. Partial days do not count: acquiring late on one day
// and disposing early on another spans fewer whole days than calendar dates
// suggest.
func holdingDays(acquired, disposed time.Time) int {
	return int(disposed.Sub(acquired) / (24 * time.Hour))
}

// GainLoss is the result of matching a disposed volume against one lot, or a
// synthetic event (incidental fee loss, arbitrary fiat loss, carried loss).
// It owns value snapshots of the matched lot and the disposing transaction;
// discount eligibility is computed once at emission and never recomputed.
type GainLoss struct {
	Amount       Money     // positive for a gain, negative for a loss
	Acquired     date.Date // zero for synthetic events
	Disposed     date.Date // zero for synthetic events
	Matched      Quantity  // volume of the lot consumed by this event
	Discountable bool
	Description  string

	lot      *Lot         // snapshot, nil for synthetic events
	disposal *Transaction // snapshot, nil for synthetic events
}

// newGainLoss records the match of a lot against a disposing transaction.
// The lot is snapshotted before its remaining volume is decremented, so the
// event keeps the remaining volume at match time.
func newGainLoss(amount Money, matched Quantity, lot *Lot, tx Transaction) GainLoss {
	snap := lot.snapshot()
	disposal := tx.Clone()
	return GainLoss{
		Amount:       amount,
		Acquired:     lot.acquisition.When(),
		Disposed:     tx.When(),
		Matched:      matched,
		Discountable: amount.IsPositive() && holdingDays(lot.acquisition.Time, tx.Time) > discountDays,
		lot:          &snap,
		disposal:     &disposal,
	}
}

// newSyntheticLoss records a loss with no lot or asset link (incidental fee
// loss, arbitrary fiat loss, carried previous-year loss).
func newSyntheticLoss(amount Money, description string) GainLoss {
	return GainLoss{Amount: amount, Description: description}
}

// Gain reports whether the event is counted as a gain. Zero counts as a gain.
func (gl GainLoss) Gain() bool { return !gl.Amount.IsNegative() }

// Lot returns the snapshot of the matched lot, if any.
func (gl GainLoss) Lot() (Lot, bool) {
	if gl.lot == nil {
		return Lot{}, false
	}
	return gl.lot.snapshot(), true
}

// Disposal returns the snapshot of the disposing transaction, if any.
func (gl GainLoss) Disposal() (Transaction, bool) {
	if gl.disposal == nil {
		return Transaction{}, false
	}
	return gl.disposal.Clone(), true
}

// DiscountLabel is the display-only classification: "Yes" for a discountable
// gain, "No" for a non-discountable gain, "N/A" for a loss.
func (gl GainLoss) DiscountLabel() string {
	switch {
	case gl.Discountable:
		return "Yes"
	case gl.Gain():
		return "No"
	default:
		return "N/A"
	}
}

const na = "N/A"

// Row flattens the event into the line-oriented export record: the event
// itself, then the acquisition transaction, the matched lot state, and the
// disposing transaction. Synthetic events carry N/A placeholders.
func (gl GainLoss) Row(cfg Config) []string {
	kind := "loss"
	if gl.Gain() {
		kind = "gain"
	}
	disposedDate := na
	if !gl.Disposed.IsZero() {
		disposedDate = gl.Disposed.String()
	}
	row := []string{
		kind,
		disposedDate,
		gl.Amount.Decimal().String(),
		gl.DiscountLabel(),
		gl.Description,
	}
	if gl.lot != nil {
		row = append(row, transactionColumns(gl.lot.acquisition, cfg)...)
		row = append(row,
			gl.lot.asset,
			gl.lot.costBasis.Decimal().String(),
			gl.lot.initial.String(),
			gl.lot.unitPrice.Decimal().String(),
			gl.lot.remaining.String(),
		)
	} else {
		row = append(row, na, na, na, na, na, na, na, na, na, na, na)
	}
	row = append(row, gl.Matched.String())
	if gl.disposal != nil {
		row = append(row, transactionColumns(*gl.disposal, cfg)...)
	} else {
		row = append(row, na, na, na, na, na, na)
	}
	return row
}

// transactionColumns renders the six transaction columns of the export record:
// local-fiat amount, principal volume, date, operation, pair, secondary-fiat amount.
func transactionColumns(t Transaction, cfg Config) []string {
	volume := na
	if q, ok := t.Volume(cfg); ok {
		volume = q.String()
	}
	return []string{
		t.Fiat(cfg).Decimal().String(),
		volume,
		t.When().String(),
		t.Operation.String(),
		t.Pair,
		t.Secondary(cfg).String(),
	}
}
