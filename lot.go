package cgt

import "fmt"

// Lot is a discrete acquisition of an asset: a quantity acquired at a known
// fiat cost basis and date, consumed by later disposals. The cost basis
// includes the acquisition's fiat fee and is fixed at creation, as is the unit
// price; only the remaining volume ever changes, and it only decreases.
type Lot struct {
	asset       string
	acquisition Transaction // owned snapshot of the acquiring transaction
	costBasis   Money
	initial     Quantity
	remaining   Quantity
	unitPrice   Money
}

// NewLot creates a lot for an asset acquired by a transaction. The transaction
// is snapshotted; its later mutation cannot change the lot's recorded basis.
func NewLot(cfg Config, asset string, tx Transaction) (*Lot, error) {
	volume := tx.Amount(asset)
	if volume.IsZero() {
		return nil, fmt.Errorf("%w: %s acquired on %s", ErrZeroVolumeLot, asset, tx.When())
	}
	basis := tx.Fiat(cfg).Add(tx.FiatFee(cfg))
	return &Lot{
		asset:       asset,
		acquisition: tx.Clone(),
		costBasis:   basis,
		initial:     volume,
		remaining:   volume,
		unitPrice:   basis.Div(volume),
	}, nil
}

// Asset returns the lot's asset symbol.
func (l *Lot) Asset() string { return l.asset }

// Acquisition returns a snapshot of the transaction that created the lot.
func (l *Lot) Acquisition() Transaction { return l.acquisition.Clone() }

// CostBasis returns the fiat cost of the lot, acquisition fee included.
func (l *Lot) CostBasis() Money { return l.costBasis }

// Initial returns the volume acquired.
func (l *Lot) Initial() Quantity { return l.initial }

// Remaining returns the volume not yet consumed by disposals.
func (l *Lot) Remaining() Quantity { return l.remaining }

// UnitPrice returns the fiat cost per unit, fixed at creation.
func (l *Lot) UnitPrice() Money { return l.unitPrice }

// consume decreases the remaining volume by a matched disposal.
func (l *Lot) consume(matched Quantity) { l.remaining = l.remaining.Sub(matched) }

// clone returns an independent deep copy, used to carry portfolios across
// financial-year boundaries.
func (l *Lot) clone() *Lot {
	c := *l
	c.acquisition = l.acquisition.Clone()
	return &c
}

// snapshot returns an immutable value copy of the lot's current state, owned
// by the gain/loss event that records it.
func (l *Lot) snapshot() Lot {
	return *l.clone()
}
