package cgt

import (
	"fmt"
)

// Portfolio holds, per tracked asset, the ordered queue of open lots, and
// satisfies disposal requests against them deterministically.
//
// The queue is always walked from the front; the accounting order only decides
// where Append places a new lot (tail for oldest-first, head for
// newest-first). Fully drained lots stay in place so the walk order is
// reproducible; Compact may remove them once processing is over.
type Portfolio struct {
	cfg    Config
	queues map[string][]*Lot
}

// NewPortfolio creates an empty portfolio for the run configuration.
func NewPortfolio(cfg Config) *Portfolio {
	queues := make(map[string][]*Lot, len(cfg.Assets))
	for _, asset := range cfg.Assets {
		queues[asset] = nil
	}
	return &Portfolio{cfg: cfg, queues: queues}
}

// Append adds a lot to its asset's queue according to the accounting order.
func (p *Portfolio) Append(lot *Lot) {
	queue := p.queues[lot.asset]
	if p.cfg.Order == LIFO {
		queue = append([]*Lot{lot}, queue...)
	} else {
		queue = append(queue, lot)
	}
	p.queues[lot.asset] = queue
}

// Dispose consumes volume from the asset's queue to satisfy a sale, emitting
// one gain/loss event per lot touched, in queue order.
//
// The proceeds per unit are computed once for the whole disposal, so that the
// events of a multi-lot disposal sum back to the total proceeds exactly, no
// matter how many lots were touched.
func (p *Portfolio) Dispose(asset string, volume Quantity, proceeds Money, tx Transaction) ([]GainLoss, error) {
	perUnit := proceeds.Div(volume)
	var events []GainLoss
	remaining := volume
	for _, lot := range p.queues[asset] {
		if !lot.remaining.IsPositive() {
			continue
		}
		matched := lot.remaining.Min(remaining)
		amount := perUnit.Sub(lot.unitPrice).Mul(matched)
		events = append(events, newGainLoss(amount, matched, lot, tx))
		lot.consume(matched)
		remaining = remaining.Sub(matched)
		if remaining.LessThan(p.cfg.Threshold) {
			return events, nil
		}
	}
	return events, p.overdrawn(asset, remaining, tx)
}

// DisposeWithoutTaxEvent consumes volume like Dispose but emits no events.
// It covers asset outflows that are a cost, not a disposal for tax purposes,
// such as a deposit or withdrawal fee paid in kind.
func (p *Portfolio) DisposeWithoutTaxEvent(asset string, volume Quantity) error {
	remaining := volume
	for _, lot := range p.queues[asset] {
		if !lot.remaining.IsPositive() {
			continue
		}
		matched := lot.remaining.Min(remaining)
		lot.consume(matched)
		remaining = remaining.Sub(matched)
		if remaining.LessThan(p.cfg.Threshold) {
			return nil
		}
	}
	return p.overdrawn(asset, remaining, Transaction{})
}

// DisposeAsLoss consumes the transaction's volume of an asset confirmed lost
// or stolen. Every matched portion realizes its entire cost basis as a loss,
// regardless of market proceeds.
func (p *Portfolio) DisposeAsLoss(asset string, tx Transaction) ([]GainLoss, error) {
	var events []GainLoss
	remaining := tx.Amount(asset)
	for _, lot := range p.queues[asset] {
		if !lot.remaining.IsPositive() {
			continue
		}
		matched := lot.remaining.Min(remaining)
		amount := lot.unitPrice.Mul(matched).Neg()
		events = append(events, newGainLoss(amount, matched, lot, tx))
		lot.consume(matched)
		remaining = remaining.Sub(matched)
		if remaining.LessThan(p.cfg.Threshold) {
			return events, nil
		}
	}
	return events, p.overdrawn(asset, remaining, tx)
}

// overdrawn builds the fatal error for a disposal that exhausted the queue
// with volume still unmatched. This is a data-integrity violation: either the
// input disposes more than is held, or an upstream bug dropped an acquisition.
func (p *Portfolio) overdrawn(asset string, remaining Quantity, tx Transaction) error {
	if remaining.LessThanOrEqual(p.cfg.Threshold) {
		return nil
	}
	when := ""
	if !tx.Time.IsZero() {
		when = fmt.Sprintf(" on %s", tx.When())
	}
	return fmt.Errorf("%w: %s %s unmatched%s", ErrInsufficientLotVolume, remaining, asset, when)
}

// Holding returns the total remaining volume of one asset.
func (p *Portfolio) Holding(asset string) Quantity {
	var total Quantity
	for _, lot := range p.queues[asset] {
		total = total.Add(lot.remaining)
	}
	return total
}

// Holdings returns the remaining volume per asset, in configuration order.
func (p *Portfolio) Holdings() map[string]Quantity {
	holdings := make(map[string]Quantity, len(p.cfg.Assets))
	for _, asset := range p.cfg.Assets {
		holdings[asset] = p.Holding(asset)
	}
	return holdings
}

// Lots returns the asset's queue in matching order.
func (p *Portfolio) Lots(asset string) []*Lot {
	return p.queues[asset]
}

// Clone deep-copies the portfolio, lots included. The copy is the starting
// state of the next financial year; remaining volumes persist, lots are
// carried, not recreated.
func (p *Portfolio) Clone() *Portfolio {
	c := NewPortfolio(p.cfg)
	for asset, queue := range p.queues {
		cloned := make([]*Lot, len(queue))
		for i, lot := range queue {
			cloned[i] = lot.clone()
		}
		c.queues[asset] = cloned
	}
	return c
}

// Compact removes fully drained lots. Only safe after processing completes;
// during a run queue order must remain stable.
func (p *Portfolio) Compact() {
	for asset, queue := range p.queues {
		kept := queue[:0]
		for _, lot := range queue {
			if lot.remaining.IsPositive() {
				kept = append(kept, lot)
			}
		}
		p.queues[asset] = kept
	}
}
