package cgt

import (
	"fmt"
	"log"
)

// Statement is the annual statement for one financial year: the portfolio at
// the end of the year, and every gain and loss accrued during it, in
// processing order. It is the end result for the tax return of the year.
type Statement struct {
	cfg       Config
	year      int
	portfolio *Portfolio

	events []GainLoss // every event, in emission order
	gains  []GainLoss
	losses []GainLoss

	previousYearLoss *GainLoss
	feeLoss          *GainLoss

	// unattributedFees accumulates fiat fees not already folded into a lot
	// basis or realized as an incidental loss; CreateFeeLoss sums them once.
	unattributedFees Money
}

// NewStatement creates the statement for a financial year. The portfolio is
// the carried-forward state from the previous year (or nil for a fresh one),
// and carried is the previous year's negative net result, if any. Once set
// here, the previous-year loss is never mutated.
func NewStatement(cfg Config, year int, portfolio *Portfolio, carried *GainLoss) *Statement {
	if portfolio == nil {
		portfolio = NewPortfolio(cfg)
	}
	s := &Statement{cfg: cfg, year: year, portfolio: portfolio}
	if carried != nil {
		c := *carried
		s.previousYearLoss = &c
		s.recordLoss(c)
	}
	return s
}

// Year returns the statement's financial year.
func (s *Statement) Year() int { return s.year }

// Portfolio returns the statement's lot queues.
func (s *Statement) Portfolio() *Portfolio { return s.portfolio }

// Events returns every event of the year in emission order, gains and losses
// interleaved exactly as they were produced.
func (s *Statement) Events() []GainLoss { return s.events }

// Gains returns the gain events of the year in processing order.
func (s *Statement) Gains() []GainLoss { return s.gains }

// Losses returns the loss events of the year in processing order, the carried
// previous-year loss first if present.
func (s *Statement) Losses() []GainLoss { return s.losses }

// PreviousYearLoss returns the loss carried in from the previous year, if any.
func (s *Statement) PreviousYearLoss() (GainLoss, bool) {
	if s.previousYearLoss == nil {
		return GainLoss{}, false
	}
	return *s.previousYearLoss, true
}

// Process routes one transaction into the lot queues and the disposal
// matcher, collecting the resulting events. Transactions must arrive in
// chronological order; a failed disposal leaves the statement fatally invalid.
func (s *Statement) Process(tx Transaction) error {
	switch tx.Operation {
	case Buy, Sell:
		return s.processTrade(tx)
	case Deposit, Withdrawal:
		return s.processTransfer(tx)
	case Loss:
		return s.processLoss(tx)
	case Gain:
		return s.processGain(tx)
	default:
		return fmt.Errorf("%w: %q on %s", ErrUnsupportedOperation, tx.Operation, tx.When())
	}
}

func (s *Statement) processTrade(tx Transaction) error {
	disposed, acquired, err := tx.Decompose(s.cfg)
	if err != nil {
		return err
	}

	feeAttributed := false
	if s.cfg.IsAsset(acquired) {
		// The acquisition's fiat fee is folded into the lot cost basis.
		lot, err := NewLot(s.cfg, acquired, tx)
		if err != nil {
			return err
		}
		s.portfolio.Append(lot)
		feeAttributed = true
	}

	if s.cfg.IsAsset(disposed) && tx.Amount(disposed).IsPositive() {
		events, err := s.portfolio.Dispose(disposed, tx.Amount(disposed), tx.Fiat(s.cfg), tx)
		s.collect(events)
		if err != nil {
			return err
		}
	}

	if !s.cfg.IsAsset(acquired) && !s.cfg.IsAsset(disposed) {
		log.Printf("skipped trade not involving any tracked asset: %s", tx)
	}

	if err := s.disposeTradeFee(tx); err != nil {
		return err
	}
	if _, _, inKind := tx.InKindFee(s.cfg); inKind {
		feeAttributed = true
	}

	if !feeAttributed {
		s.unattributedFees = s.unattributedFees.Add(tx.FiatFee(s.cfg))
	}
	return nil
}

// disposeTradeFee realizes a trade fee paid in a tracked asset outside the
// traded pair: the fee volume is a synthetic disposal against the fee asset's
// own queue, and the economic cost of paying the fee is recorded as one
// incidental loss even when the fee asset happened to appreciate.
func (s *Statement) disposeTradeFee(tx Transaction) error {
	mocked, ok := tx.FeeDisposal(s.cfg)
	if !ok {
		return nil
	}
	asset, volume, _ := tx.InKindFee(s.cfg)
	proceeds := mocked.Fiat(s.cfg)
	events, err := s.portfolio.Dispose(asset, volume, proceeds, mocked)
	s.collect(events)
	if err != nil {
		return err
	}

	var total Money
	for _, ev := range events {
		total = total.Add(ev.Amount)
	}
	// cost basis consumed by the fee disposal = proceeds - realized amount
	magnitude := proceeds.Sub(total)
	if total.IsNegative() {
		magnitude = proceeds
	}
	incidental := newSyntheticLoss(magnitude.Abs().Neg(), fmt.Sprintf("Incidental loss of fee paid in %s", asset))
	s.recordLoss(incidental)
	return nil
}

func (s *Statement) processTransfer(tx Transaction) error {
	// An asset-increasing deposit with a fiat valuation is an external
	// acquisition and creates a lot; a bare transfer between wallets does not.
	feeAttributed := false
	if tx.Operation == Deposit && tx.Fiat(s.cfg).IsPositive() {
		for _, asset := range s.cfg.Assets {
			if tx.Amount(asset).IsPositive() {
				lot, err := NewLot(s.cfg, asset, tx)
				if err != nil {
					return err
				}
				s.portfolio.Append(lot)
				feeAttributed = true
				break
			}
		}
	}

	if asset, volume, ok := tx.InKindFee(s.cfg); ok {
		// An in-kind transfer fee is a cost, not a disposal for tax purposes.
		if err := s.portfolio.DisposeWithoutTaxEvent(asset, volume); err != nil {
			return fmt.Errorf("disposing %s transfer fee: %w", asset, err)
		}
		return nil
	}
	if !feeAttributed {
		s.unattributedFees = s.unattributedFees.Add(tx.FiatFee(s.cfg))
	}
	return nil
}

func (s *Statement) processLoss(tx Transaction) error {
	for _, asset := range s.cfg.Assets {
		if tx.Amount(asset).IsPositive() {
			events, err := s.portfolio.DisposeAsLoss(asset, tx)
			s.collect(events)
			return err
		}
	}
	// No asset link: an arbitrary fiat loss.
	loss := newSyntheticLoss(tx.Fiat(s.cfg).Abs().Neg(), "Arbitrary loss because of: "+tx.Notes)
	s.recordLoss(loss)
	return nil
}

// processGain handles an asset-increasing event with a fiat valuation, such
// as an airdrop or interest: the fiat value is income (a non-discountable
// gain) and the received volume becomes a lot at that valuation.
func (s *Statement) processGain(tx Transaction) error {
	for _, asset := range s.cfg.Assets {
		if tx.Amount(asset).IsPositive() {
			lot, err := NewLot(s.cfg, asset, tx)
			if err != nil {
				return err
			}
			s.portfolio.Append(lot)
			break
		}
	}
	gain := newSyntheticLoss(tx.Fiat(s.cfg).Abs(), "Income: "+tx.Notes)
	s.record(gain)
	return nil
}

// collect records matcher events in the order produced.
func (s *Statement) collect(events []GainLoss) {
	for _, ev := range events {
		s.record(ev)
	}
}

// record appends an event to the emission-ordered sequence and to its gain or
// loss bucket.
func (s *Statement) record(ev GainLoss) {
	s.events = append(s.events, ev)
	if ev.Gain() {
		s.gains = append(s.gains, ev)
	} else {
		s.losses = append(s.losses, ev)
	}
}

// recordLoss appends a synthetic loss to the emission-ordered sequence and
// to the losses, even when its amount is zero.
func (s *Statement) recordLoss(ev GainLoss) {
	s.events = append(s.events, ev)
	s.losses = append(s.losses, ev)
}

// GrossGains returns the sum of all gain events of the year.
func (s *Statement) GrossGains() Money { return sumEvents(s.gains, nil) }

// DiscountableGains returns the sum of gains on assets held longer than the
// discount period.
func (s *Statement) DiscountableGains() Money {
	return sumEvents(s.gains, func(ev GainLoss) bool { return ev.Discountable })
}

// NonDiscountableGains returns the sum of gains not eligible for the discount.
func (s *Statement) NonDiscountableGains() Money {
	return sumEvents(s.gains, func(ev GainLoss) bool { return !ev.Discountable })
}

// TaxableGains returns the statutory taxable amount: half the discountable
// gains plus the full non-discountable gains.
func (s *Statement) TaxableGains() Money {
	return s.DiscountableGains().Half().Add(s.NonDiscountableGains())
}

// LossesSum returns the sum of all loss events, the carried previous-year
// loss included. Losses are negative amounts.
func (s *Statement) LossesSum() Money { return sumEvents(s.losses, nil) }

// ThisYearLosses returns the losses accrued this year only, without the
// carried previous-year loss.
func (s *Statement) ThisYearLosses() Money {
	total := s.LossesSum()
	if s.previousYearLoss != nil {
		total = total.Sub(s.previousYearLoss.Amount)
	}
	return total
}

// NetGain returns the taxable gains plus the losses sum (losses are already
// negative).
func (s *Statement) NetGain() Money { return s.TaxableGains().Add(s.LossesSum()) }

// CarriedLosses returns the loss to carry into the next year's statement: a
// single synthetic event equal to the net gain when it is negative, nil
// otherwise. Unused discounts never carry, only a net-negative aggregate does.
func (s *Statement) CarriedLosses() *GainLoss {
	net := s.NetGain()
	if !net.IsNegative() {
		return nil
	}
	carried := newSyntheticLoss(net, fmt.Sprintf("Loss carried from financial year %d", s.year))
	return &carried
}

// CreateFeeLoss sums the year's unattributed fiat transaction fees into a
// single loss event, once. A second call is a contract violation: it would
// double-count fees at year rollover.
func (s *Statement) CreateFeeLoss() error {
	if s.feeLoss != nil {
		return fmt.Errorf("%w: financial year %d", ErrDuplicateFeeLoss, s.year)
	}
	loss := newSyntheticLoss(s.unattributedFees.Abs().Neg(), "Loss of transaction fees")
	s.feeLoss = &loss
	s.recordLoss(loss)
	return nil
}

// FeeLoss returns the fee-loss event, if it was created.
func (s *Statement) FeeLoss() (GainLoss, bool) {
	if s.feeLoss == nil {
		return GainLoss{}, false
	}
	return *s.feeLoss, true
}

func sumEvents(events []GainLoss, keep func(GainLoss) bool) Money {
	var total Money
	for _, ev := range events {
		if keep == nil || keep(ev) {
			total = total.Add(ev.Amount)
		}
	}
	return total
}
