package cgt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// process feeds transactions to the statement, failing the test on error.
func process(t *testing.T, s *Statement, txs ...Transaction) {
	t.Helper()
	for _, trade := range txs {
		if err := s.Process(trade); err != nil {
			t.Fatalf("Process(%s) failed: %v", trade, err)
		}
	}
}

func TestStatement_TaxableGains(t *testing.T) {
	cfg := DefaultConfig()
	s := NewStatement(cfg, 2023, nil, nil)

	process(t, s,
		// Held 392 days at disposal: the 10,000 gain is discountable.
		tx(t, at(2021, time.July, 5), Buy, "btcaud", map[string]float64{"btc": 1, "aud": 10000}, nil),
		tx(t, at(2022, time.August, 1), Sell, "btcaud", map[string]float64{"btc": 1, "aud": 20000}, nil),
		// Held 23 days at disposal: the 2,000 gain is not.
		tx(t, at(2022, time.July, 10), Buy, "btcaud", map[string]float64{"btc": 1, "aud": 10000}, nil),
		tx(t, at(2022, time.August, 2), Sell, "btcaud", map[string]float64{"btc": 1, "aud": 12000}, nil),
	)

	checkMoney(t, "GrossGains()", s.GrossGains(), 12000)
	checkMoney(t, "DiscountableGains()", s.DiscountableGains(), 10000)
	checkMoney(t, "NonDiscountableGains()", s.NonDiscountableGains(), 2000)
	// 10,000/2 + 2,000.
	checkMoney(t, "TaxableGains()", s.TaxableGains(), 7000)
	checkMoney(t, "NetGain()", s.NetGain(), 7000)
}

func TestStatement_FeeLossOnce(t *testing.T) {
	cfg := DefaultConfig()
	s := NewStatement(cfg, 2023, nil, nil)

	// A fiat withdrawal fee has no lot to attach to: it accrues for the year.
	process(t, s,
		tx(t, at(2022, time.August, 1), Withdrawal, "", map[string]float64{"aud": 500},
			map[string]float64{"aud": 3}),
		tx(t, at(2022, time.September, 1), Withdrawal, "", map[string]float64{"aud": 500},
			map[string]float64{"aud": 4}),
	)

	if err := s.CreateFeeLoss(); err != nil {
		t.Fatalf("CreateFeeLoss() failed: %v", err)
	}
	loss, ok := s.FeeLoss()
	if !ok {
		t.Fatal("FeeLoss() missing after CreateFeeLoss()")
	}
	checkMoney(t, "fee loss amount", loss.Amount, -7)

	if err := s.CreateFeeLoss(); !errors.Is(err, ErrDuplicateFeeLoss) {
		t.Fatalf("second CreateFeeLoss() error = %v, want ErrDuplicateFeeLoss", err)
	}
}

func TestStatement_IncidentalFeeLoss(t *testing.T) {
	cfg := DefaultConfig()
	s := NewStatement(cfg, 2023, nil, nil)

	process(t, s,
		// 10 ltc at 70/unit.
		tx(t, at(2022, time.July, 5), Buy, "ltcusd",
			map[string]float64{"ltc": 10, "usd": 500, "aud": 700}, nil),
		// A btc trade paying its fee in ltc: the fee volume is disposed
		// against the ltc queue, and the fee's cost is one incidental loss.
		tx(t, at(2022, time.August, 1), Buy, "btcusd",
			map[string]float64{"btc": 1, "usd": 9000, "aud": 13000},
			map[string]float64{"ltc": 1, "aud": 14}),
	)

	// Fee disposal: proceeds 14 against a 70 basis, a 56 loss on the lot.
	var matchLoss, incidental bool
	for _, loss := range s.Losses() {
		if strings.Contains(loss.Description, "Incidental loss") {
			incidental = true
			checkMoney(t, "incidental loss", loss.Amount, -14)
			continue
		}
		matchLoss = true
		checkMoney(t, "fee disposal loss", loss.Amount, -56)
	}
	if !matchLoss || !incidental {
		t.Errorf("losses = %v, want one fee-disposal loss and one incidental loss", s.Losses())
	}
	checkQuantity(t, "Holding(ltc)", s.Portfolio().Holding("ltc"), 9)

	// The fee was realized: nothing accrues into the year-end fee loss.
	if err := s.CreateFeeLoss(); err != nil {
		t.Fatalf("CreateFeeLoss() failed: %v", err)
	}
	loss, _ := s.FeeLoss()
	if !loss.Amount.IsZero() {
		t.Errorf("year-end fee loss = %s, want zero", loss.Amount.Decimal())
	}
}

func TestStatement_CarriedLosses(t *testing.T) {
	cfg := DefaultConfig()
	s := NewStatement(cfg, 2023, nil, nil)

	process(t, s,
		tx(t, at(2022, time.July, 5), Buy, "btcaud", map[string]float64{"btc": 1, "aud": 10000}, nil),
		tx(t, at(2022, time.August, 1), Sell, "btcaud", map[string]float64{"btc": 1, "aud": 6000}, nil),
	)

	carried := s.CarriedLosses()
	if carried == nil {
		t.Fatal("CarriedLosses() = nil for a net-negative year")
	}
	checkMoney(t, "carried amount", carried.Amount, -4000)
	if !strings.Contains(carried.Description, "2023") {
		t.Errorf("carried description %q does not name the year", carried.Description)
	}

	// A profitable year carries nothing.
	profitable := NewStatement(cfg, 2023, nil, nil)
	process(t, profitable,
		tx(t, at(2022, time.July, 5), Buy, "btcaud", map[string]float64{"btc": 1, "aud": 10000}, nil),
		tx(t, at(2022, time.August, 1), Sell, "btcaud", map[string]float64{"btc": 1, "aud": 16000}, nil),
	)
	if profitable.CarriedLosses() != nil {
		t.Error("CarriedLosses() != nil for a net-positive year")
	}
}

func TestStatement_PreviousYearLoss(t *testing.T) {
	cfg := DefaultConfig()
	carried := newSyntheticLoss(M(-4000.0, cfg.CurrencyCode()), "Loss carried from financial year 2022")
	s := NewStatement(cfg, 2023, nil, &carried)

	process(t, s,
		tx(t, at(2022, time.July, 5), Buy, "btcaud", map[string]float64{"btc": 1, "aud": 10000}, nil),
		tx(t, at(2022, time.August, 1), Sell, "btcaud", map[string]float64{"btc": 1, "aud": 11000}, nil),
	)

	previous, ok := s.PreviousYearLoss()
	if !ok {
		t.Fatal("PreviousYearLoss() missing")
	}
	checkMoney(t, "previous-year loss", previous.Amount, -4000)
	// 1,000 gain offset by the carried 4,000 loss.
	checkMoney(t, "NetGain()", s.NetGain(), -3000)
	checkMoney(t, "ThisYearLosses()", s.ThisYearLosses(), 0)
}

func TestStatement_GainOperation(t *testing.T) {
	cfg := DefaultConfig()
	s := NewStatement(cfg, 2023, nil, nil)

	income, err := NewTransaction(at(2022, time.August, 1), Gain, "",
		quantities(map[string]float64{"btc": 0.1, "aud": 50}), nil, "airdrop")
	if err != nil {
		t.Fatal(err)
	}
	process(t, s, income)

	if len(s.Gains()) != 1 {
		t.Fatalf("Gains() has %d events, want 1", len(s.Gains()))
	}
	checkMoney(t, "income gain", s.Gains()[0].Amount, 50)
	if s.Gains()[0].Discountable {
		t.Error("income gain must not be discountable")
	}
	// The received volume is held at the income valuation.
	checkQuantity(t, "Holding(btc)", s.Portfolio().Holding("btc"), 0.1)
}

func TestStatement_LossOperation(t *testing.T) {
	cfg := DefaultConfig()
	s := NewStatement(cfg, 2023, nil, nil)

	process(t, s,
		tx(t, at(2022, time.July, 5), Buy, "btcaud", map[string]float64{"btc": 2, "aud": 20000}, nil),
	)
	lost, err := NewTransaction(at(2022, time.August, 1), Loss, "",
		quantities(map[string]float64{"btc": 0.5}), nil, "wallet compromised")
	if err != nil {
		t.Fatal(err)
	}
	process(t, s, lost)

	if len(s.Losses()) != 1 {
		t.Fatalf("Losses() has %d events, want 1", len(s.Losses()))
	}
	checkMoney(t, "loss amount", s.Losses()[0].Amount, -5000)
	checkQuantity(t, "Holding(btc)", s.Portfolio().Holding("btc"), 1.5)
}

func TestStatement_UnsupportedOperation(t *testing.T) {
	cfg := DefaultConfig()
	s := NewStatement(cfg, 2023, nil, nil)
	bad := tx(t, at(2022, time.July, 5), Buy, "btcaud", map[string]float64{"btc": 1, "aud": 1}, nil)
	bad.Operation = Operation(99)
	if err := s.Process(bad); !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("Process() error = %v, want ErrUnsupportedOperation", err)
	}
}
