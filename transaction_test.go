package cgt

import (
	"errors"
	"testing"
	"time"
)

func TestFinancialYear(t *testing.T) {
	cfg := DefaultConfig() // July start

	testCases := []struct {
		on   time.Time
		want int
	}{
		{at(2021, time.June, 30), 2021},
		{at(2021, time.July, 1), 2022},
		{at(2022, time.January, 15), 2022},
		{at(2022, time.June, 30), 2022},
		{at(2022, time.July, 1), 2023},
	}
	for _, tc := range testCases {
		trade := tx(t, tc.on, Buy, "btcaud", map[string]float64{"btc": 1, "aud": 1}, nil)
		if got := trade.FinancialYear(cfg); got != tc.want {
			t.Errorf("FinancialYear(%s) = %d, want %d", tc.on.Format(time.DateOnly), got, tc.want)
		}
	}
}

func TestDecompose(t *testing.T) {
	cfg := DefaultConfig()

	buy := tx(t, at(2021, time.January, 1), Buy, "btcusd",
		map[string]float64{"btc": 1, "usd": 30000, "aud": 40000}, nil)
	disposed, acquired, err := buy.Decompose(cfg)
	if err != nil {
		t.Fatalf("Decompose() failed: %v", err)
	}
	if disposed != "usd" || acquired != "btc" {
		t.Errorf("buy decomposes to (%s, %s), want (usd, btc)", disposed, acquired)
	}

	sell := tx(t, at(2021, time.January, 1), Sell, "btcusd",
		map[string]float64{"btc": 1, "usd": 30000, "aud": 40000}, nil)
	disposed, acquired, err = sell.Decompose(cfg)
	if err != nil {
		t.Fatalf("Decompose() failed: %v", err)
	}
	if disposed != "btc" || acquired != "usd" {
		t.Errorf("sell decomposes to (%s, %s), want (btc, usd)", disposed, acquired)
	}
}

func TestDecompose_UnknownPair(t *testing.T) {
	cfg := DefaultConfig()
	trade := tx(t, at(2021, time.January, 1), Buy, "xmrusd",
		map[string]float64{"usd": 100}, nil)
	if _, _, err := trade.Decompose(cfg); !errors.Is(err, ErrUnknownPair) {
		t.Fatalf("Decompose() error = %v, want ErrUnknownPair", err)
	}
}

func TestNewTransaction_Malformed(t *testing.T) {
	if _, err := NewTransaction(time.Time{}, Buy, "btcaud", nil, nil, ""); !errors.Is(err, ErrMalformedTransaction) {
		t.Errorf("zero timestamp error = %v, want ErrMalformedTransaction", err)
	}
	negative := map[string]Quantity{"btc": Q(-1)}
	if _, err := NewTransaction(at(2021, time.January, 1), Buy, "btcaud", negative, nil, ""); !errors.Is(err, ErrMalformedTransaction) {
		t.Errorf("negative amount error = %v, want ErrMalformedTransaction", err)
	}
	if _, err := NewTransaction(at(2021, time.January, 1), Buy, "btcaud", nil, negative, ""); !errors.Is(err, ErrMalformedTransaction) {
		t.Errorf("negative fee error = %v, want ErrMalformedTransaction", err)
	}
}

func TestInKindFee(t *testing.T) {
	cfg := DefaultConfig()

	// A fee in an asset outside the traded pair is in kind.
	trade := tx(t, at(2021, time.January, 1), Buy, "btcusd",
		map[string]float64{"btc": 1, "usd": 30000, "aud": 40000},
		map[string]float64{"ltc": 0.5, "aud": 10})
	asset, volume, ok := trade.InKindFee(cfg)
	if !ok || asset != "ltc" {
		t.Fatalf("InKindFee() = (%s, _, %v), want (ltc, _, true)", asset, ok)
	}
	checkQuantity(t, "in-kind fee volume", volume, 0.5)

	// A fee in the acquired asset is part of the trade's own flows.
	trade = tx(t, at(2021, time.January, 1), Buy, "btcusd",
		map[string]float64{"btc": 1, "usd": 30000, "aud": 40000},
		map[string]float64{"btc": 0.001})
	if _, _, ok := trade.InKindFee(cfg); ok {
		t.Error("fee in the acquired asset reported as in kind")
	}
}

func TestFeeDisposal(t *testing.T) {
	cfg := DefaultConfig()
	trade := tx(t, at(2021, time.January, 1), Buy, "btcusd",
		map[string]float64{"btc": 1, "usd": 30000, "aud": 40000},
		map[string]float64{"ltc": 0.5, "aud": 10})

	mocked, ok := trade.FeeDisposal(cfg)
	if !ok {
		t.Fatal("FeeDisposal() found no in-kind fee")
	}
	if mocked.Operation != Sell || mocked.Pair != "ltcaud" {
		t.Errorf("FeeDisposal() = %s %s, want sell ltcaud", mocked.Operation, mocked.Pair)
	}
	checkQuantity(t, "disposed volume", mocked.Amount("ltc"), 0.5)
	// The proceeds are the fee's local-fiat value.
	checkMoney(t, "proceeds", mocked.Fiat(cfg), 10)
	if mocked.Fee("ltc").IsPositive() || mocked.Fee("aud").IsPositive() {
		t.Error("FeeDisposal() must not carry the fee forward")
	}
}

func TestClone_Independent(t *testing.T) {
	original := tx(t, at(2021, time.January, 1), Buy, "btcaud",
		map[string]float64{"btc": 1, "aud": 10000}, nil)
	clone := original.Clone()
	clone.Amounts["aud"] = Q(1)
	checkQuantity(t, "original aud amount", original.Amount("aud"), 10000)
}
