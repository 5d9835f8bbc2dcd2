package cgt

import (
	"testing"
	"time"
)

// discountTx builds a validated transaction at an exact timestamp.
func discountTx(t *testing.T, on time.Time, op Operation, amounts map[string]float64) Transaction {
	t.Helper()
	built, err := NewTransaction(on, op, "btcaud", quantities(amounts), nil, "")
	if err != nil {
		t.Fatalf("NewTransaction() failed: %v", err)
	}
	return built
}

func TestDiscount_WholeDaysFromTimestamps(t *testing.T) {
	cfg := DefaultConfig()

	// Acquired late in the evening: calendar dates span 366 days, but only
	// 365 whole days elapse before an early-morning disposal.
	acquired := time.Date(2021, time.January, 1, 23, 0, 0, 0, time.UTC)
	buy := discountTx(t, acquired, Buy, map[string]float64{"btc": 1, "aud": 10000})

	cases := []struct {
		name         string
		disposed     time.Time
		discountable bool
	}{
		{"365 whole days", time.Date(2022, time.January, 2, 1, 0, 0, 0, time.UTC), false},
		{"exactly 366 days", time.Date(2022, time.January, 2, 23, 0, 0, 0, time.UTC), true},
		{"366 days and change", time.Date(2022, time.January, 3, 1, 0, 0, 0, time.UTC), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPortfolio(cfg)
			p.Append(mustLot(t, cfg, "btc", buy))
			sale := discountTx(t, tc.disposed, Sell, map[string]float64{"btc": 1, "aud": 20000})
			events, err := p.Dispose("btc", sale.Amount("btc"), sale.Fiat(cfg), sale)
			if err != nil {
				t.Fatalf("Dispose() failed: %v", err)
			}
			if len(events) != 1 {
				t.Fatalf("Dispose() produced %d events, want 1", len(events))
			}
			if events[0].Discountable != tc.discountable {
				t.Errorf("Discountable = %v, want %v", events[0].Discountable, tc.discountable)
			}
		})
	}
}

func TestHoldingDays(t *testing.T) {
	acquired := time.Date(2021, time.January, 1, 23, 0, 0, 0, time.UTC)
	cases := []struct {
		disposed time.Time
		want     int
	}{
		{time.Date(2021, time.January, 2, 1, 0, 0, 0, time.UTC), 0},
		{time.Date(2021, time.January, 2, 23, 0, 0, 0, time.UTC), 1},
		{time.Date(2022, time.January, 2, 1, 0, 0, 0, time.UTC), 365},
		{time.Date(2022, time.January, 2, 23, 0, 0, 0, time.UTC), 366},
	}
	for _, tc := range cases {
		if got := holdingDays(acquired, tc.disposed); got != tc.want {
			t.Errorf("holdingDays(..., %s) = %d, want %d", tc.disposed, got, tc.want)
		}
	}
}
