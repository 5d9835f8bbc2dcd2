package cgt

import (
	"testing"
	"time"
)

// at returns a mid-day timestamp, so day arithmetic is unambiguous.
func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// quantities converts a plain float map into the transaction quantity map.
func quantities(values map[string]float64) map[string]Quantity {
	m := make(map[string]Quantity, len(values))
	for symbol, v := range values {
		m[symbol] = Q(v)
	}
	return m
}

// tx builds a validated transaction, failing the test on a constructor error.
func tx(t *testing.T, on time.Time, op Operation, pair string, amounts, fees map[string]float64) Transaction {
	t.Helper()
	built, err := NewTransaction(on, op, pair, quantities(amounts), quantities(fees), "")
	if err != nil {
		t.Fatalf("NewTransaction() failed: %v", err)
	}
	return built
}

// mustLot builds a lot, failing the test on error.
func mustLot(t *testing.T, cfg Config, asset string, acquisition Transaction) *Lot {
	t.Helper()
	lot, err := NewLot(cfg, asset, acquisition)
	if err != nil {
		t.Fatalf("NewLot() failed: %v", err)
	}
	return lot
}

// checkMoney fails the test unless got is the given local-fiat amount.
func checkMoney(t *testing.T, name string, got Money, want float64) {
	t.Helper()
	if !got.Decimal().Equal(Q(want).Decimal()) {
		t.Errorf("%s = %s, want %v", name, got.Decimal(), want)
	}
}

// checkQuantity fails the test unless got is the given volume.
func checkQuantity(t *testing.T, name string, got Quantity, want float64) {
	t.Helper()
	if !got.Equal(Q(want)) {
		t.Errorf("%s = %s, want %v", name, got, want)
	}
}
