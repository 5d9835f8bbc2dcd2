package cgt

import (
	"testing"
)

func TestMoney_Half(t *testing.T) {
	checkMoney(t, "Half(9000)", M(9000, "AUD").Half(), 4500)
	checkMoney(t, "Half(5)", M(5, "AUD").Half(), 2.5)
}

func TestMoney_SignedString(t *testing.T) {
	if got := M(0, "AUD").SignedString(); got != "-" {
		t.Errorf("zero SignedString() = %q, want -", got)
	}
	if got := M(12.5, "AUD").SignedString(); got[0] != '+' {
		t.Errorf("positive SignedString() = %q, want leading +", got)
	}
}

func TestMoney_WeakCurrency(t *testing.T) {
	// The zero Money has no currency; sums adopt the other operand's.
	var total Money
	total = total.Add(M(5, "AUD"))
	if total.Currency() != "AUD" {
		t.Errorf("Currency() = %q, want AUD", total.Currency())
	}
	checkMoney(t, "total", total, 5)
}

func TestQuantity_Min(t *testing.T) {
	checkQuantity(t, "Min", Q(1.5).Min(Q(0.5)), 0.5)
	checkQuantity(t, "Min", Q(0.25).Min(Q(0.5)), 0.25)
}
