package cgt

import (
	"testing"
)

func TestFill(t *testing.T) {
	r := row{"USD": "1000", "AUD": ""}
	fill(r, "USD", "AUD", 0.8)
	if r["AUD"] != "1250" {
		t.Errorf("AUD = %q, want 1250", r["AUD"])
	}

	// An already-present local amount is never overwritten.
	r = row{"USD": "1000", "AUD": "1300"}
	fill(r, "USD", "AUD", 0.8)
	if r["AUD"] != "1300" {
		t.Errorf("AUD = %q, want untouched 1300", r["AUD"])
	}

	// No USD value, nothing to convert.
	r = row{"USD": "", "AUD": ""}
	fill(r, "USD", "AUD", 0.8)
	if r["AUD"] != "" {
		t.Errorf("AUD = %q, want empty", r["AUD"])
	}
}

func TestSortRows(t *testing.T) {
	rows := []row{
		{"Datetime": "2024-01-02 10:00:00", "Comments": "second"},
		{"Datetime": "2024-01-01T23:30:00Z", "Comments": "first"},
		{"Datetime": "2024-01-02 10:00:00", "Comments": "third"},
	}
	sortRows(rows)
	for i, want := range []string{"first", "second", "third"} {
		if rows[i]["Comments"] != want {
			t.Errorf("rows[%d] = %q, want %q", i, rows[i]["Comments"], want)
		}
	}
}

func TestNewTransformer(t *testing.T) {
	cfg := DefaultConfig()
	for _, exchange := range []string{"bitstamp", "exodus", "nexo", "independentreserve", "independent-reserve"} {
		if _, err := NewTransformer(exchange, cfg, nil); err != nil {
			t.Errorf("NewTransformer(%s) failed: %v", exchange, err)
		}
	}
	if _, err := NewTransformer("kraken", cfg, nil); err == nil {
		t.Error("NewTransformer(kraken) accepted an unsupported exchange")
	}
}
