package cgt

import (
	"bytes"
	"strings"
	"testing"
)

const bitstampLog = `ID,Account,Type,Subtype,Datetime,Amount,Amount currency,Value,Value currency,Rate,Rate currency,Fee,Fee currency,Order ID
3,Main,Withdrawal,,2021-08-03 09:00:00,0.2,BTC,,,,,0.0005,BTC,
1,Main,Market,Buy,2021-08-01 10:30:00,0.5,BTC,15000,USD,30000,USD,25,USD,42
2,Main,Staking,,2021-08-02 08:00:00,0.001,ETH,,,,,,,
`

func TestBitstampTransformer(t *testing.T) {
	cfg := DefaultConfig()
	// No rate provider: local-fiat backfill is skipped.
	transformer := &BitstampTransformer{cfg: cfg}

	var out bytes.Buffer
	if err := transformer.Transform(&out, strings.NewReader(bitstampLog)); err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	// The output is the canonical CSV: it must import cleanly.
	txs, err := ImportTransactions(strings.NewReader(out.String()), cfg)
	if err != nil {
		t.Fatalf("importing transformed output: %v", err)
	}
	// The staking row is skipped; the rest is sorted by timestamp.
	if len(txs) != 2 {
		t.Fatalf("transformed %d transactions, want 2", len(txs))
	}

	trade := txs[0]
	if trade.Operation != Buy || trade.Pair != "btcusd" || trade.Exchange != "Bitstamp" {
		t.Errorf("trade = %s %s on %s, want buy btcusd on Bitstamp", trade.Operation, trade.Pair, trade.Exchange)
	}
	checkQuantity(t, "btc amount", trade.Amount("btc"), 0.5)
	checkQuantity(t, "usd amount", trade.Amount("usd"), 15000)
	checkQuantity(t, "usd fee", trade.Fee("usd"), 25)
	if trade.Notes != "Order ID: 42" {
		t.Errorf("Notes = %q", trade.Notes)
	}

	withdrawal := txs[1]
	if withdrawal.Operation != Withdrawal {
		t.Errorf("second transaction = %s, want withdrawal", withdrawal.Operation)
	}
	checkQuantity(t, "withdrawn btc", withdrawal.Amount("btc"), 0.2)
	checkQuantity(t, "btc fee", withdrawal.Fee("btc"), 0.0005)
}
