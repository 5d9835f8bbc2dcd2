package cgt

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Pair is the decomposition of a trading pair symbol into its base and quote
// assets. A sell disposes the base and acquires the quote; a buy is the
// reverse.
type Pair struct {
	Base  string
	Quote string
}

// Config is the immutable run configuration. It is constructed once and passed
// into every component that needs it; the core never mutates it.
type Config struct {
	Assets       []string        // tracked asset symbols, lower case
	Fiats        []string        // fiat currency symbols, lower case
	LocalFiat    string          // reporting fiat symbol, lower case (e.g. "aud")
	Pairs        map[string]Pair // pair symbol -> decomposition
	FYStartMonth time.Month      // first month of the financial year
	Order        AccountingOrder // lot matching order
	Threshold    Quantity        // residual volume below this is treated as zero
}

// DefaultConfig returns the configuration of the historical deployment:
// four tracked assets, AUD reporting with a July financial-year start,
// oldest-first matching and a 1e-8 volume threshold.
func DefaultConfig() Config {
	assets := []string{"btc", "ltc", "nmc", "eth"}
	fiats := []string{"usd", "aud"}
	pairs := map[string]Pair{
		"btcaud": {"btc", "aud"},
		"btcusd": {"btc", "usd"},
		"ltcusd": {"ltc", "usd"},
		"ltcbtc": {"ltc", "btc"},
		"nmcusd": {"nmc", "usd"},
		"ethusd": {"eth", "usd"},
		"ethbtc": {"eth", "btc"},
	}
	return Config{
		Assets:       assets,
		Fiats:        fiats,
		LocalFiat:    "aud",
		Pairs:        pairs,
		FYStartMonth: time.July,
		Order:        FIFO,
		Threshold:    Q(decimal.New(1, -8)),
	}
}

// IsAsset reports whether the symbol is a tracked asset.
func (c Config) IsAsset(symbol string) bool { return slices.Contains(c.Assets, symbol) }

// IsFiat reports whether the symbol is a known fiat currency.
func (c Config) IsFiat(symbol string) bool { return slices.Contains(c.Fiats, symbol) }

// CurrencyCode returns the reporting fiat as an upper-case ISO code for Money.
func (c Config) CurrencyCode() string { return strings.ToUpper(c.LocalFiat) }

// Validate checks internal consistency of the configuration.
func (c Config) Validate() error {
	if c.LocalFiat == "" || !c.IsFiat(c.LocalFiat) {
		return fmt.Errorf("local fiat %q is not in the fiat vocabulary", c.LocalFiat)
	}
	if c.FYStartMonth < time.January || c.FYStartMonth > time.December {
		return fmt.Errorf("invalid financial-year start month: %d", c.FYStartMonth)
	}
	if c.Threshold.IsNegative() || c.Threshold.IsZero() {
		return fmt.Errorf("precision threshold must be positive, got %s", c.Threshold)
	}
	for symbol, pair := range c.Pairs {
		for _, side := range []string{pair.Base, pair.Quote} {
			if !c.IsAsset(side) && !c.IsFiat(side) {
				return fmt.Errorf("pair %q references unknown symbol %q", symbol, side)
			}
		}
	}
	return nil
}

// jsonConfig is the on-disk shape of a configuration file.
type jsonConfig struct {
	Assets       []string            `json:"assets"`
	Fiats        []string            `json:"fiats"`
	LocalFiat    string              `json:"local-fiat"`
	Pairs        map[string][]string `json:"pairs"`
	FYStartMonth int                 `json:"financial-year-start"`
	Order        string              `json:"order"`
	Threshold    string              `json:"threshold"`
}

// ParseConfig reads a configuration from 'r'. Missing fields keep their
// DefaultConfig value.
func ParseConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()
	var jc jsonConfig
	if err := json.NewDecoder(r).Decode(&jc); err != nil {
		return Config{}, fmt.Errorf("cannot parse config: %w", err)
	}
	if jc.Assets != nil {
		c.Assets = jc.Assets
	}
	if jc.Fiats != nil {
		c.Fiats = jc.Fiats
	}
	if jc.LocalFiat != "" {
		c.LocalFiat = strings.ToLower(jc.LocalFiat)
	}
	if jc.Pairs != nil {
		c.Pairs = make(map[string]Pair, len(jc.Pairs))
		for symbol, sides := range jc.Pairs {
			if len(sides) != 2 {
				return Config{}, fmt.Errorf("pair %q must have exactly a base and a quote, got %v", symbol, sides)
			}
			c.Pairs[strings.ToLower(symbol)] = Pair{Base: strings.ToLower(sides[0]), Quote: strings.ToLower(sides[1])}
		}
	}
	if jc.FYStartMonth != 0 {
		c.FYStartMonth = time.Month(jc.FYStartMonth)
	}
	if jc.Order != "" {
		order, err := ParseAccountingOrder(jc.Order)
		if err != nil {
			return Config{}, err
		}
		c.Order = order
	}
	if jc.Threshold != "" {
		d, err := decimal.NewFromString(jc.Threshold)
		if err != nil {
			return Config{}, fmt.Errorf("invalid threshold %q: %w", jc.Threshold, err)
		}
		c.Threshold = Q(d)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads a configuration file from disk.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot open config file %q: %w", path, err)
	}
	defer f.Close()
	return ParseConfig(f)
}
