package cgt

import "fmt"

// Operation is the closed set of economic event kinds a transaction can record.
type Operation int

const (
	// Buy acquires the pair's base asset against its quote asset.
	Buy Operation = iota
	// Sell disposes the pair's base asset against its quote asset.
	Sell
	// Deposit moves an asset in from outside; an asset-increasing deposit creates a lot.
	Deposit
	// Withdrawal moves an asset out without a taxable disposal.
	Withdrawal
	// Loss records an asset confirmed lost or stolen, or an arbitrary fiat loss.
	Loss
	// Gain records an asset-increasing event with a fiat valuation (airdrop, interest).
	Gain
)

func (o Operation) String() string {
	switch o {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case Deposit:
		return "deposit"
	case Withdrawal:
		return "withdrawal"
	case Loss:
		return "loss"
	case Gain:
		return "gain"
	default:
		return "unknown"
	}
}

// IsTrade reports whether the operation exchanges one asset of a pair for the other.
func (o Operation) IsTrade() bool { return o == Buy || o == Sell }

// ParseOperation parses a string into an Operation.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	case "deposit":
		return Deposit, nil
	case "withdrawal":
		return Withdrawal, nil
	case "loss":
		return Loss, nil
	case "gain":
		return Gain, nil
	default:
		return 0, fmt.Errorf("unknown operation: %q", s)
	}
}
