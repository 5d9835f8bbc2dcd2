package cgt

import (
	"fmt"
	"strings"
)

// AccountingOrder defines which open lot is matched first against a disposal.
type AccountingOrder int

const (
	// FIFO (First-In, First-Out) matches the oldest open lot first.
	FIFO AccountingOrder = iota
	// LIFO (Last-In, First-Out) matches the newest open lot first.
	LIFO
)

func (o AccountingOrder) String() string {
	switch o {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	default:
		return "unknown"
	}
}

// ParseAccountingOrder parses a string into an AccountingOrder.
func ParseAccountingOrder(s string) (AccountingOrder, error) {
	switch strings.ToLower(s) {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	default:
		return 0, fmt.Errorf("unknown accounting order: %q", s)
	}
}
