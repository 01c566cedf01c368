package pricing

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrInsufficientCash  = errors.New("cash received is less than the amount due")
	ErrInvalidCashAmount = errors.New("invalid cash amount")
)

// LinePrice is (base unit + variant additional) * qty in minor units.
func LinePrice(unitPrice, variantPrice int64, qty int) int64 {
	return (unitPrice + variantPrice) * int64(qty)
}

// Totals carries an order's money figures. Authoritative marks figures that
// came from the backend; those always win over a local recomputation.
type Totals struct {
	Gross         int64
	Discount      int64
	Net           int64
	Authoritative bool
}

// Local wraps a client-side subtotal. No discount is modelled locally; the
// backend owns promotion evaluation.
func Local(gross int64) Totals {
	return Totals{Gross: gross, Net: gross}
}

// Server wraps backend-provided totals.
func Server(gross, discount, net int64) Totals {
	return Totals{Gross: gross, Discount: discount, Net: net, Authoritative: true}
}

// Merge resolves optimistic-vs-authoritative figures: whenever the backend
// has spoken, its totals replace the local ones entirely.
func Merge(local, server Totals) Totals {
	if server.Authoritative {
		return server
	}
	return local
}

// ChangeDue validates a cash payment. It blocks with ErrInsufficientCash
// when cashReceived < net instead of clamping the shortfall away.
func ChangeDue(cashReceived, net int64) (int64, error) {
	if cashReceived < net {
		return 0, ErrInsufficientCash
	}
	return cashReceived - net, nil
}

// ParseCashAmount parses the cashier's numeric input. The terminal UI sends
// amounts as strings ("100000"); thousand separators ("100.000") are
// tolerated since cash drawers in the field type them.
func ParseCashAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrInvalidCashAmount
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, ErrInvalidCashAmount
	}
	return n, nil
}
