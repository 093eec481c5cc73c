// Package quote derives proposal totals and formats catalog prices.
// Totals are never stored; callers recompute them from line items.
package quote

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Line is a priced line item
type Line interface {
	Qty() int64
	UnitPrice() int64
}

// LineTotal returns quantity * price, treating negative inputs as 0.
// The product saturates at math.MaxInt64 instead of wrapping.
func LineTotal(quantity, price int64) int64 {
	if quantity <= 0 || price <= 0 {
		return 0
	}
	if quantity > math.MaxInt64/price {
		return math.MaxInt64
	}
	return quantity * price
}

// ProposalTotal sums the line totals of all items, saturating at math.MaxInt64
func ProposalTotal[L Line](items []L) int64 {
	var total int64
	for _, it := range items {
		line := LineTotal(it.Qty(), it.UnitPrice())
		if total > math.MaxInt64-line {
			return math.MaxInt64
		}
		total += line
	}
	return total
}

// CatalogPrice returns the display price of a catalog item as-is
func CatalogPrice(price int64) int64 {
	return Coerce(price)
}

// Coerce clamps negative amounts to 0
func Coerce(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// Parse converts free-form numeric input to a non-negative whole amount.
// Anything that is not a number, or is negative, yields 0. Fractions are truncated.
func Parse(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Coerce(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}

// Amount is a non-negative whole amount that decodes leniently from JSON.
// Numbers, numeric strings and null are accepted; invalid or negative input becomes 0.
type Amount int64

// Int64 returns the amount as int64
func (a Amount) Int64() int64 {
	return int64(a)
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		*a = Amount(Parse(s))
		return nil
	}
	*a = Amount(Parse(string(data)))
	return nil
}

// Format renders an amount with dot thousands separators and the dong sign,
// e.g. 15500000 -> "15.500.000 ₫"
func Format(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	pre := len(digits) % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
	}
	for i := pre; i < len(digits); i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	b.WriteString(" ₫")
	return b.String()
}
