package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AmountDecimals is the number of fractional digits an Amount carries.
const AmountDecimals = 8

// amountScale is 10^AmountDecimals.
const amountScale = 100_000_000

// Amount is a fixed-point quantity of coin, stored as an integer number of
// 10^-8 units to avoid the floating-point drift that a float64 balance
// ledger would accumulate across millions of transactions.
type Amount int64

// NewAmountFromFloat converts a float64 coin amount (as used by the
// reference implementation) into an Amount, rounding to the nearest unit.
func NewAmountFromFloat(f float64) Amount {
	return Amount(math.Round(f * amountScale))
}

// Float64 returns the amount as a float64 number of coins.
func (a Amount) Float64() float64 {
	return float64(a) / amountScale
}

// String renders the amount as a fixed 8-decimal-place string, e.g. "10.00000000".
func (a Amount) String() string {
	neg := a < 0
	v := int64(a)
	if neg {
		v = -v
	}
	whole := v / amountScale
	frac := v % amountScale
	s := fmt.Sprintf("%d.%08d", whole, frac)
	if neg {
		s = "-" + s
	}
	return s
}

// ParseAmount parses a decimal string (e.g. "10", "10.5", "10.00000000")
// into an Amount.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	parts := strings.SplitN(s, ".", 2)
	whole, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	var frac int64
	if len(parts) == 2 {
		fracStr := parts[1]
		if len(fracStr) > AmountDecimals {
			return 0, fmt.Errorf("invalid amount %q: too many fractional digits", s)
		}
		fracStr = fracStr + strings.Repeat("0", AmountDecimals-len(fracStr))
		frac, err = strconv.ParseInt(fracStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
	}
	total := whole*amountScale + frac
	if neg {
		total = -total
	}
	return Amount(total), nil
}

// MarshalJSON encodes the amount as its decimal string form.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a decimal string or JSON number into an amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseAmount(s)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	*a = NewAmountFromFloat(f)
	return nil
}
