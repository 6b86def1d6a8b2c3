// internal/token/units.go
package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals is the base-unit precision of every launched token and of the
// native currency.
const Decimals = 18

// UnitScale is 10^Decimals, the number of base units in one whole token.
var UnitScale = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Decimals))

var (
	ErrInvalidAmount  = errors.New("invalid decimal amount")
	ErrAmountOverflow = errors.New("amount overflows 256 bits")
)

// ParseUnits converts a decimal string like "0.0001" or "1000000" into
// base units (the equivalent of parseEther). At most Decimals fractional
// digits are allowed; no rounding is performed.
func ParseUnits(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if len(frac) > Decimals {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, s, Decimals)
	}
	if whole == "" {
		whole = "0"
	}
	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	// Right-pad the fraction to Decimals digits and parse the whole thing
	// as a single integer.
	padded := whole + frac + strings.Repeat("0", Decimals-len(frac))
	padded = strings.TrimLeft(padded, "0")
	if padded == "" {
		return uint256.NewInt(0), nil
	}
	v, err := uint256.FromDecimal(padded)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrAmountOverflow, s)
	}
	return v, nil
}

// FormatUnits renders base units as a decimal string, trimming trailing
// fractional zeros.
func FormatUnits(v *uint256.Int) string {
	q := new(uint256.Int)
	r := new(uint256.Int)
	q.DivMod(v, UnitScale, r)

	if r.IsZero() {
		return q.Dec()
	}
	frac := fmt.Sprintf("%018s", r.Dec())
	frac = strings.TrimRight(frac, "0")
	return q.Dec() + "." + frac
}

// Cost computes amount * pricePerToken / UnitScale, the exact native
// currency required for amount base units at the given price.
func Cost(amount, pricePerToken *uint256.Int) (*uint256.Int, error) {
	product := new(uint256.Int)
	if _, overflow := product.MulOverflow(amount, pricePerToken); overflow {
		return nil, fmt.Errorf("%w: %s * %s", ErrAmountOverflow, amount.Dec(), pricePerToken.Dec())
	}
	return product.Div(product, UnitScale), nil
}
