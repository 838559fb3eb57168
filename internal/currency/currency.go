// Package currency holds the supported-currency registry and conversion math.
package currency

import (
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/finance-dash/backend/internal/apperrors"
)

// DisplayPrecision is the fractional precision of converted amounts.
const DisplayPrecision = 2

// Registry is the set of currency codes the application accepts, with an
// alias table applied before validation. Codes are held uppercase.
type Registry struct {
	supported map[string]bool
	aliases   map[string]string
	ordered   []string
}

// NewRegistry builds a registry from the configured supported set and aliases.
func NewRegistry(supported []string, aliases map[string]string) *Registry {
	r := &Registry{
		supported: make(map[string]bool, len(supported)),
		aliases:   make(map[string]string, len(aliases)),
	}
	for _, code := range supported {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || r.supported[code] {
			continue
		}
		r.supported[code] = true
		r.ordered = append(r.ordered, code)
	}
	sort.Strings(r.ordered)

	for alias, target := range aliases {
		alias = strings.ToUpper(strings.TrimSpace(alias))
		target = strings.ToUpper(strings.TrimSpace(target))
		if alias != "" && target != "" {
			r.aliases[alias] = target
		}
	}

	return r
}

// Resolve normalizes a raw currency token to a supported code: trims,
// uppercases, applies the alias table, then validates against the supported
// set. Tokens that survive aliasing but are not supported return
// UnsupportedCurrencyError; silent acceptance would poison summaries later.
func (r *Registry) Resolve(token string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(token))
	if mapped, ok := r.aliases[code]; ok {
		code = mapped
	}
	if !r.supported[code] {
		return "", &apperrors.UnsupportedCurrencyError{Value: strings.TrimSpace(token)}
	}
	return code, nil
}

// IsSupported reports whether a code is in the supported set as-is.
func (r *Registry) IsSupported(code string) bool {
	return r.supported[strings.ToUpper(code)]
}

// Supported returns the supported codes in sorted order.
func (r *Registry) Supported() []string {
	out := make([]string, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Fraction returns the native fraction digits for a currency from the ISO
// registry. Codes the registry does not know (crypto tickers, test codes)
// fall back to DisplayPrecision.
func Fraction(code string) int32 {
	if c := money.GetCurrency(strings.ToUpper(code)); c != nil {
		return int32(c.Fraction)
	}
	return DisplayPrecision
}

// Convert converts an amount using a quote-per-base rate, rounding half to
// even at the display precision.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).RoundBank(DisplayPrecision)
}

// RoundNative rounds an amount half-to-even at its currency's native fraction.
func RoundNative(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.RoundBank(Fraction(code))
}
