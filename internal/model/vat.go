package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Standard French VAT rates, in percent
var (
	VATRate0   = decimal.Zero
	VATRate5_5 = decimal.RequireFromString("5.5")
	VATRate10  = decimal.NewFromInt(10)
	VATRate20  = decimal.NewFromInt(20)
)

// RateSet is an ordered set of allowed VAT rates. The zero value allows nothing.
type RateSet struct {
	rates []decimal.Decimal
}

// DefaultRates returns the standard set {0, 5.5, 10, 20}
func DefaultRates() RateSet {
	return NewRateSet(VATRate0, VATRate5_5, VATRate10, VATRate20)
}

// NewRateSet builds a set from rates, dropping decimal duplicates and keeping first-seen order
func NewRateSet(rates ...decimal.Decimal) RateSet {
	set := RateSet{rates: make([]decimal.Decimal, 0, len(rates))}
	for _, r := range rates {
		if !set.Contains(r) {
			set.rates = append(set.rates, r)
		}
	}
	return set
}

// ParseRateSet parses a comma separated list such as "0,5.5,10,20"
func ParseRateSet(s string) (RateSet, error) {
	var rates []decimal.Decimal
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r, err := decimal.NewFromString(part)
		if err != nil {
			return RateSet{}, fmt.Errorf("parse VAT rate %q: %w", part, err)
		}
		if r.IsNegative() {
			return RateSet{}, fmt.Errorf("VAT rate %q must not be negative", part)
		}
		rates = append(rates, r)
	}
	if len(rates) == 0 {
		return RateSet{}, fmt.Errorf("no VAT rates in %q", s)
	}
	return NewRateSet(rates...), nil
}

// Contains reports whether rate is decimally equal to a member (5.50 == 5.5)
func (s RateSet) Contains(rate decimal.Decimal) bool {
	for _, r := range s.rates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}

// Rates returns a copy of the allowed rates in order
func (s RateSet) Rates() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.rates))
	copy(out, s.rates)
	return out
}

// Validate fails with InvalidTaxRateError when rate is not allowed
func (s RateSet) Validate(rate decimal.Decimal) error {
	if s.Contains(rate) {
		return nil
	}
	return NewInvalidTaxRateError(rate, s.Rates())
}

// ValidateLines checks every line and returns the first failure
func (s RateSet) ValidateLines(lines []LineItem) error {
	for _, l := range lines {
		if err := s.Validate(l.VATRate); err != nil {
			return err
		}
	}
	return nil
}

func (s RateSet) String() string {
	parts := make([]string, len(s.rates))
	for i, r := range s.rates {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}
