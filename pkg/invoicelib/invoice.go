// Package invoicelib provides a public API for computing French invoices.
//
// It exposes the invoice types, the VAT rate whitelist, the line and invoice
// calculator and the yearly number format, without any persistence.
//
// Example usage:
//
//	calc := invoicelib.NewDefaultCalculator()
//	result, err := calc.Compute([]invoicelib.Line{
//	    {Description: "Consulting", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100), VATRate: invoicelib.VATRate20},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Totals.TTC) // 240
package invoicelib

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/billing/internal/model"
)

// Re-export core types for public API
type (
	Invoice  = model.Invoice
	LineItem = model.LineItem
	Client   = model.Client
	Totals   = model.Totals
	RateSet  = model.RateSet
)

// Re-export VAT rates
var (
	VATRate0   = model.VATRate0
	VATRate5_5 = model.VATRate5_5
	VATRate10  = model.VATRate10
	VATRate20  = model.VATRate20
)

// NumberPrefix starts every invoice number
const NumberPrefix = model.NumberPrefix

// Re-export error types
type (
	NotFoundError       = model.NotFoundError
	DuplicateError      = model.DuplicateError
	InvalidTaxRateError = model.InvalidTaxRateError
	InvalidInputError   = model.InvalidInputError
	InUseError          = model.InUseError
)

// Re-export error kinds for errors.Is
var (
	ErrNotFound       = model.ErrNotFound
	ErrDuplicate      = model.ErrDuplicate
	ErrInvalidTaxRate = model.ErrInvalidTaxRate
	ErrInvalidInput   = model.ErrInvalidInput
	ErrInUse          = model.ErrInUse
)

// DefaultRates returns the standard French set {0, 5.5, 10, 20}
func DefaultRates() RateSet {
	return model.DefaultRates()
}

// NewRateSet builds a custom rate set
func NewRateSet(rates ...decimal.Decimal) RateSet {
	return model.NewRateSet(rates...)
}

// ParseRateSet parses a list such as "0,5.5,10,20"
func ParseRateSet(s string) (RateSet, error) {
	return model.ParseRateSet(s)
}

// CalculateLine returns HT, VAT and TTC for one line
func CalculateLine(quantity, unitPrice, vatRate decimal.Decimal) (ht, vat, ttc decimal.Decimal, err error) {
	return model.CalculateLine(quantity, unitPrice, vatRate)
}

// GenerateNumber formats the next number of date's year given the count already issued
func GenerateNumber(date time.Time, countThisYear int64) string {
	return model.GenerateNumber(date, countThisYear)
}
