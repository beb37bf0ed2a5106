package invoicelib

import (
	"encoding/json"
	"io"

	"github.com/shopspring/decimal"

	"github.com/rezonia/billing/internal/model"
)

// Line is one line to compute. Amounts accept JSON numbers or strings.
type Line struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
}

// Document is the JSON input of ComputeJSON
type Document struct {
	Lines []Line `json:"lines"`
}

// Result holds the computed lines and their totals
type Result struct {
	Lines  []LineItem `json:"lines"`
	Totals Totals     `json:"totals"`
}

// Calculator computes invoice amounts offline against a rate set
type Calculator struct {
	rates RateSet
}

// NewCalculator creates a calculator that accepts only rates
func NewCalculator(rates RateSet) *Calculator {
	return &Calculator{rates: rates}
}

// NewDefaultCalculator creates a calculator with the standard French rates
func NewDefaultCalculator() *Calculator {
	return NewCalculator(DefaultRates())
}

// Rates returns the accepted VAT rates
func (c *Calculator) Rates() RateSet {
	return c.rates
}

// Compute validates every rate, then computes each line and the totals.
// Nothing is computed when any rate is rejected.
func (c *Calculator) Compute(lines []Line) (*Result, error) {
	if len(lines) == 0 {
		return nil, model.NewInvalidInputError("lines", nil, "an invoice needs at least one line")
	}

	items := make([]LineItem, len(lines))
	for i, l := range lines {
		items[i] = LineItem{
			Position:    i,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			VATRate:     l.VATRate,
		}
	}

	if err := c.rates.ValidateLines(items); err != nil {
		return nil, err
	}
	for i := range items {
		if err := items[i].Calculate(); err != nil {
			return nil, model.NewLineError(i, err)
		}
	}

	totals := model.Aggregate(items)
	if err := totals.CheckRange(); err != nil {
		return nil, err
	}
	return &Result{Lines: items, Totals: totals}, nil
}

// ComputeJSON decodes a Document from r and computes it
func (c *Calculator) ComputeJSON(r io.Reader) (*Result, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, model.NewInvalidInputError("document", nil, err.Error())
	}
	return c.Compute(doc.Lines)
}
