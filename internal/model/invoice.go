package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/billing/internal/decimal"
)

// DateLayout is the calendar date format used on the wire
const DateLayout = "2006-01-02"

// Stored precision of line inputs and amounts
const (
	QuantityPlaces  = 3
	UnitPricePlaces = 2
)

// Stored columns are decimal(10,2) for amounts and decimal(10,3) for quantities
var (
	MaxAmount   = decimal.New(1, 8)
	MaxQuantity = decimal.New(1, 7)
)

// Client is the billed party
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	SIRET     string    `gorm:"size:14;not null;uniqueIndex" json:"siret"`
	CreatedAt time.Time `json:"created_at"`
}

// LineItem is one billable entry on an invoice
type LineItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"-"`
	Position  int  `gorm:"not null;default:0" json:"position"`

	Description string          `gorm:"size:500;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,3);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	VATRate     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"vat_rate"`

	// Calculated
	TotalHT  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_ht"`  // round2(Quantity * UnitPrice)
	TotalVAT decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_vat"` // round2(TotalHT * VATRate / 100)
	TotalTTC decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_ttc"` // TotalHT + TotalVAT
}

// Invoice is an issued invoice with its lines and totals
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Number    string    `gorm:"size:32;not null;uniqueIndex" json:"number"`
	Date      time.Time `gorm:"type:date;not null;index" json:"date"`
	CreatedAt time.Time `json:"created_at"`

	ClientID uint   `gorm:"index;not null" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"client"`

	Lines []LineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines"`

	TotalHT  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_ht"`
	TotalVAT decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_vat"`
	TotalTTC decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_ttc"`
}

// Totals holds the three aggregated amounts of an invoice
type Totals struct {
	HT  decimal.Decimal `json:"total_ht"`
	VAT decimal.Decimal `json:"total_vat"`
	TTC decimal.Decimal `json:"total_ttc"`
}

// CheckRange rejects invoice totals too large to be stored
func (t Totals) CheckRange() error {
	if t.TTC.GreaterThanOrEqual(MaxAmount) {
		return NewInvalidInputError("lines", t.TTC.StringFixed(2), "invoice total must stay below 100000000.00")
	}
	return nil
}

// CalculateLine computes HT, VAT and TTC for quantity q, unit price p and rate r (percent).
// Rounding happens once per produced amount; q*p is never pre-rounded.
func CalculateLine(q, p, r decimal.Decimal) (ht, vat, ttc decimal.Decimal, err error) {
	if !money.IsPositive(q) {
		return money.Zero, money.Zero, money.Zero, NewInvalidInputError("quantity", q.String(), "must be greater than zero")
	}
	if !money.IsNonNegative(p) {
		return money.Zero, money.Zero, money.Zero, NewInvalidInputError("unit_price", p.String(), "must be zero or positive")
	}
	if !money.IsNonNegative(r) {
		return money.Zero, money.Zero, money.Zero, NewInvalidInputError("vat_rate", r.String(), "must be zero or positive")
	}
	if money.HasMorePlaces(q, QuantityPlaces) {
		return money.Zero, money.Zero, money.Zero, NewInvalidInputError("quantity", q.String(), "must have at most 3 decimal places")
	}
	if q.GreaterThanOrEqual(MaxQuantity) {
		return money.Zero, money.Zero, money.Zero, NewInvalidInputError("quantity", q.String(), "must be below 10000000")
	}
	if money.HasMorePlaces(p, UnitPricePlaces) {
		return money.Zero, money.Zero, money.Zero, NewInvalidInputError("unit_price", p.String(), "must have at most 2 decimal places")
	}
	if p.GreaterThanOrEqual(MaxAmount) {
		return money.Zero, money.Zero, money.Zero, NewInvalidInputError("unit_price", p.String(), "must be below 100000000.00")
	}

	ht = money.Round2(money.Mul(q, p))
	vat = money.Round2(money.Percent(ht, r))
	ttc = ht.Add(vat)
	if ttc.GreaterThanOrEqual(MaxAmount) {
		return money.Zero, money.Zero, money.Zero, NewInvalidInputError("total_ttc", ttc.StringFixed(2), "line total must stay below 100000000.00")
	}
	return ht, vat, ttc, nil
}

// Calculate recomputes the derived amounts from the line inputs
func (li *LineItem) Calculate() error {
	if strings.TrimSpace(li.Description) == "" {
		return NewInvalidInputError("description", nil, "must not be empty")
	}

	ht, vat, ttc, err := CalculateLine(li.Quantity, li.UnitPrice, li.VATRate)
	if err != nil {
		return err
	}

	li.TotalHT = ht
	li.TotalVAT = vat
	li.TotalTTC = ttc
	return nil
}

// Aggregate sums already computed lines into invoice totals
func Aggregate(lines []LineItem) Totals {
	ht := money.Zero
	vat := money.Zero
	for _, l := range lines {
		ht = ht.Add(l.TotalHT)
		vat = vat.Add(l.TotalVAT)
	}
	return Totals{HT: ht, VAT: vat, TTC: ht.Add(vat)}
}

// CalculateTotals recomputes every line, then the invoice totals.
// Any later change to Lines must go through here again.
func (inv *Invoice) CalculateTotals() error {
	for i := range inv.Lines {
		inv.Lines[i].Position = i
		if err := inv.Lines[i].Calculate(); err != nil {
			return NewLineError(i, err)
		}
	}

	totals := Aggregate(inv.Lines)
	if err := totals.CheckRange(); err != nil {
		return err
	}
	inv.TotalHT = totals.HT
	inv.TotalVAT = totals.VAT
	inv.TotalTTC = totals.TTC
	return nil
}

// Year is the numbering year of the invoice
func (inv *Invoice) Year() int {
	return inv.Date.Year()
}

// NormalizeDate truncates t to its calendar day in UTC
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, NewInvalidInputError("date", s, "expected format YYYY-MM-DD")
	}
	return t, nil
}
