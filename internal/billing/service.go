// Package billing assembles invoices: it validates lines against the allowed VAT
// rates, computes line and invoice totals and assigns the yearly invoice number.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rezonia/billing/internal/model"
)

// Service orchestrates client and invoice operations over a Repository
type Service struct {
	repo       Repository
	rates      model.RateSet
	logger     *zap.Logger
	maxRetries int
}

// Option configures the service
type Option func(*Service)

// WithRates replaces the default VAT rate set
func WithRates(rates model.RateSet) Option {
	return func(s *Service) {
		s.rates = rates
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxRetries sets how many times a numbering collision is retried
func WithMaxRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// NewService creates a new billing service
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		rates:      model.DefaultRates(),
		logger:     zap.NewNop(),
		maxRetries: DefaultMaxRetries,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Rates returns the VAT rates the service accepts
func (s *Service) Rates() model.RateSet {
	return s.rates
}

// LineInput is one requested invoice line
type LineInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
}

// CreateInvoiceInput is everything needed to issue an invoice
type CreateInvoiceInput struct {
	ClientID uint
	Date     time.Time
	Lines    []LineInput
}

// CreateInvoice validates, numbers, totals and saves a new invoice.
// Every business-rule rejection happens before the store is written to.
func (s *Service) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*model.Invoice, error) {
	client, err := s.repo.ClientByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}

	if len(in.Lines) == 0 {
		return nil, model.NewInvalidInputError("lines", nil, "an invoice needs at least one line")
	}
	if in.Date.IsZero() {
		return nil, model.NewInvalidInputError("date", nil, "is required")
	}

	inv := &model.Invoice{
		Date:     model.NormalizeDate(in.Date),
		ClientID: client.ID,
		Client:   *client,
		Lines:    make([]model.LineItem, len(in.Lines)),
	}
	for i, l := range in.Lines {
		inv.Lines[i] = model.LineItem{
			Position:    i,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			VATRate:     l.VATRate,
		}
	}

	if err := s.rates.ValidateLines(inv.Lines); err != nil {
		s.logger.Info("invoice rejected",
			zap.Uint("client_id", client.ID),
			zap.Error(err),
		)
		return nil, err
	}

	for i := range inv.Lines {
		if err := inv.Lines[i].Calculate(); err != nil {
			return nil, model.NewLineError(i, err)
		}
	}

	totals := model.Aggregate(inv.Lines)
	if err := totals.CheckRange(); err != nil {
		return nil, err
	}
	inv.TotalHT = totals.HT
	inv.TotalVAT = totals.VAT
	inv.TotalTTC = totals.TTC

	err = withRetries(ctx, s.maxRetries, isNumberCollision, func() error {
		return s.repo.WithinTx(ctx, func(tx Repository) error {
			count, err := tx.CountInvoicesByYear(ctx, inv.Year())
			if err != nil {
				return fmt.Errorf("count invoices of %d: %w", inv.Year(), err)
			}

			inv.ID = 0
			for i := range inv.Lines {
				inv.Lines[i].ID = 0
				inv.Lines[i].InvoiceID = 0
			}
			inv.Number = model.GenerateNumber(inv.Date, count)

			return tx.SaveInvoice(ctx, inv)
		})
	})
	if err != nil {
		if isNumberCollision(err) {
			s.logger.Warn("invoice number still colliding after retries",
				zap.String("number", inv.Number),
				zap.Int("max_retries", s.maxRetries),
			)
		}
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.Uint("id", inv.ID),
		zap.String("number", inv.Number),
		zap.Uint("client_id", inv.ClientID),
		zap.String("total_ttc", inv.TotalTTC.StringFixed(2)),
	)
	return inv, nil
}

// GetInvoice returns one invoice with its client and lines
func (s *Service) GetInvoice(ctx context.Context, id uint) (*model.Invoice, error) {
	return s.repo.InvoiceByID(ctx, id)
}

// ExportInvoice returns the complete invoice for JSON export
func (s *Service) ExportInvoice(ctx context.Context, id uint) (*model.Invoice, error) {
	return s.GetInvoice(ctx, id)
}

// ListInvoices returns every invoice
func (s *Service) ListInvoices(ctx context.Context) ([]model.Invoice, error) {
	return s.repo.ListInvoices(ctx, InvoiceFilter{})
}

// InvoicesByClient returns the invoices of an existing client
func (s *Service) InvoicesByClient(ctx context.Context, clientID uint) ([]model.Invoice, error) {
	if _, err := s.repo.ClientByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListInvoices(ctx, InvoiceFilter{ClientID: clientID})
}

// InvoicesByDate returns the invoices dated on day
func (s *Service) InvoicesByDate(ctx context.Context, day time.Time) ([]model.Invoice, error) {
	day = model.NormalizeDate(day)
	return s.repo.ListInvoices(ctx, InvoiceFilter{From: day, To: day})
}

// InvoicesByPeriod returns the invoices dated between from and to, both included
func (s *Service) InvoicesByPeriod(ctx context.Context, from, to time.Time) ([]model.Invoice, error) {
	from, to = model.NormalizeDate(from), model.NormalizeDate(to)
	if from.After(to) {
		return nil, model.NewInvalidInputError("period", fmt.Sprintf("%s..%s", from.Format(model.DateLayout), to.Format(model.DateLayout)), "start must not be after end")
	}
	return s.repo.ListInvoices(ctx, InvoiceFilter{From: from, To: to})
}
