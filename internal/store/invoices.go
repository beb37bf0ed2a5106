package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rezonia/billing/internal/billing"
	"github.com/rezonia/billing/internal/model"
)

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Client").Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

func (s *Store) InvoiceByID(ctx context.Context, id uint) (*model.Invoice, error) {
	var inv model.Invoice
	if err := withDetails(s.db.WithContext(ctx)).First(&inv, id).Error; err != nil {
		return nil, notFound(err, "invoice", id)
	}
	return &inv, nil
}

// ListInvoices returns the invoices matching filter, oldest first
func (s *Store) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) ([]model.Invoice, error) {
	q := withDetails(s.db.WithContext(ctx))
	if filter.ClientID != 0 {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if !filter.From.IsZero() {
		q = q.Where("date >= ?", model.NormalizeDate(filter.From))
	}
	if !filter.To.IsZero() {
		q = q.Where("date < ?", model.NormalizeDate(filter.To).AddDate(0, 0, 1))
	}

	var invoices []model.Invoice
	if err := q.Order("date").Order("id").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// CountInvoicesByYear counts invoices dated within year
func (s *Store) CountInvoicesByYear(ctx context.Context, year int) (int64, error) {
	if err := s.lockNumbering(ctx, year); err != nil {
		return 0, err
	}

	start, end := model.YearBounds(year)
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("date >= ? AND date < ?", start, end).
		Count(&n).Error
	return n, err
}

func (s *Store) CountInvoicesByClient(ctx context.Context, clientID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Invoice{}).Where("client_id = ?", clientID).Count(&n).Error
	return n, err
}

// SaveInvoice inserts the invoice and its lines. The client row is left untouched.
func (s *Store) SaveInvoice(ctx context.Context, inv *model.Invoice) error {
	err := s.db.WithContext(ctx).Omit("Client").Create(inv).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		s.logger.Debug("invoice number taken", zap.String("number", inv.Number))
		return model.NewDuplicateError("invoice", "number", inv.Number)
	}
	return err
}
