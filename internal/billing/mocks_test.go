package billing_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rezonia/billing/internal/billing"
	"github.com/rezonia/billing/internal/model"
)

// --- Mocks ---

// MockRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ClientByID(ctx context.Context, id uint) (*model.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Client), args.Error(1)
}

func (m *MockRepository) CountInvoicesByYear(ctx context.Context, year int) (int64, error) {
	args := m.Called(ctx, year)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) SaveInvoice(ctx context.Context, inv *model.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockRepository) ListClients(ctx context.Context) ([]model.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Client), args.Error(1)
}

func (m *MockRepository) ClientExistsByEmail(ctx context.Context, email string, exceptID uint) (bool, error) {
	args := m.Called(ctx, email, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ClientExistsBySIRET(ctx context.Context, siret string, exceptID uint) (bool, error) {
	args := m.Called(ctx, siret, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SaveClient(ctx context.Context, c *model.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) DeleteClient(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) InvoiceByID(ctx context.Context, id uint) (*model.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockRepository) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) ([]model.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invoice), args.Error(1)
}

func (m *MockRepository) CountInvoicesByClient(ctx context.Context, clientID uint) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

// WithinTx runs fn against the mock itself; expectations are set on the inner calls.
func (m *MockRepository) WithinTx(ctx context.Context, fn func(tx billing.Repository) error) error {
	return fn(m)
}
