package billing

import (
	"context"
	"time"

	"github.com/rezonia/billing/internal/model"
)

// ClientLookup resolves the client an invoice is issued to
type ClientLookup interface {
	// ClientByID returns a *model.NotFoundError when the client does not exist
	ClientByID(ctx context.Context, id uint) (*model.Client, error)
}

// InvoiceCounter counts invoices already issued in a calendar year
type InvoiceCounter interface {
	CountInvoicesByYear(ctx context.Context, year int) (int64, error)
}

// InvoiceStore persists a fully assembled invoice in one atomic write.
// It assigns IDs and reports a number collision as a *model.DuplicateError.
type InvoiceStore interface {
	SaveInvoice(ctx context.Context, inv *model.Invoice) error
}

// InvoiceFilter narrows invoice listings. Zero fields do not filter.
// From and To are inclusive calendar dates.
type InvoiceFilter struct {
	ClientID uint
	From     time.Time
	To       time.Time
}

// Repository is everything the service needs from persistence
type Repository interface {
	ClientLookup
	InvoiceCounter
	InvoiceStore

	ListClients(ctx context.Context) ([]model.Client, error)
	ClientExistsByEmail(ctx context.Context, email string, exceptID uint) (bool, error)
	ClientExistsBySIRET(ctx context.Context, siret string, exceptID uint) (bool, error)
	SaveClient(ctx context.Context, c *model.Client) error
	DeleteClient(ctx context.Context, id uint) error

	InvoiceByID(ctx context.Context, id uint) (*model.Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, error)
	CountInvoicesByClient(ctx context.Context, clientID uint) (int64, error)

	// WithinTx runs fn in a transaction that serializes invoice numbering per year.
	// fn must use the Repository it is given.
	WithinTx(ctx context.Context, fn func(tx Repository) error) error
}
