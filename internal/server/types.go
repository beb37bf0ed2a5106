package server

import (
	"time"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/billing/internal/decimal"
	"github.com/rezonia/billing/internal/model"
)

// ClientRequest is the body of client create and update
type ClientRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"required,email"`
	SIRET string `json:"siret" binding:"required"`
}

// LineRequest is one requested invoice line. Amounts accept JSON numbers or strings.
type LineRequest struct {
	Description string           `json:"description" binding:"required"`
	Quantity    *decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   *decimal.Decimal `json:"unit_price" binding:"required"`
	VATRate     *decimal.Decimal `json:"vat_rate" binding:"required"`
}

// CreateInvoiceRequest is the body of invoice creation
type CreateInvoiceRequest struct {
	ClientID uint          `json:"client_id" binding:"required"`
	Date     string        `json:"date" binding:"required"`
	Lines    []LineRequest `json:"lines" binding:"dive"`
}

// ClientResponse is a client as returned by the API
type ClientResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	SIRET     string    `json:"siret"`
	CreatedAt time.Time `json:"created_at"`
}

// LineResponse is an invoice line with its computed amounts
type LineResponse struct {
	Position    int    `json:"position"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	VATRate     string `json:"vat_rate"`
	TotalHT     string `json:"total_ht"`
	TotalVAT    string `json:"total_vat"`
	TotalTTC    string `json:"total_ttc"`
}

// InvoiceResponse is an invoice as returned by the API. Amounts carry two decimals.
type InvoiceResponse struct {
	ID        uint            `json:"id"`
	Number    string          `json:"number"`
	Date      string          `json:"date"`
	Client    *ClientResponse `json:"client,omitempty"`
	ClientID  uint            `json:"client_id"`
	Lines     []LineResponse  `json:"lines"`
	TotalHT   string          `json:"total_ht"`
	TotalVAT  string          `json:"total_vat"`
	TotalTTC  string          `json:"total_ttc"`
	CreatedAt time.Time       `json:"created_at"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Status       int               `json:"status"`
	Error        string            `json:"error"`
	Fields       map[string]string `json:"fields,omitempty"`
	Rate         string            `json:"rate,omitempty"`
	AllowedRates []string          `json:"allowed_rates,omitempty"`
	RequestID    string            `json:"request_id,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

func newClientResponse(c *model.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		SIRET:     c.SIRET,
		CreatedAt: c.CreatedAt,
	}
}

func newClientResponses(clients []model.Client) []ClientResponse {
	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = newClientResponse(&clients[i])
	}
	return out
}

func newInvoiceResponse(inv *model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:        inv.ID,
		Number:    inv.Number,
		Date:      inv.Date.Format(model.DateLayout),
		ClientID:  inv.ClientID,
		Lines:     make([]LineResponse, len(inv.Lines)),
		TotalHT:   money.Format(inv.TotalHT),
		TotalVAT:  money.Format(inv.TotalVAT),
		TotalTTC:  money.Format(inv.TotalTTC),
		CreatedAt: inv.CreatedAt,
	}
	if inv.Client.ID != 0 {
		client := newClientResponse(&inv.Client)
		resp.Client = &client
	}
	for i, l := range inv.Lines {
		resp.Lines[i] = LineResponse{
			Position:    l.Position,
			Description: l.Description,
			Quantity:    l.Quantity.String(),
			UnitPrice:   money.Format(l.UnitPrice),
			VATRate:     l.VATRate.String(),
			TotalHT:     money.Format(l.TotalHT),
			TotalVAT:    money.Format(l.TotalVAT),
			TotalTTC:    money.Format(l.TotalTTC),
		}
	}
	return resp
}

func newInvoiceResponses(invoices []model.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = newInvoiceResponse(&invoices[i])
	}
	return out
}
