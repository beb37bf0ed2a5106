package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rezonia/billing/internal/billing"
	"github.com/rezonia/billing/internal/server"
	"github.com/rezonia/billing/internal/store"
)

func newTestServer(t *testing.T, opts ...server.Option) *server.Server {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	st, err := store.Open(store.DriverSQLite, dsn, zap.NewNop(), false)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	config := &server.Config{
		Address:        ":8080",
		RequestTimeout: 5 * time.Second,
	}
	return server.NewServer(config, billing.NewService(st), zap.NewNop(), opts...)
}

func do(t *testing.T, srv *server.Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func createClient(t *testing.T, srv *server.Server) server.ClientResponse {
	t.Helper()
	w := do(t, srv, http.MethodPost, "/api/v1/clients", map[string]string{
		"name":  "ACME SARL",
		"email": "contact@acme.fr",
		"siret": "12345678901234",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[server.ClientResponse](t, w)
}

func invoiceBody(clientID uint, date string, rate interface{}) map[string]interface{} {
	return map[string]interface{}{
		"client_id": clientID,
		"date":      date,
		"lines": []map[string]interface{}{
			{"description": "Consulting", "quantity": 2, "unit_price": "100.00", "vat_rate": rate},
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decode[map[string]interface{}](t, w)
	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["time"])
}

func TestHealthEndpoint_Unavailable(t *testing.T) {
	srv := newTestServer(t, server.WithHealthCheck(func(context.Context) error {
		return errors.New("db down")
	}))

	w := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCreateClient(t *testing.T) {
	srv := newTestServer(t)

	c := createClient(t, srv)
	assert.NotZero(t, c.ID)
	assert.Equal(t, "contact@acme.fr", c.Email)

	w := do(t, srv, http.MethodPost, "/api/v1/clients", map[string]string{
		"name":  "Other",
		"email": "contact@acme.fr",
		"siret": "99999999999999",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateClient_Validation(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/clients", map[string]string{
		"name":  "ACME",
		"email": "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[server.ErrorResponse](t, w)
	assert.Equal(t, "validation failed", resp.Error)
	assert.Contains(t, resp.Fields, "email")
	assert.Contains(t, resp.Fields, "siret")
}

func TestClientLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := createClient(t, srv)
	path := fmt.Sprintf("/api/v1/clients/%d", c.ID)

	w := do(t, srv, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodPut, path, map[string]string{
		"name":  "ACME SAS",
		"email": "contact@acme.fr",
		"siret": "12345678901234",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ACME SAS", decode[server.ClientResponse](t, w).Name)

	w = do(t, srv, http.MethodGet, "/api/v1/clients", nil)
	assert.Len(t, decode[[]server.ClientResponse](t, w), 1)

	w = do(t, srv, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, srv, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetClient_BadID(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/v1/clients/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateInvoice(t *testing.T) {
	srv := newTestServer(t)
	c := createClient(t, srv)

	w := do(t, srv, http.MethodPost, "/api/v1/invoices", invoiceBody(c.ID, "2024-03-15", 20))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	inv := decode[server.InvoiceResponse](t, w)
	assert.Equal(t, "FAC-2024-0001", inv.Number)
	assert.Equal(t, "2024-03-15", inv.Date)
	assert.Equal(t, "200.00", inv.TotalHT)
	assert.Equal(t, "40.00", inv.TotalVAT)
	assert.Equal(t, "240.00", inv.TotalTTC)
	require.Len(t, inv.Lines, 1)
	assert.Equal(t, "240.00", inv.Lines[0].TotalTTC)
	require.NotNil(t, inv.Client)
	assert.Equal(t, c.ID, inv.Client.ID)
	assert.Equal(t, fmt.Sprintf("/api/v1/invoices/%d", inv.ID), w.Header().Get("Location"))

	w = do(t, srv, http.MethodPost, "/api/v1/invoices", invoiceBody(c.ID, "2024-03-16", "5.50"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "FAC-2024-0002", decode[server.InvoiceResponse](t, w).Number)
}

func TestCreateInvoice_RejectedRate(t *testing.T) {
	srv := newTestServer(t)
	c := createClient(t, srv)

	w := do(t, srv, http.MethodPost, "/api/v1/invoices", invoiceBody(c.ID, "2024-03-15", 15))
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[server.ErrorResponse](t, w)
	assert.Equal(t, "15", resp.Rate)
	assert.Equal(t, []string{"0", "5.5", "10", "20"}, resp.AllowedRates)
	assert.Contains(t, resp.Error, "VAT rate not allowed")
}

func TestCreateInvoice_Errors(t *testing.T) {
	srv := newTestServer(t)
	c := createClient(t, srv)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"unknown client", invoiceBody(999, "2024-03-15", 20), http.StatusNotFound},
		{"bad date", invoiceBody(c.ID, "15/03/2024", 20), http.StatusBadRequest},
		{"missing client", invoiceBody(0, "2024-03-15", 20), http.StatusBadRequest},
		{"no lines", map[string]interface{}{"client_id": c.ID, "date": "2024-03-15", "lines": []interface{}{}}, http.StatusBadRequest},
		{"zero quantity", map[string]interface{}{
			"client_id": c.ID,
			"date":      "2024-03-15",
			"lines": []map[string]interface{}{
				{"description": "X", "quantity": 0, "unit_price": 10, "vat_rate": 20},
			},
		}, http.StatusBadRequest},
		{"malformed json", "{", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, "/api/v1/invoices", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := do(t, srv, http.MethodGet, "/api/v1/invoices", nil)
	assert.Empty(t, decode[[]server.InvoiceResponse](t, w), "rejected invoices are never stored")
}

func TestCreateInvoice_MissingLineField(t *testing.T) {
	srv := newTestServer(t)
	c := createClient(t, srv)

	w := do(t, srv, http.MethodPost, "/api/v1/invoices", map[string]interface{}{
		"client_id": c.ID,
		"date":      "2024-03-15",
		"lines": []map[string]interface{}{
			{"description": "X", "unit_price": 10, "vat_rate": 20},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[server.ErrorResponse](t, w)
	assert.Equal(t, "is required", resp.Fields["lines[0].quantity"])
}

func TestCreateInvoice_LineFieldPath(t *testing.T) {
	srv := newTestServer(t)
	c := createClient(t, srv)

	w := do(t, srv, http.MethodPost, "/api/v1/invoices", map[string]interface{}{
		"client_id": c.ID,
		"date":      "2024-03-15",
		"lines": []map[string]interface{}{
			{"description": "Consulting", "quantity": 1, "unit_price": "10.00", "vat_rate": 20},
			{"description": "Rounding", "quantity": 3, "unit_price": "0.125", "vat_rate": 20},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	resp := decode[server.ErrorResponse](t, w)
	assert.Equal(t, "must have at most 2 decimal places", resp.Fields["lines[1].unit_price"])
	assert.Contains(t, resp.Error, "line 2")
}

func TestInvoiceQueries(t *testing.T) {
	srv := newTestServer(t)
	c := createClient(t, srv)

	for _, date := range []string{"2024-03-01", "2024-03-15", "2024-04-02"} {
		w := do(t, srv, http.MethodPost, "/api/v1/invoices", invoiceBody(c.ID, date, 20))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := do(t, srv, http.MethodGet, "/api/v1/invoices", nil)
	assert.Len(t, decode[[]server.InvoiceResponse](t, w), 3)

	w = do(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/invoices/client/%d", c.ID), nil)
	assert.Len(t, decode[[]server.InvoiceResponse](t, w), 3)

	w = do(t, srv, http.MethodGet, "/api/v1/invoices/client/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/invoices/date/2024-03-15", nil)
	byDate := decode[[]server.InvoiceResponse](t, w)
	require.Len(t, byDate, 1)
	assert.Equal(t, "FAC-2024-0002", byDate[0].Number)

	w = do(t, srv, http.MethodGet, "/api/v1/invoices/period?from=2024-03-01&to=2024-03-31", nil)
	assert.Len(t, decode[[]server.InvoiceResponse](t, w), 2)

	w = do(t, srv, http.MethodGet, "/api/v1/invoices/period?from=2024-04-01&to=2024-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/invoices/period?from=2024-04-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAndExportInvoice(t *testing.T) {
	srv := newTestServer(t)
	c := createClient(t, srv)

	w := do(t, srv, http.MethodPost, "/api/v1/invoices", invoiceBody(c.ID, "2024-03-15", 20))
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[server.InvoiceResponse](t, w)

	w = do(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/invoices/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[server.InvoiceResponse](t, w)
	assert.Equal(t, created.Number, got.Number)
	assert.Equal(t, "240.00", got.TotalTTC)
	assert.Equal(t, "ACME SARL", got.Client.Name)

	w = do(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/invoices/%d/export", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "FAC-2024-0001.json")

	w = do(t, srv, http.MethodGet, "/api/v1/invoices/4242", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteClient_WithInvoices(t *testing.T) {
	srv := newTestServer(t)
	c := createClient(t, srv)

	w := do(t, srv, http.MethodPost, "/api/v1/invoices", invoiceBody(c.ID, "2024-03-15", 20))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/v1/clients/%d", c.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
