package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/billing/internal/billing"
	"github.com/rezonia/billing/internal/model"
)

func parseID(c *gin.Context, param string) (uint, error) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, model.NewInvalidInputError(param, raw, "must be a positive integer")
	}
	return uint(id), nil
}

// Clients

func (s *Server) handleListClients(c *gin.Context) {
	clients, err := s.service.ListClients(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newClientResponses(clients))
}

func (s *Server) handleGetClient(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	client, err := s.service.GetClient(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newClientResponse(client))
}

func (s *Server) handleCreateClient(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithBindError(c, err)
		return
	}

	client, err := s.service.CreateClient(c.Request.Context(), billing.ClientInput(req))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newClientResponse(client))
}

func (s *Server) handleUpdateClient(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithBindError(c, err)
		return
	}

	client, err := s.service.UpdateClient(c.Request.Context(), id, billing.ClientInput(req))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newClientResponse(client))
}

func (s *Server) handleDeleteClient(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	if err := s.service.DeleteClient(c.Request.Context(), id); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Invoices

func (s *Server) handleCreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithBindError(c, err)
		return
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	in := billing.CreateInvoiceInput{
		ClientID: req.ClientID,
		Date:     date,
		Lines:    make([]billing.LineInput, len(req.Lines)),
	}
	for i, l := range req.Lines {
		in.Lines[i] = billing.LineInput{
			Description: l.Description,
			Quantity:    *l.Quantity,
			UnitPrice:   *l.UnitPrice,
			VATRate:     *l.VATRate,
		}
	}

	inv, err := s.service.CreateInvoice(c.Request.Context(), in)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.Header("Location", "/api/v1/invoices/"+strconv.FormatUint(uint64(inv.ID), 10))
	c.JSON(http.StatusCreated, newInvoiceResponse(inv))
}

func (s *Server) handleListInvoices(c *gin.Context) {
	invoices, err := s.service.ListInvoices(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newInvoiceResponses(invoices))
}

func (s *Server) handleGetInvoice(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	inv, err := s.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newInvoiceResponse(inv))
}

func (s *Server) handleExportInvoice(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	inv, err := s.service.ExportInvoice(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+inv.Number+`.json"`)
	c.IndentedJSON(http.StatusOK, newInvoiceResponse(inv))
}

func (s *Server) handleInvoicesByClient(c *gin.Context) {
	clientID, err := parseID(c, "clientId")
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	invoices, err := s.service.InvoicesByClient(c.Request.Context(), clientID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newInvoiceResponses(invoices))
}

func (s *Server) handleInvoicesByDate(c *gin.Context) {
	day, err := model.ParseDate(c.Param("date"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	invoices, err := s.service.InvoicesByDate(c.Request.Context(), day)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newInvoiceResponses(invoices))
}

func (s *Server) handleInvoicesByPeriod(c *gin.Context) {
	from, err := model.ParseDate(c.Query("from"))
	if err != nil {
		s.abortWithError(c, model.NewInvalidInputError("from", c.Query("from"), "must be a YYYY-MM-DD date"))
		return
	}
	to, err := model.ParseDate(c.Query("to"))
	if err != nil {
		s.abortWithError(c, model.NewInvalidInputError("to", c.Query("to"), "must be a YYYY-MM-DD date"))
		return
	}

	invoices, err := s.service.InvoicesByPeriod(c.Request.Context(), from, to)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newInvoiceResponses(invoices))
}
