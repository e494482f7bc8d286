package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	customerdomain "github.com/smallbiznis/servisdesk/internal/customer/domain"
	devicedomain "github.com/smallbiznis/servisdesk/internal/device/domain"
	invoicedomain "github.com/smallbiznis/servisdesk/internal/invoice/domain"
	"github.com/smallbiznis/servisdesk/internal/providers/pdf"
)

func (s *Server) ListInvoices(c *gin.Context) {
	jobID, err := queryID(c, "job_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filter := invoicedomain.ListFilter{
		Status:          invoicedomain.InvoiceStatus(c.Query("status")),
		OutstandingOnly: c.Query("outstanding") == "true",
		JobID:           jobID,
		NumberContains:  c.Query("q"),
		Limit:           queryLimit(c),
	}

	invoices, err := s.invoiceSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	invoice, err := s.invoiceSvc.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

func (s *Server) CreateInvoiceFromQuotation(c *gin.Context) {
	var body struct {
		QuotationID snowflake.ID `json:"quotation_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	invoice, err := s.invoiceSvc.CreateFromQuotation(c.Request.Context(), body.QuotationID, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	invoice, err := s.invoiceSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

func (s *Server) CancelInvoice(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	invoice, err := s.invoiceSvc.Cancel(c.Request.Context(), id, body.Reason, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

func (s *Server) ListInvoicePayments(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if _, err := s.invoiceSvc.Get(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	payments, err := s.paymentSvc.ListForInvoice(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payments})
}

func (s *Server) RenderInvoice(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	invoice, err := s.invoiceSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The document degrades gracefully when the customer or device has
	// been deleted since the invoice was issued.
	var customer *customerdomain.Customer
	if cust, err := s.customerSvc.Get(c.Request.Context(), invoice.CustomerID); err == nil {
		customer = cust
	} else if !errors.Is(err, apperr.ErrNotFound) {
		AbortWithError(c, err)
		return
	}

	var device *devicedomain.Device
	if dev, err := s.deviceSvc.Get(c.Request.Context(), invoice.DeviceID); err == nil {
		device = dev
	} else if !errors.Is(err, apperr.ErrNotFound) {
		AbortWithError(c, err)
		return
	}

	doc := pdf.BuildInvoiceDocument(invoice, customer, device, s.cfg.ShopName, s.cfg.ShopAddress)
	reader, err := s.pdfProvider.RenderInvoice(c.Request.Context(), doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s.pdf", invoice.InvoiceNo))
	c.Data(http.StatusOK, "application/pdf", content)
}
