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
	"github.com/smallbiznis/servisdesk/internal/providers/pdf"
)

func (s *Server) ListReceipts(c *gin.Context) {
	receipts, err := s.receiptSvc.List(c.Request.Context(), queryLimit(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": receipts})
}

func (s *Server) GenerateReceipt(c *gin.Context) {
	var body struct {
		InvoiceID snowflake.ID `json:"invoice_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	receipt, err := s.receiptSvc.Generate(c.Request.Context(), body.InvoiceID, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

func (s *Server) GetReceiptByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	receipt, err := s.receiptSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

func (s *Server) RenderReceipt(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	details, err := s.receiptSvc.WithDetails(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var customer *customerdomain.Customer
	if cust, err := s.customerSvc.Get(c.Request.Context(), details.Invoice.CustomerID); err == nil {
		customer = cust
	} else if !errors.Is(err, apperr.ErrNotFound) {
		AbortWithError(c, err)
		return
	}

	doc := pdf.BuildReceiptDocument(details, customer, s.cfg.ShopName, s.cfg.ShopAddress)
	reader, err := s.pdfProvider.RenderReceipt(c.Request.Context(), doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s.pdf", details.Receipt.ReceiptNo))
	c.Data(http.StatusOK, "application/pdf", content)
}
