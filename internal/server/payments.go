package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	paymentdomain "github.com/smallbiznis/servisdesk/internal/payment/domain"
)

func (s *Server) RecordPayment(c *gin.Context) {
	var req paymentdomain.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	payment, err := s.paymentSvc.Record(c.Request.Context(), req, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// ListPayments returns payments in a date range when from/to are given,
// otherwise the most recent ones.
func (s *Server) ListPayments(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("from") != "" || c.Query("to") != "" {
		from, err := queryTime(c, "from")
		if err != nil {
			AbortWithError(c, err)
			return
		}
		to, err := queryTime(c, "to")
		if err != nil {
			AbortWithError(c, err)
			return
		}

		payments, err := s.paymentSvc.ByDateRange(ctx, from, to)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": payments})
		return
	}

	payments, err := s.paymentSvc.Recent(ctx, queryLimit(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payments})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payment, err := s.paymentSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

func (s *Server) GetSalesTotal(c *gin.Context) {
	from, err := queryTime(c, "from")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	to, err := queryTime(c, "to")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	total, err := s.paymentSvc.TotalSales(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":        from,
		"to":          to,
		"total_cents": total,
	})
}
