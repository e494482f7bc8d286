package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	quotationdomain "github.com/smallbiznis/servisdesk/internal/quotation/domain"
)

func (s *Server) ListQuotations(c *gin.Context) {
	jobID, err := queryID(c, "job_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filter := quotationdomain.ListFilter{
		Status:         quotationdomain.QuotationStatus(c.Query("status")),
		JobID:          jobID,
		NumberContains: c.Query("q"),
		Limit:          queryLimit(c),
	}

	quotations, err := s.quotationSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": quotations})
}

func (s *Server) CreateQuotation(c *gin.Context) {
	var req quotationdomain.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	quotation, err := s.quotationSvc.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quotation)
}

func (s *Server) GetQuotationByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	quotation, err := s.quotationSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, quotation)
}

func (s *Server) UpdateQuotation(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var patch quotationdomain.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	quotation, err := s.quotationSvc.Update(c.Request.Context(), id, patch, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, quotation)
}

func (s *Server) TransitionQuotation(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var body struct {
		Status quotationdomain.QuotationStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	quotation, err := s.quotationSvc.Transition(c.Request.Context(), id, body.Status, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, quotation)
}
