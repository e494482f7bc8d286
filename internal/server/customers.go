package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	customerdomain "github.com/smallbiznis/servisdesk/internal/customer/domain"
)

func (s *Server) ListCustomers(c *gin.Context) {
	filter := customerdomain.ListFilter{
		NameContains: c.Query("q"),
		Limit:        queryLimit(c),
	}

	customers, err := s.customerSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": customers})
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var input customerdomain.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	customer, err := s.customerSvc.Create(c.Request.Context(), input, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	customer, err := s.customerSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var input customerdomain.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	customer, err := s.customerSvc.Update(c.Request.Context(), id, input, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.customerSvc.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
