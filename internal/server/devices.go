package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	devicedomain "github.com/smallbiznis/servisdesk/internal/device/domain"
)

func (s *Server) ListDevices(c *gin.Context) {
	customerID, err := queryID(c, "customer_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filter := devicedomain.ListFilter{
		CustomerID: customerID,
		Limit:      queryLimit(c),
	}

	devices, err := s.deviceSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": devices})
}

func (s *Server) CreateDevice(c *gin.Context) {
	var input devicedomain.DeviceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	device, err := s.deviceSvc.Create(c.Request.Context(), input, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, device)
}

func (s *Server) GetDeviceByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	device, err := s.deviceSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, device)
}

func (s *Server) UpdateDevice(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var input devicedomain.DeviceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	device, err := s.deviceSvc.Update(c.Request.Context(), id, input, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, device)
}

func (s *Server) DeleteDevice(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.deviceSvc.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
