package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
)

// ListAuditLogs supports one filter at a time: entity, actor or action.
// With no filter it returns the most recent events.
func (s *Server) ListAuditLogs(c *gin.Context) {
	ctx := c.Request.Context()
	limit := queryLimit(c)

	entityType := c.Query("entity_type")
	entityID := c.Query("entity_id")
	actor := c.Query("actor")
	action := c.Query("action")

	switch {
	case entityType != "" || entityID != "":
		if entityType == "" || entityID == "" {
			AbortWithError(c, fmt.Errorf("%w: entity_type and entity_id are required together", apperr.ErrValidation))
			return
		}
		events, err := s.auditSvc.ListByEntity(ctx, auditdomain.EntityType(entityType), entityID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": events})
	case actor != "":
		events, err := s.auditSvc.ListByActor(ctx, actor, limit)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": events})
	case action != "":
		events, err := s.auditSvc.ListByAction(ctx, auditdomain.Action(action), limit)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": events})
	default:
		events, err := s.auditSvc.List(ctx, limit)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": events})
	}
}
