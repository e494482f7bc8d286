package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	numberingdomain "github.com/smallbiznis/servisdesk/internal/numbering/domain"
)

// GetNumberingCounter exposes the current sequence for a document type
// without advancing it.
func (s *Server) GetNumberingCounter(c *gin.Context) {
	docType := numberingdomain.DocumentType(c.Param("docType"))

	current, err := s.numberingSvc.Current(c.Request.Context(), docType)
	if err != nil {
		if errors.Is(err, numberingdomain.ErrUnknownDocumentType) {
			AbortWithError(c, fmt.Errorf("%w: unknown document type %q", apperr.ErrValidation, docType))
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document_type": docType,
		"current":       current,
	})
}
