package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/servisdesk/internal/apperr"
)

func pathID(c *gin.Context, name string) (snowflake.ID, error) {
	raw := c.Param(name)
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", apperr.ErrValidation, raw)
	}
	return id, nil
}

func queryID(c *gin.Context, name string) (*snowflake.ID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", apperr.ErrValidation, name, raw)
	}
	return &id, nil
}

func queryLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

// queryTime accepts RFC 3339 timestamps and bare dates.
func queryTime(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", apperr.ErrValidation, name)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %s %q", apperr.ErrValidation, name, raw)
}
