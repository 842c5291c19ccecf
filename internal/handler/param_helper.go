package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
)

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}

// queryTime parses an optional RFC3339 query parameter.
func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, name+" must be RFC3339")
	}
	return &t, nil
}
