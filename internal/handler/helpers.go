package handler

import (
	"net/http"
	"strconv"
	"time"

	"delipos/internal/apperr"
	"delipos/pkg/response"

	"github.com/gin-gonic/gin"
)

// fail maps an engine error onto the response envelope.
func fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	c.JSON(status, response.Error(status, apperr.Kind(err), err.Error()))
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "validation_error", detail))
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(value), true
}

// optionalUintQuery parses a numeric query parameter when present.
func optionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	parsed := uint(value)
	return &parsed, true
}

// queryTime parses an optional RFC 3339 or YYYY-MM-DD query parameter.
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, true
		}
	}
	badRequest(c, "invalid "+name+" date")
	return nil, false
}
