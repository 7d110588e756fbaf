package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func parseIDParam(c *gin.Context) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param("id"))
	if raw == "" {
		return 0, ErrNotFound
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, ErrNotFound
	}
	return id, nil
}

// parseOptionalTime parses a YYYY-MM-DD value; endOfDay pushes the
// result to the last instant of that day for inclusive upper bounds.
func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		parsed = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return &parsed, nil
}
