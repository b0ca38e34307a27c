package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/payrollrecon/internal/payment/domain"
)

// pathID parses a snowflake id path parameter.
func pathID(c *gin.Context, name string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(c.Param(name)))
	if err != nil || parsed == 0 {
		return 0, newValidationError(name, "invalid_id", "invalid id")
	}
	return parsed, nil
}

func queryDimension(c *gin.Context) (paymentdomain.Dimension, error) {
	dim, err := paymentdomain.ParseDimension(c.Query("dimension"))
	if err != nil {
		return "", newValidationError("dimension", "invalid_dimension", "dimension must be frontend or backend")
	}
	return dim, nil
}
