package middleware

import (
	"performa/api/http/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ValidateDealID mirrors the teacher's ValidateStockSymbol: reject a
// malformed :deal_id path parameter before it reaches a handler, rather
// than letting an invalid UUID surface as a confusing QueryError.
func ValidateDealID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("deal_id")
		if _, err := uuid.Parse(id); err != nil {
			response.BadRequest(c, "deal_id must be a valid UUID")
			c.Abort()
			return
		}
		c.Next()
	}
}
