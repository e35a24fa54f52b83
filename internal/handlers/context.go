package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext unwraps the inbound request context. Handlers exercised
// directly in tests may carry no request, so fall back to Background.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}
