package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mandibooks/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects declared oversized bodies up front and caps the rest
// while they are read. A cap hit during binding surfaces through
// HandleBindError as 413.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
