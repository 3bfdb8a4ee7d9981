package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) adminAccessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.config.AdminToken == "" || h.config.AdminToken != c.Request.Header.Get("Access") {
			responseErr(c, http.StatusUnauthorized, "access denied", "")
			return
		}
		c.Next()
	}
}
