package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paeslab/ensayos-backend/internal/model"
	"github.com/paeslab/ensayos-backend/internal/response"
)

// RequireCapability checks that the authenticated role grants the given
// capability. Must run after RequireAuth.
func RequireCapability(cap model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !claims.Role.Can(cap) {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}

		c.Next()
	}
}
