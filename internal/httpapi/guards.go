package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
)

const (
	jsonKeyError          = "error"
	authErrorUnauthorized = "unauthorized"
)

// RequireTierWeb redirects to the tier's login page unless the tier flag is set.
func (manager *SessionManager) RequireTierWeb(tier gate.Tier) gin.HandlerFunc {
	return func(context *gin.Context) {
		result := gate.Guard(manager.Open(context), tier)
		if !result.Allowed {
			context.Redirect(http.StatusFound, result.Redirect)
			context.Abort()
			return
		}
		context.Next()
	}
}

// RequireTierJSON answers 401 unless the tier flag is set.
func (manager *SessionManager) RequireTierJSON(tier gate.Tier) gin.HandlerFunc {
	return func(context *gin.Context) {
		result := gate.Guard(manager.Open(context), tier)
		if !result.Allowed {
			context.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{jsonKeyError: authErrorUnauthorized})
			return
		}
		context.Next()
	}
}
