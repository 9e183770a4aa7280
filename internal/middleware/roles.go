package middleware

import (
	"log/slog"
	"net/http"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	portssvc "github.com/civicworks/grievance_redressal_app/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// RequireRole creates a Gin middleware that refuses requests whose
// authenticated account does not hold one of the allowed roles. It must run
// after AuthMiddleware.
func RequireRole(userSvc portssvc.UserSvcFacade, allowed ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		userID, ok := GetUserIDFromContext(c)
		if !ok {
			logger.Error("User ID not found in context for role check")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		role, err := userSvc.ResolveRole(c.Request.Context(), userID)
		if err != nil {
			logger.Warn("Failed to resolve role", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		for _, r := range allowed {
			if role == r {
				c.Next()
				return
			}
		}

		logger.Warn("Role not permitted for route", slog.String("role", string(role)))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	}
}
