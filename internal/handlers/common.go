package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"serve-cafe/internal/auth"
	"serve-cafe/internal/services"
)

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case services.IsNotFound(err):
		return http.StatusNotFound
	case services.IsValidation(err), services.IsCyclicReferral(err):
		return http.StatusBadRequest
	case services.IsInsufficientFunds(err):
		return http.StatusUnprocessableEntity
	case services.IsAccountInactive(err):
		return http.StatusForbidden
	case services.IsConcurrencyConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RequirePermission is a gin middleware that rejects requests from users
// whose roles do not grant the capability.
func RequirePermission(roles *services.RoleService, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		ok, err := roles.HasPermission(userID, permission)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Permission check failed"})
			c.Abort()
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}
