package authorization

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fundhive/fundhive/internal/shared/constants"
	"github.com/fundhive/fundhive/internal/shared/utils"
)

// RequireAdmin must run after the auth middleware has set the caller's role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := ParseUserRole(c.GetString(constants.ContextKeyUserRole))
		if !userRole.IsAdmin() {
			utils.ErrorResponse(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CanAccessResourceByOwnerID lets admins through and otherwise requires the
// caller to own the resource.
func CanAccessResourceByOwnerID(userID uint, userRole UserRole, resourceOwnerID uint) bool {
	if userRole.IsAdmin() {
		return true
	}
	return userID != 0 && userID == resourceOwnerID
}
