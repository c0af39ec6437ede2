package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fundhive/fundhive/internal/shared/authorization"
	"github.com/fundhive/fundhive/internal/shared/constants"
	"github.com/fundhive/fundhive/internal/shared/errors"
)

// currentUserID returns the authenticated caller, if any.
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	userID, ok := v.(uint)
	return userID, ok && userID != 0
}

// currentUserRole returns the caller's role; unauthenticated callers are users.
func currentUserRole(c *gin.Context) authorization.UserRole {
	return authorization.ParseUserRole(c.GetString(constants.ContextKeyUserRole))
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, errors.NewFieldValidationError("Invalid request", errors.FieldError{
			Field:   name,
			Message: name + " must be a positive integer",
		})
	}
	return uint(n), nil
}
