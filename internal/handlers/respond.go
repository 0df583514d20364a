package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelnest/hostel-booking-backend/internal/services"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
)

// respondError maps the core error taxonomy onto HTTP statuses. Conflicts
// get their own status so clients can prompt re-selection instead of showing
// a generic failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials", "message": err.Error()})
	case errors.Is(err, services.ErrAccountBlocked):
		c.JSON(http.StatusForbidden, gin.H{"error": "account_blocked", "message": err.Error()})
	case store.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": err.Error()})
	case store.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": err.Error()})
	case store.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "Something went wrong"})
	}
}
