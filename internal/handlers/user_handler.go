package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hostelnest/hostel-booking-backend/internal/middleware"
	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/services"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
)

// UserHandler handles account management: admin oversight and
// manager-created accounts
type UserHandler struct {
	store    *store.Store
	bookings *services.BookingService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(st *store.Store, bookings *services.BookingService) *UserHandler {
	return &UserHandler{store: st, bookings: bookings}
}

// List returns all users (admin only)
func (h *UserHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": h.store.Users()})
}

// Me returns the caller's account
func (h *UserHandler) Me(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	user, ok := h.store.UserByID(userCtx.UserID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "account no longer exists"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile renames or re-addresses the caller's account, then resyncs
// the cached name on their bookings.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var req struct {
		Name    *string `json:"name,omitempty"`
		Phone   *string `json:"phone,omitempty"`
		Address *string `json:"address,omitempty"`
		Avatar  *string `json:"avatar,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	user, ok := h.store.UserByID(userCtx.UserID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "account no longer exists"})
		return
	}
	renamed := false
	if req.Name != nil && *req.Name != user.Name {
		user.Name = *req.Name
		renamed = true
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if err := h.store.UpsertUser(&user); err != nil {
		respondError(c, err)
		return
	}
	if renamed {
		if err := h.bookings.ResyncUserName(user.ID); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// CreateManaged lets a manager register an account for an off-platform
// resident
func (h *UserHandler) CreateManaged(c *gin.Context) {
	var req models.CreateManagedUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, exists := h.store.UserByEmail(req.Email); exists {
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": "email already registered"})
		return
	}
	user := models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      models.RoleResident,
		Status:    models.UserStatusActive,
		Phone:     req.Phone,
		Address:   req.Address,
		IsManaged: true,
	}
	if err := h.store.UpsertUser(&user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// SetStatus blocks or unblocks an account (admin only)
func (h *UserHandler) SetStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	var req struct {
		Status models.UserStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Status != models.UserStatusActive && req.Status != models.UserStatusBlocked {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or blocked"})
		return
	}
	user, ok := h.store.UserByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "user not found"})
		return
	}
	user.Status = req.Status
	if err := h.store.UpsertUser(&user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Delete hard-deletes an account. It is refused while any booking still
// references the user; the booking must be removed first, never both
// silently.
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	if h.bookings.HasOtherBookings(id, 0) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": "user still has bookings; remove them first",
		})
		return
	}
	if err := h.store.RemoveUser(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
