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

// BookingHandler handles booking review, deletion and fee cycling
type BookingHandler struct {
	store    *store.Store
	bookings *services.BookingService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(st *store.Store, bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{store: st, bookings: bookings}
}

// canManage reports whether the caller may act on the booking: admins
// always, managers only for their own hostels.
func (h *BookingHandler) canManage(c *gin.Context, bookingID uint64) (models.Booking, bool) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return models.Booking{}, false
	}
	booking, ok := h.store.BookingByID(bookingID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "booking not found"})
		return models.Booking{}, false
	}
	switch userCtx.Role {
	case models.RoleAdmin:
		return booking, true
	case models.RoleManager:
		hostel, ok := h.store.HostelByID(booking.HostelID)
		if ok && hostel.ManagerID == userCtx.UserID {
			return booking, true
		}
	case models.RoleResident:
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "booking belongs to another manager"})
	return models.Booking{}, false
}

// List returns bookings scoped to the caller's role: residents see their
// own, managers see their hostels', admins see everything.
func (h *BookingHandler) List(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	switch userCtx.Role {
	case models.RoleResident:
		c.JSON(http.StatusOK, gin.H{"bookings": h.bookings.ListForUser(userCtx.UserID)})
	case models.RoleManager:
		var out []models.Booking
		for _, hostel := range h.store.Hostels() {
			if hostel.ManagerID == userCtx.UserID {
				out = append(out, h.bookings.ListForHostel(hostel.ID)...)
			}
		}
		c.JSON(http.StatusOK, gin.H{"bookings": out})
	case models.RoleAdmin:
		c.JSON(http.StatusOK, gin.H{"bookings": h.bookings.ListAll()})
	}
}

// Approve moves a pending booking to approved, reserving its bed
func (h *BookingHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}
	if _, ok := h.canManage(c, id); !ok {
		return
	}
	booking, err := h.bookings.Approve(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Reject moves a pending booking to rejected
func (h *BookingHandler) Reject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}
	if _, ok := h.canManage(c, id); !ok {
		return
	}
	booking, err := h.bookings.Reject(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Delete removes a booking, releasing its bed when approved. The cascade
// query param also removes the linked user when no other booking references
// them.
func (h *BookingHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}
	if _, ok := h.canManage(c, id); !ok {
		return
	}
	cascade := c.Query("cascade_user") == "true"
	if err := h.bookings.Delete(id, cascade); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}

// SetFeeStatus cycles the monthly fee state of a booking
func (h *BookingHandler) SetFeeStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}
	if _, ok := h.canManage(c, id); !ok {
		return
	}
	var req models.SetFeeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	booking, err := h.bookings.SetFeeStatus(id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Unpaid lists approved bookings whose effective fee status is unpaid
func (h *BookingHandler) Unpaid(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bookings": h.bookings.UnpaidBookings()})
}

// CreateManualRequest is the manager path for booking a bed on behalf of an
// off-platform resident
type CreateManualRequest struct {
	HostelID uint64                          `json:"hostel_id" binding:"required"`
	RoomID   string                          `json:"room_id" binding:"required"`
	BedID    string                          `json:"bed_id" binding:"required"`
	User     models.CreateManagedUserRequest `json:"user" binding:"required"`
	Details  models.ApplicationDetails       `json:"details" binding:"required"`
}

// CreateManual creates a managed user and their booking in one call. The two
// writes are sequential; a failure in between leaves the user without a
// booking.
func (h *BookingHandler) CreateManual(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)
	var req CreateManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	hostel, ok := h.store.HostelByID(req.HostelID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "hostel not found"})
		return
	}
	if hostel.ManagerID != userCtx.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "hostel belongs to another manager"})
		return
	}
	booking, err := h.bookings.CreateManual(req.HostelID, req.RoomID, req.BedID, req.User, req.Details)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}
