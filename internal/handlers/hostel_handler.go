package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hostelnest/hostel-booking-backend/internal/geo"
	"github.com/hostelnest/hostel-booking-backend/internal/middleware"
	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/services"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
)

// HostelHandler handles listing management and the public hostel browse
type HostelHandler struct {
	store     *store.Store
	hostels   *services.HostelService
	bookings  *services.BookingService
	occupancy *services.OccupancyEngine
}

// NewHostelHandler creates a new HostelHandler
func NewHostelHandler(st *store.Store, hostels *services.HostelService, bookings *services.BookingService, occupancy *services.OccupancyEngine) *HostelHandler {
	return &HostelHandler{store: st, hostels: hostels, bookings: bookings, occupancy: occupancy}
}

// ListActive returns the hostels residents can browse (public)
func (h *HostelHandler) ListActive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"hostels": h.hostels.ListActive()})
}

// Get returns one hostel with its seat grids
func (h *HostelHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hostel id"})
		return
	}
	hostel, ok := h.store.HostelByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "hostel not found"})
		return
	}
	grids := make(map[string][]services.BedState, len(hostel.Rooms))
	for i := range hostel.Rooms {
		grids[hostel.Rooms[i].ID] = h.occupancy.BedGrid(&hostel.Rooms[i])
	}
	c.JSON(http.StatusOK, gin.H{"hostel": hostel, "seat_grids": grids})
}

// Geography returns the cascading reference data for the location form
func (h *HostelHandler) Geography(c *gin.Context) {
	region := c.Query("region")
	district := c.Query("district")
	switch {
	case region == "":
		c.JSON(http.StatusOK, gin.H{"regions": geo.Regions()})
	case district == "":
		c.JSON(http.StatusOK, gin.H{"districts": geo.Districts(region)})
	default:
		c.JSON(http.StatusOK, gin.H{"subdistricts": geo.Subdistricts(region, district)})
	}
}

// Mine lists the caller's own hostels (manager)
func (h *HostelHandler) Mine(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)
	c.JSON(http.StatusOK, gin.H{"hostels": h.hostels.ListForManager(userCtx.UserID)})
}

// ListAll lists every hostel regardless of status (admin)
func (h *HostelHandler) ListAll(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"hostels": h.store.Hostels()})
}

// Create registers a new listing in pending status (manager)
func (h *HostelHandler) Create(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)
	var req models.CreateHostelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	hostel, err := h.hostels.Create(userCtx.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"hostel": hostel})
}

// Update edits a listing's fields, sending it back to pending review
// (manager)
func (h *HostelHandler) Update(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hostel id"})
		return
	}
	var req models.UpdateHostelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	hostel, err := h.hostels.Update(userCtx.UserID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Name != nil {
		if err := h.bookings.ResyncHostelName(hostel.ID); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"hostel": hostel})
}

// ToggleActive flips a listing between active and inactive (manager)
func (h *HostelHandler) ToggleActive(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hostel id"})
		return
	}
	hostel, err := h.hostels.ToggleActive(userCtx.UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hostel": hostel})
}

// SetStatus is the admin review transition; it never resets the listing to
// pending (admin)
func (h *HostelHandler) SetStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hostel id"})
		return
	}
	var req struct {
		Status models.HostelStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	hostel, err := h.hostels.SetStatus(id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hostel": hostel})
}

// SetAdminNote attaches the oversight note (admin)
func (h *HostelHandler) SetAdminNote(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hostel id"})
		return
	}
	var req struct {
		Note *models.AdminNote `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	hostel, err := h.hostels.SetAdminNote(id, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hostel": hostel})
}

// Delete removes a listing, refused while bookings still reference it
// (admin)
func (h *HostelHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hostel id"})
		return
	}
	if err := h.hostels.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Hostel deleted"})
}

// SetOccupiedCount forces a room's occupied count (manager)
func (h *HostelHandler) SetOccupiedCount(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hostel id"})
		return
	}
	var req models.SetOccupiedCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	hostel, err := h.hostels.SetOccupiedCount(userCtx.UserID, id, c.Param("roomId"), req.Count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hostel": hostel})
}

// SetCapacity resizes a room (manager)
func (h *HostelHandler) SetCapacity(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hostel id"})
		return
	}
	var req models.SetCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	hostel, err := h.hostels.SetCapacity(userCtx.UserID, id, c.Param("roomId"), req.Capacity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hostel": hostel})
}
