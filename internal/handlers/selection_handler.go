package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelnest/hostel-booking-backend/internal/middleware"
	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/services"
)

// SelectionHandler drives the seat-selection workflow for residents. All
// routes sit behind the auth middleware, so the unauthenticated case aborts
// before any selection state exists.
type SelectionHandler struct {
	selection *services.SelectionService
}

// NewSelectionHandler creates a new SelectionHandler
func NewSelectionHandler(selection *services.SelectionService) *SelectionHandler {
	return &SelectionHandler{selection: selection}
}

// Start opens a selection session against an active hostel
func (h *SelectionHandler) Start(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)
	var req struct {
		HostelID uint64 `json:"hostel_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	session, err := h.selection.StartSession(userCtx.UserID, req.HostelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// Select records a bed choice, replacing any previous one in the session
func (h *SelectionHandler) Select(c *gin.Context) {
	var req struct {
		RoomID string `json:"room_id" binding:"required"`
		BedID  string `json:"bed_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	userCtx, _ := middleware.GetUserContext(c)
	session, err := h.selection.Select(userCtx.UserID, c.Param("id"), req.RoomID, req.BedID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Deselect clears the current choice without ending the session
func (h *SelectionHandler) Deselect(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)
	session, err := h.selection.Deselect(userCtx.UserID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Get returns the session state
func (h *SelectionHandler) Get(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)
	session, err := h.selection.Session(userCtx.UserID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Submit files the application, producing a pending booking. A 409 means
// the bed was taken in the meantime; the session survives so the resident
// can re-select.
func (h *SelectionHandler) Submit(c *gin.Context) {
	var req models.ApplicationDetails
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	userCtx, _ := middleware.GetUserContext(c)
	booking, err := h.selection.Submit(userCtx.UserID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}
