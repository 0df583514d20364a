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

// NoticeHandler handles HTTP requests for notices
type NoticeHandler struct {
	store   *store.Store
	notices *services.NoticeService
}

// NewNoticeHandler creates a new NoticeHandler
func NewNoticeHandler(st *store.Store, notices *services.NoticeService) *NoticeHandler {
	return &NoticeHandler{store: st, notices: notices}
}

// List returns the notices visible to the caller. Residents and managers
// may narrow to a hostel via ?hostel_id; admins see everything.
func (h *NoticeHandler) List(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var hostelID uint64
	if raw := c.Query("hostel_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hostel_id"})
			return
		}
		hostelID = id
	}

	notices := h.notices.ListFor(userCtx.Role, hostelID)
	c.JSON(http.StatusOK, gin.H{
		"notices": notices,
		"count":   len(notices),
	})
}

// Create publishes a notice. Admins may target any scope, including the
// global one; managers only hostels they own.
func (h *NoticeHandler) Create(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if userCtx.Role == models.RoleManager {
		if req.HostelID == models.GlobalNoticeScope {
			c.JSON(http.StatusForbidden, gin.H{"error": "Managers cannot publish global notices"})
			return
		}
		hostel, ok := h.store.HostelByID(req.HostelID)
		if !ok || hostel.ManagerID != userCtx.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only publish notices for your own hostels"})
			return
		}
	}

	notice, err := h.notices.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"notice": notice})
}

// Delete removes a notice. Managers may only remove notices scoped to
// their own hostels.
func (h *NoticeHandler) Delete(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notice ID"})
		return
	}

	if userCtx.Role == models.RoleManager {
		notice, ok := h.store.NoticeByID(id)
		if !ok {
			respondError(c, store.NewNotFoundError("notice", id))
			return
		}
		hostel, ok := h.store.HostelByID(notice.HostelID)
		if notice.HostelID == models.GlobalNoticeScope || !ok || hostel.ManagerID != userCtx.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete notices for your own hostels"})
			return
		}
	}

	if err := h.notices.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notice deleted successfully"})
}
