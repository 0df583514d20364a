package models

import (
	"errors"
	"strings"
	"time"
)

// GlobalNoticeScope is the hostel id sentinel for platform-wide notices.
const GlobalNoticeScope uint64 = 0

// NoticeAudience represents which viewer roles a notice targets
type NoticeAudience string

const (
	AudienceUser    NoticeAudience = "user"
	AudienceManager NoticeAudience = "manager"
	AudienceBoth    NoticeAudience = "both"
)

// Valid reports whether the audience is one of the known values.
func (a NoticeAudience) Valid() bool {
	switch a {
	case AudienceUser, AudienceManager, AudienceBoth:
		return true
	}
	return false
}

// AppliesTo reports whether a viewer with the given role should see notices
// with this audience. Admins see everything.
func (a NoticeAudience) AppliesTo(role Role) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleResident:
		return a == AudienceUser || a == AudienceBoth
	case RoleManager:
		return a == AudienceManager || a == AudienceBoth
	default:
		return false
	}
}

// Notice is a broadcast message, scoped either to one hostel or to the whole
// platform, and filtered by audience independently of that scope.
type Notice struct {
	ID       uint64         `json:"id"`
	HostelID uint64         `json:"hostel_id"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Date     time.Time      `json:"date"`
	Audience NoticeAudience `json:"audience"`
}

// CreateNoticeRequest represents publishing a new notice
type CreateNoticeRequest struct {
	HostelID uint64         `json:"hostel_id"`
	Title    string         `json:"title" binding:"required"`
	Content  string         `json:"content" binding:"required"`
	Audience NoticeAudience `json:"audience" binding:"required"`
}

// Validate checks the notice request fields
func (r *CreateNoticeRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if !r.Audience.Valid() {
		return errors.New("audience must be user, manager or both")
	}
	return nil
}
