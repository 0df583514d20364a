package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// HostelStatus represents the listing status of a hostel
type HostelStatus string

const (
	HostelStatusPending  HostelStatus = "pending"
	HostelStatusActive   HostelStatus = "active"
	HostelStatusInactive HostelStatus = "inactive"
	HostelStatusRejected HostelStatus = "rejected"
)

// SlotKind distinguishes how a bed came to be occupied
type SlotKind string

const (
	// SlotTracked means the bed is held by an approved booking.
	SlotTracked SlotKind = "tracked"
	// SlotManual means a manager marked the bed occupied for a resident who
	// was never on the platform. No booking backs it.
	SlotManual SlotKind = "manual"
)

// BedSlot is one occupied bed in a room. Tracked slots carry the booking
// that holds them; manual slots carry a free-form label instead.
type BedSlot struct {
	Kind      SlotKind `json:"kind"`
	BedID     string   `json:"bed_id"`
	BookingID uint64   `json:"booking_id,omitempty"`
	Label     string   `json:"label,omitempty"`
}

// Room is the bookable unit grid inside a hostel. Room ids are unique within
// their hostel only.
type Room struct {
	ID       string    `json:"id"`
	Capacity int       `json:"capacity"`
	Occupied []BedSlot `json:"occupied"`
	Price    float64   `json:"price"`
}

// HasBed reports whether bedID is currently occupied in the room.
func (r *Room) HasBed(bedID string) bool {
	for _, s := range r.Occupied {
		if s.BedID == bedID {
			return true
		}
	}
	return false
}

// Location is the cascading region/district/subdistrict address of a hostel
// plus free text details.
type Location struct {
	Region      string `json:"region"`
	District    string `json:"district"`
	Subdistrict string `json:"subdistrict"`
	Details     string `json:"details,omitempty"`
}

// Coordinates is an opaque map-picker point. The core stores it but never
// computes with it.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AdminNote is an oversight message an admin attaches to a hostel, scoped to
// an audience.
type AdminNote struct {
	Message  string         `json:"message"`
	Audience NoticeAudience `json:"audience"`
}

// Hostel represents a managed listing with its rooms.
type Hostel struct {
	ID        uint64       `json:"id"`
	Name      string       `json:"name"`
	Location  Location     `json:"location"`
	Coords    *Coordinates `json:"coords,omitempty"`
	ManagerID uint64       `json:"manager_id"`
	Price     float64      `json:"price"`
	Status    HostelStatus `json:"status"`
	Rooms     []Room       `json:"rooms"`
	Gallery   []string     `json:"gallery,omitempty"`
	AdminNote *AdminNote   `json:"admin_note,omitempty"`

	// Version is an optimistic-concurrency stamp bumped by the store on
	// every successful write.
	Version uint64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindRoom returns the room with the given id, or nil.
func (h *Hostel) FindRoom(roomID string) *Room {
	for i := range h.Rooms {
		if h.Rooms[i].ID == roomID {
			return &h.Rooms[i]
		}
	}
	return nil
}

// RoomInput is the room payload inside hostel create/update requests
type RoomInput struct {
	ID       string  `json:"id" binding:"required"`
	Capacity int     `json:"capacity" binding:"required"`
	Price    float64 `json:"price"`
}

// CreateHostelRequest represents a manager creating a new listing
type CreateHostelRequest struct {
	Name        string       `json:"name" binding:"required"`
	Region      string       `json:"region" binding:"required"`
	District    string       `json:"district" binding:"required"`
	Subdistrict string       `json:"subdistrict" binding:"required"`
	Details     string       `json:"details,omitempty"`
	Coords      *Coordinates `json:"coords,omitempty"`
	Price       float64      `json:"price"`
	Rooms       []RoomInput  `json:"rooms"`
	Gallery     []string     `json:"gallery,omitempty"`
}

// Validate checks the create-hostel request fields
func (r *CreateHostelRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	seen := make(map[string]bool, len(r.Rooms))
	for _, room := range r.Rooms {
		if room.Capacity <= 0 {
			return fmt.Errorf("room %s: capacity must be positive", room.ID)
		}
		if seen[room.ID] {
			return fmt.Errorf("duplicate room id %s", room.ID)
		}
		seen[room.ID] = true
	}
	return nil
}

// UpdateHostelRequest represents a manager editing an existing listing.
// Any accepted edit resets the hostel to pending review.
type UpdateHostelRequest struct {
	Name        *string      `json:"name,omitempty"`
	Region      *string      `json:"region,omitempty"`
	District    *string      `json:"district,omitempty"`
	Subdistrict *string      `json:"subdistrict,omitempty"`
	Details     *string      `json:"details,omitempty"`
	Coords      *Coordinates `json:"coords,omitempty"`
	Price       *float64     `json:"price,omitempty"`
	Gallery     []string     `json:"gallery,omitempty"`
	Rooms       []RoomInput  `json:"rooms,omitempty"`
	Version     uint64       `json:"version"`
}

// SetOccupiedCountRequest represents a manager forcing a room's occupied
// count to an absolute number
type SetOccupiedCountRequest struct {
	Count int `json:"count"`
}

// SetCapacityRequest represents a manager resizing a room
type SetCapacityRequest struct {
	Capacity int `json:"capacity" binding:"required"`
}
