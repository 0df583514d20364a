package services

import (
	"fmt"

	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
)

// OccupancyEngine enforces the room consistency rules wherever occupancy
// changes: capacity is never exceeded, bed ids stay unique per room, and an
// occupied bed is either backed by an approved booking or explicitly marked
// manual. It mutates rooms in place; callers persist the enclosing hostel.
type OccupancyEngine struct{}

// NewOccupancyEngine creates an OccupancyEngine
func NewOccupancyEngine() *OccupancyEngine {
	return &OccupancyEngine{}
}

// BedState describes one position of a room's seat grid for display.
type BedState struct {
	BedID    string          `json:"bed_id"`
	Occupied bool            `json:"occupied"`
	Kind     models.SlotKind `json:"kind,omitempty"`
}

// bedID returns the canonical bed id for the n-th position of a room grid.
func bedID(n int) string {
	return fmt.Sprintf("S%d", n)
}

// BedGrid renders a room as its seat grid: capacity positions, each marked
// occupied or free.
func (e *OccupancyEngine) BedGrid(room *models.Room) []BedState {
	grid := make([]BedState, room.Capacity)
	for i := range grid {
		grid[i] = BedState{BedID: bedID(i + 1)}
	}
	for _, slot := range room.Occupied {
		for i := range grid {
			if grid[i].BedID == slot.BedID {
				grid[i].Occupied = true
				grid[i].Kind = slot.Kind
			}
		}
	}
	return grid
}

// ValidateRoom checks the standing invariants of a single room.
func (e *OccupancyEngine) ValidateRoom(room *models.Room) error {
	if room.Capacity <= 0 {
		return store.NewValidationError("room %s: capacity must be positive", room.ID)
	}
	if len(room.Occupied) > room.Capacity {
		return store.NewValidationError("room %s: %d occupied beds exceed capacity %d",
			room.ID, len(room.Occupied), room.Capacity)
	}
	seen := make(map[string]bool, len(room.Occupied))
	for _, slot := range room.Occupied {
		if seen[slot.BedID] {
			return store.NewValidationError("room %s: bed %s occupied twice", room.ID, slot.BedID)
		}
		seen[slot.BedID] = true
	}
	return nil
}

// Occupy claims bedID for a booking. The capacity check runs before the
// duplicate check: a full room reports ValidationError even when the target
// bed is also taken.
func (e *OccupancyEngine) Occupy(room *models.Room, bedIDWanted string, bookingID uint64) error {
	if len(room.Occupied) >= room.Capacity {
		return store.NewValidationError("room %s is full (%d/%d)", room.ID, len(room.Occupied), room.Capacity)
	}
	if !validBedID(room, bedIDWanted) {
		return store.NewValidationError("room %s has no bed %s", room.ID, bedIDWanted)
	}
	if room.HasBed(bedIDWanted) {
		return store.NewConflictError("bed %s in room %s is already occupied", bedIDWanted, room.ID)
	}
	room.Occupied = append(room.Occupied, models.BedSlot{
		Kind:      models.SlotTracked,
		BedID:     bedIDWanted,
		BookingID: bookingID,
	})
	return nil
}

// ReleaseBooking removes the slot held by bookingID, if any, and reports
// whether a slot was removed. Removing twice is a no-op.
func (e *OccupancyEngine) ReleaseBooking(room *models.Room, bookingID uint64) bool {
	for i, slot := range room.Occupied {
		if slot.Kind == models.SlotTracked && slot.BookingID == bookingID {
			room.Occupied = append(room.Occupied[:i], room.Occupied[i+1:]...)
			return true
		}
	}
	return false
}

// SetOccupiedCount forces the room's occupied count to n. Growth fills the
// first free grid positions with distinctly labelled manual slots; shrinkage
// truncates from the tail, last added first. Tail truncation is a documented
// simplification, not a fairness guarantee.
func (e *OccupancyEngine) SetOccupiedCount(room *models.Room, n int) error {
	if n < 0 {
		return store.NewValidationError("occupied count cannot be negative")
	}
	if n > room.Capacity {
		return store.NewValidationError("room %s: occupied count %d exceeds capacity %d", room.ID, n, room.Capacity)
	}
	for len(room.Occupied) > n {
		room.Occupied = room.Occupied[:len(room.Occupied)-1]
	}
	label := 1
	for i := 1; len(room.Occupied) < n && i <= room.Capacity; i++ {
		id := bedID(i)
		if room.HasBed(id) {
			continue
		}
		room.Occupied = append(room.Occupied, models.BedSlot{
			Kind:  models.SlotManual,
			BedID: id,
			Label: fmt.Sprintf("walk-in-%d", label),
		})
		label++
	}
	return nil
}

// SetCapacity resizes a room. Shrinking below the current occupied count is
// rejected; evict first, then shrink.
func (e *OccupancyEngine) SetCapacity(room *models.Room, capacity int) error {
	if capacity <= 0 {
		return store.NewValidationError("room %s: capacity must be positive", room.ID)
	}
	if capacity < len(room.Occupied) {
		return store.NewValidationError("room %s: capacity %d is below current occupancy %d",
			room.ID, capacity, len(room.Occupied))
	}
	room.Capacity = capacity
	return nil
}

func validBedID(room *models.Room, id string) bool {
	for i := 1; i <= room.Capacity; i++ {
		if bedID(i) == id {
			return true
		}
	}
	return false
}
