package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
)

func TestBedGrid(t *testing.T) {
	e := NewOccupancyEngine()
	room := models.Room{ID: "101", Capacity: 3, Occupied: []models.BedSlot{
		{Kind: models.SlotTracked, BedID: "S2", BookingID: 9},
	}}

	grid := e.BedGrid(&room)
	require.Len(t, grid, 3)
	assert.Equal(t, "S1", grid[0].BedID)
	assert.False(t, grid[0].Occupied)
	assert.True(t, grid[1].Occupied)
	assert.Equal(t, models.SlotTracked, grid[1].Kind)
	assert.False(t, grid[2].Occupied)
}

func TestValidateRoom(t *testing.T) {
	e := NewOccupancyEngine()

	assert.NoError(t, e.ValidateRoom(&models.Room{ID: "101", Capacity: 2}))

	err := e.ValidateRoom(&models.Room{ID: "101", Capacity: 0})
	assert.True(t, store.IsValidation(err))

	err = e.ValidateRoom(&models.Room{ID: "101", Capacity: 1, Occupied: []models.BedSlot{
		{Kind: models.SlotManual, BedID: "S1"},
		{Kind: models.SlotManual, BedID: "S1"},
	}})
	assert.True(t, store.IsValidation(err))
}

func TestOccupy(t *testing.T) {
	e := NewOccupancyEngine()
	room := models.Room{ID: "101", Capacity: 2}

	require.NoError(t, e.Occupy(&room, "S1", 10))
	require.Len(t, room.Occupied, 1)
	assert.Equal(t, models.SlotTracked, room.Occupied[0].Kind)
	assert.Equal(t, uint64(10), room.Occupied[0].BookingID)

	// Same bed again is a conflict.
	err := e.Occupy(&room, "S1", 11)
	assert.True(t, store.IsConflict(err))

	// Beds outside the grid do not exist.
	err = e.Occupy(&room, "S3", 11)
	assert.True(t, store.IsValidation(err))
}

func TestOccupy_FullRoomBeatsDuplicateBed(t *testing.T) {
	e := NewOccupancyEngine()
	room := models.Room{ID: "101", Capacity: 1, Occupied: []models.BedSlot{
		{Kind: models.SlotTracked, BedID: "S1", BookingID: 10},
	}}

	// The room is full AND the requested bed is taken. The capacity check
	// wins, so this reports ValidationError rather than ConflictError.
	err := e.Occupy(&room, "S1", 11)
	require.Error(t, err)
	assert.True(t, store.IsValidation(err))
	assert.False(t, store.IsConflict(err))
}

func TestReleaseBooking(t *testing.T) {
	e := NewOccupancyEngine()
	room := models.Room{ID: "101", Capacity: 2, Occupied: []models.BedSlot{
		{Kind: models.SlotTracked, BedID: "S1", BookingID: 10},
		{Kind: models.SlotManual, BedID: "S2", Label: "walk-in-1"},
	}}

	assert.True(t, e.ReleaseBooking(&room, 10))
	require.Len(t, room.Occupied, 1)
	assert.Equal(t, models.SlotManual, room.Occupied[0].Kind)

	// Releasing twice is a no-op.
	assert.False(t, e.ReleaseBooking(&room, 10))
	assert.Len(t, room.Occupied, 1)
}

func TestSetOccupiedCount_GrowsWithManualSlots(t *testing.T) {
	e := NewOccupancyEngine()
	room := models.Room{ID: "101", Capacity: 4, Occupied: []models.BedSlot{
		{Kind: models.SlotTracked, BedID: "S2", BookingID: 10},
	}}

	require.NoError(t, e.SetOccupiedCount(&room, 3))
	require.Len(t, room.Occupied, 3)

	// Manual slots fill the first free grid positions and skip S2.
	assert.Equal(t, "S1", room.Occupied[1].BedID)
	assert.Equal(t, "walk-in-1", room.Occupied[1].Label)
	assert.Equal(t, "S3", room.Occupied[2].BedID)
	assert.Equal(t, "walk-in-2", room.Occupied[2].Label)
}

func TestSetOccupiedCount_ShrinksFromTail(t *testing.T) {
	e := NewOccupancyEngine()
	room := models.Room{ID: "101", Capacity: 4}
	require.NoError(t, e.SetOccupiedCount(&room, 3))

	require.NoError(t, e.SetOccupiedCount(&room, 1))
	require.Len(t, room.Occupied, 1)
	assert.Equal(t, "S1", room.Occupied[0].BedID)
}

func TestSetOccupiedCount_ShrinkEvictsLastAddedFirst(t *testing.T) {
	e := NewOccupancyEngine()
	room := models.Room{ID: "101", Capacity: 4, Occupied: []models.BedSlot{
		{Kind: models.SlotManual, BedID: "S1", Label: "walk-in-1"},
		{Kind: models.SlotTracked, BedID: "S2", BookingID: 10},
	}}

	// Truncation is strictly last added first, regardless of slot kind:
	// the tracked slot joined after the manual one, so it goes first.
	require.NoError(t, e.SetOccupiedCount(&room, 1))
	require.Len(t, room.Occupied, 1)
	assert.Equal(t, models.SlotManual, room.Occupied[0].Kind)
	assert.Equal(t, "S1", room.Occupied[0].BedID)
}

func TestSetOccupiedCount_RoundTrip(t *testing.T) {
	e := NewOccupancyEngine()
	room := models.Room{ID: "101", Capacity: 4, Occupied: []models.BedSlot{
		{Kind: models.SlotTracked, BedID: "S1", BookingID: 10},
	}}

	// M -> N -> M leaves exactly M occupied beds again.
	require.NoError(t, e.SetOccupiedCount(&room, 4))
	require.NoError(t, e.SetOccupiedCount(&room, 1))
	require.Len(t, room.Occupied, 1)
	assert.Equal(t, models.SlotTracked, room.Occupied[0].Kind)
}

func TestSetOccupiedCount_Bounds(t *testing.T) {
	e := NewOccupancyEngine()
	room := models.Room{ID: "101", Capacity: 2}

	err := e.SetOccupiedCount(&room, 3)
	assert.True(t, store.IsValidation(err))

	err = e.SetOccupiedCount(&room, -1)
	assert.True(t, store.IsValidation(err))

	require.NoError(t, e.SetOccupiedCount(&room, 0))
	assert.Empty(t, room.Occupied)
}

func TestSetCapacity(t *testing.T) {
	e := NewOccupancyEngine()
	room := models.Room{ID: "101", Capacity: 4, Occupied: []models.BedSlot{
		{Kind: models.SlotManual, BedID: "S1", Label: "walk-in-1"},
		{Kind: models.SlotManual, BedID: "S2", Label: "walk-in-2"},
	}}

	// Shrinking below current occupancy is refused.
	err := e.SetCapacity(&room, 1)
	assert.True(t, store.IsValidation(err))
	assert.Equal(t, 4, room.Capacity)

	require.NoError(t, e.SetCapacity(&room, 2))
	assert.Equal(t, 2, room.Capacity)

	err = e.SetCapacity(&room, 0)
	assert.True(t, store.IsValidation(err))
}
