package store

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelnest/hostel-booking-backend/internal/models"
)

// memPersister is an in-memory Persister for tests. Setting failSave makes
// the next Save calls error, simulating a broken durable layer.
type memPersister struct {
	mu       sync.Mutex
	snap     *Snapshot
	saves    int
	failSave bool
}

func (p *memPersister) Load() (*Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap, nil
}

func (p *memPersister) Save(snap *Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failSave {
		return errors.New("disk on fire")
	}
	p.saves++
	p.snap = cloneSnapshot(snap)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestStore(t *testing.T) (*Store, *memPersister) {
	t.Helper()
	p := &memPersister{}
	s, err := New(p, testLogger())
	require.NoError(t, err)
	return s, p
}

func TestNew_SeedsWhenEmpty(t *testing.T) {
	s, p := newTestStore(t)

	// The seed fixture carries an admin, a manager and one reviewed hostel.
	users := s.Users()
	assert.Len(t, users, 2)
	assert.Len(t, s.Hostels(), 1)
	assert.Len(t, s.Notices(), 1)

	// The seed itself must already be durable.
	assert.NotNil(t, p.snap)
	assert.Equal(t, 1, p.saves)
}

func TestNew_RestoresExistingSnapshot(t *testing.T) {
	p := &memPersister{snap: &Snapshot{
		Users:     []models.User{{ID: 7, Name: "Only User", Email: "only@test.io"}},
		Sequences: Sequences{Users: 7},
	}}
	s, err := New(p, testLogger())
	require.NoError(t, err)

	users := s.Users()
	require.Len(t, users, 1)
	assert.Equal(t, uint64(7), users[0].ID)
	// No seeding happened on top of the restored state.
	assert.Empty(t, s.Hostels())
}

func TestUpsertUser_AssignsSequentialIDs(t *testing.T) {
	s, _ := newTestStore(t)

	a := models.User{Name: "A", Email: "a@test.io", Role: models.RoleResident}
	b := models.User{Name: "B", Email: "b@test.io", Role: models.RoleResident}
	require.NoError(t, s.UpsertUser(&a))
	require.NoError(t, s.UpsertUser(&b))

	// Seed occupies ids 1 and 2.
	assert.Equal(t, uint64(3), a.ID)
	assert.Equal(t, uint64(4), b.ID)
}

func TestUpsertUser_WriteThrough(t *testing.T) {
	s, p := newTestStore(t)

	u := models.User{Name: "Durable", Email: "durable@test.io", Role: models.RoleResident}
	require.NoError(t, s.UpsertUser(&u))

	// The persisted snapshot already contains the new user.
	found := false
	for _, su := range p.snap.Users {
		if su.ID == u.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMutate_RollsBackOnPersistFailure(t *testing.T) {
	s, p := newTestStore(t)
	before := len(s.Users())

	p.failSave = true
	u := models.User{Name: "Ghost", Email: "ghost@test.io", Role: models.RoleResident}
	err := s.UpsertUser(&u)
	require.Error(t, err)

	// The failed write left no trace in memory.
	assert.Len(t, s.Users(), before)
	_, ok := s.UserByEmail("ghost@test.io")
	assert.False(t, ok)

	// Recovery: once the persister works again, writes land normally.
	p.failSave = false
	require.NoError(t, s.UpsertUser(&u))
	_, ok = s.UserByEmail("ghost@test.io")
	assert.True(t, ok)
}

func TestUpsert_FailedSaveLeavesCallerStructUntouched(t *testing.T) {
	s, p := newTestStore(t)

	p.failSave = true
	u := models.User{Name: "Ghost", Email: "ghost@test.io", Role: models.RoleResident}
	require.Error(t, s.UpsertUser(&u))

	// The rolled-back store never issued an id, so the caller must not be
	// holding one; a retry with it would collide with the sequence later.
	assert.Zero(t, u.ID)

	h, _ := s.HostelByID(1)
	wantVersion := h.Version
	h.Name = "Ghost Rename"
	require.Error(t, s.UpsertHostel(&h))
	assert.Equal(t, wantVersion, h.Version)

	// After recovery the same structs write cleanly.
	p.failSave = false
	require.NoError(t, s.UpsertUser(&u))
	assert.NotZero(t, u.ID)
	require.NoError(t, s.UpsertHostel(&h))
	assert.Equal(t, wantVersion+1, h.Version)
}

func TestUpdateHostelAndBooking_SingleSave(t *testing.T) {
	s, p := newTestStore(t)

	b := models.Booking{UserID: 2, HostelID: 1, RoomID: "101", BedID: "S1", Status: models.BookingStatusPending}
	require.NoError(t, s.UpsertBooking(&b))

	saves := p.saves
	err := s.UpdateHostelAndBooking(1, b.ID, func(h *models.Hostel, bk *models.Booking) error {
		h.FindRoom("101").Occupied = append(h.FindRoom("101").Occupied, models.BedSlot{
			Kind: models.SlotTracked, BedID: "S1", BookingID: bk.ID,
		})
		bk.Status = models.BookingStatusApproved
		return nil
	})
	require.NoError(t, err)

	// Both edits travelled in one snapshot write, with both stamps bumped.
	assert.Equal(t, saves+1, p.saves)
	h, _ := s.HostelByID(1)
	assert.Len(t, h.FindRoom("101").Occupied, 1)
	got, _ := s.BookingByID(b.ID)
	assert.Equal(t, models.BookingStatusApproved, got.Status)
	assert.Equal(t, b.Version+1, got.Version)

	// An error from fn abandons the whole pair.
	err = s.UpdateHostelAndBooking(1, b.ID, func(h *models.Hostel, bk *models.Booking) error {
		h.FindRoom("101").Occupied = nil
		return NewValidationError("changed my mind")
	})
	require.Error(t, err)
	h, _ = s.HostelByID(1)
	assert.Len(t, h.FindRoom("101").Occupied, 1)

	err = s.UpdateHostelAndBooking(999, b.ID, func(h *models.Hostel, bk *models.Booking) error { return nil })
	assert.True(t, IsNotFound(err))
}

func TestRemoveBookingAndUpdateHostel_SingleSave(t *testing.T) {
	s, p := newTestStore(t)

	b := models.Booking{UserID: 2, HostelID: 1, RoomID: "101", BedID: "S1", Status: models.BookingStatusApproved}
	require.NoError(t, s.UpsertBooking(&b))
	require.NoError(t, s.UpdateHostelAndBooking(1, b.ID, func(h *models.Hostel, bk *models.Booking) error {
		h.FindRoom("101").Occupied = []models.BedSlot{{Kind: models.SlotTracked, BedID: "S1", BookingID: bk.ID}}
		return nil
	}))

	saves := p.saves
	err := s.RemoveBookingAndUpdateHostel(b.ID, func(h *models.Hostel, bk models.Booking) error {
		require.NotNil(t, h)
		assert.Equal(t, b.ID, bk.ID)
		h.FindRoom("101").Occupied = nil
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, saves+1, p.saves)

	_, ok := s.BookingByID(b.ID)
	assert.False(t, ok)
	h, _ := s.HostelByID(1)
	assert.Empty(t, h.FindRoom("101").Occupied)

	err = s.RemoveBookingAndUpdateHostel(b.ID, func(h *models.Hostel, bk models.Booking) error { return nil })
	assert.True(t, IsNotFound(err))
}

func TestRemoveUser_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.RemoveUser(999)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestRemoveUser_IDsNeverReused(t *testing.T) {
	s, _ := newTestStore(t)

	u := models.User{Name: "Gone Soon", Email: "gone@test.io", Role: models.RoleResident}
	require.NoError(t, s.UpsertUser(&u))
	require.NoError(t, s.RemoveUser(u.ID))

	next := models.User{Name: "Next", Email: "next@test.io", Role: models.RoleResident}
	require.NoError(t, s.UpsertUser(&next))
	assert.Greater(t, next.ID, u.ID)
}

func TestUpsertHostel_BumpsVersion(t *testing.T) {
	s, _ := newTestStore(t)

	h, ok := s.HostelByID(1)
	require.True(t, ok)
	require.Equal(t, uint64(1), h.Version)

	h.Name = "Renamed"
	require.NoError(t, s.UpsertHostel(&h))
	assert.Equal(t, uint64(2), h.Version)
}

func TestUpsertHostel_StaleVersionConflicts(t *testing.T) {
	s, _ := newTestStore(t)

	h, ok := s.HostelByID(1)
	require.True(t, ok)

	// A concurrent editor wins the first write.
	other := h
	other.Name = "First Writer"
	require.NoError(t, s.UpsertHostel(&other))

	// Our copy still carries the old version stamp.
	h.Name = "Second Writer"
	err := s.UpsertHostel(&h)
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	// The first write survived.
	current, _ := s.HostelByID(1)
	assert.Equal(t, "First Writer", current.Name)
}

func TestUpsertHostel_PreservesCreatedAt(t *testing.T) {
	s, _ := newTestStore(t)

	h, _ := s.HostelByID(1)
	created := h.CreatedAt

	h.Name = "Still Old"
	require.NoError(t, s.UpsertHostel(&h))

	current, _ := s.HostelByID(1)
	assert.Equal(t, created, current.CreatedAt)
}

func TestHostels_ReturnsDeepCopies(t *testing.T) {
	s, _ := newTestStore(t)

	h, _ := s.HostelByID(1)
	require.NotEmpty(t, h.Rooms)
	h.Rooms[0].Occupied = append(h.Rooms[0].Occupied, models.BedSlot{
		Kind: models.SlotManual, BedID: "S1", Label: "tamper",
	})

	// Mutating the returned copy never touches store state.
	fresh, _ := s.HostelByID(1)
	assert.Empty(t, fresh.Rooms[0].Occupied)
}

func TestUpsertBooking_AssignsIDAndVersion(t *testing.T) {
	s, _ := newTestStore(t)

	b := models.Booking{UserID: 1, HostelID: 1, RoomID: "101", BedID: "S1", Status: models.BookingStatusPending}
	require.NoError(t, s.UpsertBooking(&b))
	assert.Equal(t, uint64(1), b.ID)
	assert.Equal(t, uint64(1), b.Version)
	assert.False(t, b.CreatedAt.IsZero())
}

func TestNoticeByID(t *testing.T) {
	s, _ := newTestStore(t)

	n, ok := s.NoticeByID(1)
	require.True(t, ok)
	assert.Equal(t, models.GlobalNoticeScope, n.HostelID)

	_, ok = s.NoticeByID(42)
	assert.False(t, ok)
}

func TestWithHostelLock_Serializes(t *testing.T) {
	s, _ := newTestStore(t)

	var inside int
	var maxInside int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithHostelLock(1, func() error {
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
}
