package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hostelnest/hostel-booking-backend/internal/models"
)

// Store is the single source of truth for users, hostels, bookings and
// notices. It keeps everything in memory and writes the full snapshot
// through its Persister on every mutation; if the write fails the in-memory
// state rolls back, so readers never observe state that is not durable.
//
// A Store handle is passed explicitly to every consumer. There is no
// package-level instance.
type Store struct {
	mu        sync.RWMutex
	persister Persister
	logger    *logrus.Logger
	state     Snapshot

	lockMu      sync.Mutex
	hostelLocks map[uint64]*sync.Mutex

	now func() time.Time
}

// New creates a Store from the persister's last snapshot, seeding the
// baseline fixture when none exists yet.
func New(p Persister, logger *logrus.Logger) (*Store, error) {
	s := &Store{
		persister:   p,
		logger:      logger,
		hostelLocks: make(map[uint64]*sync.Mutex),
		now:         time.Now,
	}

	snap, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snap == nil {
		snap = seedSnapshot(s.now())
		if err := p.Save(snap); err != nil {
			return nil, fmt.Errorf("failed to persist seed snapshot: %w", err)
		}
		logger.Info("No durable snapshot found, seeded baseline fixture")
	} else {
		logger.WithFields(logrus.Fields{
			"users":    len(snap.Users),
			"hostels":  len(snap.Hostels),
			"bookings": len(snap.Bookings),
			"notices":  len(snap.Notices),
		}).Info("Restored durable snapshot")
	}

	s.state = *cloneSnapshot(snap)
	return s, nil
}

// mutate runs fn against a working copy of the state, persists the result,
// and only then makes it visible. Any error from fn or from the persister
// leaves the previous state untouched.
func (s *Store) mutate(fn func(st *Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSnapshot(&s.state)
	if err := fn(next); err != nil {
		return err
	}
	next.SavedAt = s.now()
	if err := s.persister.Save(next); err != nil {
		s.logger.WithError(err).Error("Snapshot write failed, rolling back mutation")
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	s.state = *next
	return nil
}

// WithHostelLock serializes fn against all other occupancy-changing work on
// the same hostel. Approving a booking and editing room occupancy both run
// under this lock so two approvals cannot race for one bed.
func (s *Store) WithHostelLock(hostelID uint64, fn func() error) error {
	s.lockMu.Lock()
	l, ok := s.hostelLocks[hostelID]
	if !ok {
		l = &sync.Mutex{}
		s.hostelLocks[hostelID] = l
	}
	s.lockMu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn()
}

// ---- Users ----

// Users returns a copy of all users.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUsers(s.state.Users)
}

// UserByID returns the user with the given id.
func (s *Store) UserByID(id uint64) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.state.Users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// UserByEmail returns the user with the given email.
func (s *Store) UserByEmail(email string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.state.Users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

// UpsertUser replaces the user with a matching id, or appends it with the
// next sequence id when id is zero. The caller's struct is updated with the
// assigned id and timestamps only once the write is durable; a failed write
// hands back the struct exactly as it came in.
func (s *Store) UpsertUser(u *models.User) error {
	staged := *u
	err := s.mutate(func(st *Snapshot) error {
		now := s.now()
		staged.UpdatedAt = now
		if staged.ID == 0 {
			st.Sequences.Users++
			staged.ID = st.Sequences.Users
			staged.CreatedAt = now
			st.Users = append(st.Users, staged)
			return nil
		}
		for i := range st.Users {
			if st.Users[i].ID == staged.ID {
				staged.CreatedAt = st.Users[i].CreatedAt
				st.Users[i] = staged
				return nil
			}
		}
		st.Users = append(st.Users, staged)
		return nil
	})
	if err != nil {
		return err
	}
	*u = staged
	return nil
}

// RemoveUser hard-deletes a user.
func (s *Store) RemoveUser(id uint64) error {
	return s.mutate(func(st *Snapshot) error {
		for i := range st.Users {
			if st.Users[i].ID == id {
				st.Users = append(st.Users[:i], st.Users[i+1:]...)
				return nil
			}
		}
		return NewNotFoundError("user", id)
	})
}

// ---- Hostels ----

// Hostels returns a copy of all hostels.
func (s *Store) Hostels() []models.Hostel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneHostels(s.state.Hostels)
}

// HostelByID returns the hostel with the given id.
func (s *Store) HostelByID(id uint64) (models.Hostel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.state.Hostels {
		if s.state.Hostels[i].ID == id {
			return cloneHostel(s.state.Hostels[i]), true
		}
	}
	return models.Hostel{}, false
}

// UpsertHostel writes a hostel back. Existing hostels are guarded by the
// optimistic version stamp: a stale Version fails with ConflictError and no
// mutation. The bumped stamp and assigned id reach the caller's struct only
// after the write is durable.
func (s *Store) UpsertHostel(h *models.Hostel) error {
	staged := cloneHostel(*h)
	err := s.mutate(func(st *Snapshot) error {
		now := s.now()
		staged.UpdatedAt = now
		if staged.ID == 0 {
			st.Sequences.Hostels++
			staged.ID = st.Sequences.Hostels
			staged.Version = 1
			staged.CreatedAt = now
			st.Hostels = append(st.Hostels, cloneHostel(staged))
			return nil
		}
		for i := range st.Hostels {
			if st.Hostels[i].ID == staged.ID {
				if st.Hostels[i].Version != staged.Version {
					return NewConflictError("hostel %d was modified concurrently (version %d, want %d)",
						staged.ID, st.Hostels[i].Version, staged.Version)
				}
				staged.Version++
				staged.CreatedAt = st.Hostels[i].CreatedAt
				st.Hostels[i] = cloneHostel(staged)
				return nil
			}
		}
		st.Hostels = append(st.Hostels, cloneHostel(staged))
		return nil
	})
	if err != nil {
		return err
	}
	*h = staged
	return nil
}

// RemoveHostel hard-deletes a hostel.
func (s *Store) RemoveHostel(id uint64) error {
	return s.mutate(func(st *Snapshot) error {
		for i := range st.Hostels {
			if st.Hostels[i].ID == id {
				st.Hostels = append(st.Hostels[:i], st.Hostels[i+1:]...)
				return nil
			}
		}
		return NewNotFoundError("hostel", id)
	})
}

// ---- Bookings ----

// Bookings returns a copy of all bookings.
func (s *Store) Bookings() []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBookings(s.state.Bookings)
}

// BookingByID returns the booking with the given id.
func (s *Store) BookingByID(id uint64) (models.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.state.Bookings {
		if s.state.Bookings[i].ID == id {
			return cloneBooking(s.state.Bookings[i]), true
		}
	}
	return models.Booking{}, false
}

// UpsertBooking writes a booking back, with the same version and
// staged-write discipline as UpsertHostel.
func (s *Store) UpsertBooking(b *models.Booking) error {
	staged := cloneBooking(*b)
	err := s.mutate(func(st *Snapshot) error {
		now := s.now()
		staged.UpdatedAt = now
		if staged.ID == 0 {
			st.Sequences.Bookings++
			staged.ID = st.Sequences.Bookings
			staged.Version = 1
			staged.CreatedAt = now
			st.Bookings = append(st.Bookings, cloneBooking(staged))
			return nil
		}
		for i := range st.Bookings {
			if st.Bookings[i].ID == staged.ID {
				if st.Bookings[i].Version != staged.Version {
					return NewConflictError("booking %d was modified concurrently (version %d, want %d)",
						staged.ID, st.Bookings[i].Version, staged.Version)
				}
				staged.Version++
				staged.CreatedAt = st.Bookings[i].CreatedAt
				st.Bookings[i] = cloneBooking(staged)
				return nil
			}
		}
		st.Bookings = append(st.Bookings, cloneBooking(staged))
		return nil
	})
	if err != nil {
		return err
	}
	*b = staged
	return nil
}

// UpdateHostelAndBooking applies fn to a hostel and a booking inside one
// snapshot write, so the pair is durable together or not at all. Booking
// approval runs through here: the occupied bed and the approved status can
// never be separated by a failed save. Both version stamps are bumped on
// success.
func (s *Store) UpdateHostelAndBooking(hostelID, bookingID uint64, fn func(h *models.Hostel, b *models.Booking) error) error {
	return s.mutate(func(st *Snapshot) error {
		var h *models.Hostel
		for i := range st.Hostels {
			if st.Hostels[i].ID == hostelID {
				h = &st.Hostels[i]
				break
			}
		}
		if h == nil {
			return NewNotFoundError("hostel", hostelID)
		}
		var b *models.Booking
		for i := range st.Bookings {
			if st.Bookings[i].ID == bookingID {
				b = &st.Bookings[i]
				break
			}
		}
		if b == nil {
			return NewNotFoundError("booking", bookingID)
		}
		if err := fn(h, b); err != nil {
			return err
		}
		now := s.now()
		h.Version++
		h.UpdatedAt = now
		b.Version++
		b.UpdatedAt = now
		return nil
	})
}

// RemoveBookingAndUpdateHostel deletes a booking and lets fn adjust its
// hostel in the same snapshot write. fn receives the booking about to be
// removed; h is nil when the hostel no longer exists.
func (s *Store) RemoveBookingAndUpdateHostel(bookingID uint64, fn func(h *models.Hostel, b models.Booking) error) error {
	return s.mutate(func(st *Snapshot) error {
		idx := -1
		for i := range st.Bookings {
			if st.Bookings[i].ID == bookingID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return NewNotFoundError("booking", bookingID)
		}
		var h *models.Hostel
		for i := range st.Hostels {
			if st.Hostels[i].ID == st.Bookings[idx].HostelID {
				h = &st.Hostels[i]
				break
			}
		}
		if err := fn(h, st.Bookings[idx]); err != nil {
			return err
		}
		if h != nil {
			h.Version++
			h.UpdatedAt = s.now()
		}
		st.Bookings = append(st.Bookings[:idx], st.Bookings[idx+1:]...)
		return nil
	})
}

// RemoveBooking hard-deletes a booking.
func (s *Store) RemoveBooking(id uint64) error {
	return s.mutate(func(st *Snapshot) error {
		for i := range st.Bookings {
			if st.Bookings[i].ID == id {
				st.Bookings = append(st.Bookings[:i], st.Bookings[i+1:]...)
				return nil
			}
		}
		return NewNotFoundError("booking", id)
	})
}

// ---- Notices ----

// Notices returns a copy of all notices.
func (s *Store) Notices() []models.Notice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notice, len(s.state.Notices))
	copy(out, s.state.Notices)
	return out
}

// NoticeByID looks up a notice by id.
func (s *Store) NoticeByID(id uint64) (models.Notice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.state.Notices {
		if n.ID == id {
			return n, true
		}
	}
	return models.Notice{}, false
}

// UpsertNotice replaces the notice with a matching id, or appends it.
func (s *Store) UpsertNotice(n *models.Notice) error {
	staged := *n
	err := s.mutate(func(st *Snapshot) error {
		if staged.ID == 0 {
			st.Sequences.Notices++
			staged.ID = st.Sequences.Notices
			st.Notices = append(st.Notices, staged)
			return nil
		}
		for i := range st.Notices {
			if st.Notices[i].ID == staged.ID {
				st.Notices[i] = staged
				return nil
			}
		}
		st.Notices = append(st.Notices, staged)
		return nil
	})
	if err != nil {
		return err
	}
	*n = staged
	return nil
}

// RemoveNotice hard-deletes a notice. Notices reference nothing, so no
// cleanup follows.
func (s *Store) RemoveNotice(id uint64) error {
	return s.mutate(func(st *Snapshot) error {
		for i := range st.Notices {
			if st.Notices[i].ID == id {
				st.Notices = append(st.Notices[:i], st.Notices[i+1:]...)
				return nil
			}
		}
		return NewNotFoundError("notice", id)
	})
}
