package services

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
)

// BookingService drives the booking lifecycle: pending bookings move to
// approved (reserving their bed) or rejected (no occupancy effect), both
// terminal. The monthly fee state cycles independently and is reset by a
// manager each billing period; there is no scheduler.
type BookingService struct {
	store     *store.Store
	occupancy *OccupancyEngine
	logger    *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(st *store.Store, occupancy *OccupancyEngine, logger *logrus.Logger) *BookingService {
	return &BookingService{store: st, occupancy: occupancy, logger: logger}
}

// Create records a new pending booking with its application snapshot and
// cached display names.
func (s *BookingService) Create(userID, hostelID uint64, roomID, bedID string, details models.ApplicationDetails) (models.Booking, error) {
	if err := details.Validate(); err != nil {
		return models.Booking{}, store.NewValidationError("invalid application: %v", err)
	}
	user, ok := s.store.UserByID(userID)
	if !ok {
		return models.Booking{}, store.NewNotFoundError("user", userID)
	}
	hostel, ok := s.store.HostelByID(hostelID)
	if !ok {
		return models.Booking{}, store.NewNotFoundError("hostel", hostelID)
	}
	room := hostel.FindRoom(roomID)
	if room == nil {
		return models.Booking{}, store.NewNotFoundError("room", roomID)
	}
	if room.HasBed(bedID) {
		return models.Booking{}, store.NewConflictError("bed %s in room %s is already occupied", bedID, roomID)
	}

	booking := models.Booking{
		Reference:          uuid.New().String(),
		UserID:             userID,
		HostelID:           hostelID,
		RoomID:             roomID,
		BedID:              bedID,
		Status:             models.BookingStatusPending,
		ApplicationDetails: &details,
		UserName:           user.Name,
		HostelName:         hostel.Name,
	}
	if err := s.store.UpsertBooking(&booking); err != nil {
		return models.Booking{}, err
	}
	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"hostel_id":  hostelID,
		"room_id":    roomID,
		"bed_id":     bedID,
	}).Info("Booking created")
	return booking, nil
}

// CreateManual is the manager path for off-platform residents: it creates a
// managed user and then their booking as two sequential writes. A failure
// between the two leaves the user behind without a booking; the store offers
// no cross-entity rollback.
func (s *BookingService) CreateManual(hostelID uint64, roomID, bedID string, userReq models.CreateManagedUserRequest, details models.ApplicationDetails) (models.Booking, error) {
	if err := userReq.Validate(); err != nil {
		return models.Booking{}, store.NewValidationError("invalid user: %v", err)
	}
	if _, exists := s.store.UserByEmail(userReq.Email); exists {
		return models.Booking{}, store.NewConflictError("email %s is already registered", userReq.Email)
	}
	user := models.User{
		Name:      userReq.Name,
		Email:     userReq.Email,
		Password:  userReq.Password,
		Role:      models.RoleResident,
		Status:    models.UserStatusActive,
		Phone:     userReq.Phone,
		Address:   userReq.Address,
		IsManaged: true,
	}
	if err := s.store.UpsertUser(&user); err != nil {
		return models.Booking{}, err
	}
	return s.Create(user.ID, hostelID, roomID, bedID, details)
}

// Approve moves a pending booking to approved and reserves its bed. The
// whole check-and-occupy sequence runs under the hostel lock so two
// approvals cannot win the same bed, and the occupied slot and the approved
// status land in a single snapshot write: a failed save leaves both the room
// and the booking exactly as they were, so the approval can simply be
// retried.
func (s *BookingService) Approve(bookingID uint64) (models.Booking, error) {
	var approved models.Booking
	err := s.store.WithHostelLock(s.hostelOf(bookingID), func() error {
		booking, ok := s.store.BookingByID(bookingID)
		if !ok {
			return store.NewNotFoundError("booking", bookingID)
		}
		return s.store.UpdateHostelAndBooking(booking.HostelID, bookingID, func(h *models.Hostel, b *models.Booking) error {
			if b.Status != models.BookingStatusPending {
				return store.NewValidationError("booking %d is %s, only pending bookings can be approved",
					bookingID, b.Status)
			}
			room := h.FindRoom(b.RoomID)
			if room == nil {
				return store.NewNotFoundError("room", b.RoomID)
			}
			if err := s.occupancy.Occupy(room, b.BedID, b.ID); err != nil {
				return err
			}
			b.Status = models.BookingStatusApproved
			b.IsActive = true
			return nil
		})
	})
	if err != nil {
		return models.Booking{}, err
	}
	approved, _ = s.store.BookingByID(bookingID)
	s.logger.WithField("booking_id", bookingID).Info("Booking approved, bed reserved")
	return approved, nil
}

// Reject moves a pending booking to rejected. No occupancy changes. It still
// takes the hostel lock so it cannot interleave with an in-flight approval
// of the same booking.
func (s *BookingService) Reject(bookingID uint64) (models.Booking, error) {
	var rejected models.Booking
	err := s.store.WithHostelLock(s.hostelOf(bookingID), func() error {
		booking, ok := s.store.BookingByID(bookingID)
		if !ok {
			return store.NewNotFoundError("booking", bookingID)
		}
		if booking.Status != models.BookingStatusPending {
			return store.NewValidationError("booking %d is %s, only pending bookings can be rejected",
				bookingID, booking.Status)
		}
		booking.Status = models.BookingStatusRejected
		booking.IsActive = false
		rejected = booking
		return s.store.UpsertBooking(&rejected)
	})
	if err != nil {
		return models.Booking{}, err
	}
	return rejected, nil
}

// Delete removes a booking, releasing its bed when it had been approved.
// With cascadeUser set, the linked user is also removed, but only when no
// other booking references them.
func (s *BookingService) Delete(bookingID uint64, cascadeUser bool) error {
	booking, ok := s.store.BookingByID(bookingID)
	if !ok {
		return store.NewNotFoundError("booking", bookingID)
	}
	err := s.store.WithHostelLock(booking.HostelID, func() error {
		// Releasing the bed and dropping the booking share one snapshot
		// write, so a failed save cannot free a bed while the approved
		// booking survives.
		return s.store.RemoveBookingAndUpdateHostel(bookingID, func(h *models.Hostel, b models.Booking) error {
			if h == nil || b.Status != models.BookingStatusApproved {
				return nil
			}
			if room := h.FindRoom(b.RoomID); room != nil {
				s.occupancy.ReleaseBooking(room, b.ID)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	if cascadeUser && !s.HasOtherBookings(booking.UserID, bookingID) {
		if err := s.store.RemoveUser(booking.UserID); err != nil && !store.IsNotFound(err) {
			return err
		}
	}
	s.logger.WithField("booking_id", bookingID).Info("Booking deleted")
	return nil
}

// HasOtherBookings reports whether userID is referenced by any booking other
// than excludingBookingID. User deletion is refused while this holds.
func (s *BookingService) HasOtherBookings(userID, excludingBookingID uint64) bool {
	for _, b := range s.store.Bookings() {
		if b.UserID == userID && b.ID != excludingBookingID {
			return true
		}
	}
	return false
}

// SetFeeStatus cycles the monthly fee state of a booking. Marking paid
// records the payment date. Runs under the hostel lock so the write cannot
// interleave with an approval of the same booking.
func (s *BookingService) SetFeeStatus(bookingID uint64, status models.FeeStatus) (models.Booking, error) {
	var updated models.Booking
	err := s.store.WithHostelLock(s.hostelOf(bookingID), func() error {
		booking, ok := s.store.BookingByID(bookingID)
		if !ok {
			return store.NewNotFoundError("booking", bookingID)
		}
		booking.MonthlyFeeStatus = status
		if status == models.FeeStatusPaid {
			now := time.Now()
			booking.LastPaymentDate = &now
		}
		updated = booking
		return s.store.UpsertBooking(&updated)
	})
	if err != nil {
		return models.Booking{}, err
	}
	return updated, nil
}

// UnpaidBookings returns approved bookings whose effective fee status is
// unpaid. Records that never carried a fee status count as unpaid.
func (s *BookingService) UnpaidBookings() []models.Booking {
	var out []models.Booking
	for _, b := range s.store.Bookings() {
		if b.Status == models.BookingStatusApproved && b.EffectiveFeeStatus() == models.FeeStatusUnpaid {
			out = append(out, b)
		}
	}
	return out
}

// ListForUser returns the bookings of one resident, newest first.
func (s *BookingService) ListForUser(userID uint64) []models.Booking {
	var out []models.Booking
	for _, b := range s.store.Bookings() {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out
}

// ListForHostel returns the bookings against one hostel, newest first.
func (s *BookingService) ListForHostel(hostelID uint64) []models.Booking {
	var out []models.Booking
	for _, b := range s.store.Bookings() {
		if b.HostelID == hostelID {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out
}

// ListAll returns every booking, newest first.
func (s *BookingService) ListAll() []models.Booking {
	out := s.store.Bookings()
	sortBookings(out)
	return out
}

// ResyncUserName refreshes the cached resident name on the user's bookings
// after a rename.
func (s *BookingService) ResyncUserName(userID uint64) error {
	user, ok := s.store.UserByID(userID)
	if !ok {
		return store.NewNotFoundError("user", userID)
	}
	for _, b := range s.store.Bookings() {
		if b.UserID == userID && b.UserName != user.Name {
			b.UserName = user.Name
			if err := s.store.UpsertBooking(&b); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResyncHostelName refreshes the cached hostel name on the hostel's bookings
// after a rename.
func (s *BookingService) ResyncHostelName(hostelID uint64) error {
	hostel, ok := s.store.HostelByID(hostelID)
	if !ok {
		return store.NewNotFoundError("hostel", hostelID)
	}
	for _, b := range s.store.Bookings() {
		if b.HostelID == hostelID && b.HostelName != hostel.Name {
			b.HostelName = hostel.Name
			if err := s.store.UpsertBooking(&b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *BookingService) hostelOf(bookingID uint64) uint64 {
	if b, ok := s.store.BookingByID(bookingID); ok {
		return b.HostelID
	}
	return 0
}

func sortBookings(bookings []models.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}
