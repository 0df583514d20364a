package store

import "github.com/hostelnest/hostel-booking-backend/internal/models"

// Deep copies keep callers from aliasing the store's internal slices and
// pointers. Entities with only value fields are copied by assignment.

func cloneSnapshot(s *Snapshot) *Snapshot {
	out := &Snapshot{
		Users:     cloneUsers(s.Users),
		Hostels:   cloneHostels(s.Hostels),
		Bookings:  cloneBookings(s.Bookings),
		Notices:   make([]models.Notice, len(s.Notices)),
		Sequences: s.Sequences,
		SavedAt:   s.SavedAt,
	}
	copy(out.Notices, s.Notices)
	return out
}

func cloneUsers(users []models.User) []models.User {
	out := make([]models.User, len(users))
	copy(out, users)
	return out
}

func cloneHostels(hostels []models.Hostel) []models.Hostel {
	out := make([]models.Hostel, len(hostels))
	for i := range hostels {
		out[i] = cloneHostel(hostels[i])
	}
	return out
}

func cloneHostel(h models.Hostel) models.Hostel {
	out := h
	out.Rooms = make([]models.Room, len(h.Rooms))
	for i, r := range h.Rooms {
		out.Rooms[i] = r
		out.Rooms[i].Occupied = make([]models.BedSlot, len(r.Occupied))
		copy(out.Rooms[i].Occupied, r.Occupied)
	}
	if h.Gallery != nil {
		out.Gallery = make([]string, len(h.Gallery))
		copy(out.Gallery, h.Gallery)
	}
	if h.Coords != nil {
		c := *h.Coords
		out.Coords = &c
	}
	if h.AdminNote != nil {
		n := *h.AdminNote
		out.AdminNote = &n
	}
	return out
}

func cloneBookings(bookings []models.Booking) []models.Booking {
	out := make([]models.Booking, len(bookings))
	for i := range bookings {
		out[i] = cloneBooking(bookings[i])
	}
	return out
}

func cloneBooking(b models.Booking) models.Booking {
	out := b
	if b.ApplicationDetails != nil {
		d := *b.ApplicationDetails
		out.ApplicationDetails = &d
	}
	if b.LastPaymentDate != nil {
		t := *b.LastPaymentDate
		out.LastPaymentDate = &t
	}
	return out
}
