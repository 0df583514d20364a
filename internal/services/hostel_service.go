package services

import (
	"github.com/sirupsen/logrus"

	"github.com/hostelnest/hostel-booking-backend/internal/geo"
	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
)

// HostelService manages listings. Manager edits send a hostel back to
// pending review; admin status transitions never do. Occupancy edits run
// through the OccupancyEngine under the hostel lock.
type HostelService struct {
	store     *store.Store
	occupancy *OccupancyEngine
	logger    *logrus.Logger
}

// NewHostelService creates a new HostelService
func NewHostelService(st *store.Store, occupancy *OccupancyEngine, logger *logrus.Logger) *HostelService {
	return &HostelService{store: st, occupancy: occupancy, logger: logger}
}

// Create registers a manager's new listing in pending status.
func (s *HostelService) Create(managerID uint64, req models.CreateHostelRequest) (models.Hostel, error) {
	if err := req.Validate(); err != nil {
		return models.Hostel{}, store.NewValidationError("invalid hostel: %v", err)
	}
	if err := geo.Validate(req.Region, req.District, req.Subdistrict); err != nil {
		return models.Hostel{}, store.NewValidationError("invalid location: %v", err)
	}
	rooms := make([]models.Room, len(req.Rooms))
	for i, r := range req.Rooms {
		rooms[i] = models.Room{ID: r.ID, Capacity: r.Capacity, Price: r.Price}
	}
	hostel := models.Hostel{
		Name: req.Name,
		Location: models.Location{
			Region:      req.Region,
			District:    req.District,
			Subdistrict: req.Subdistrict,
			Details:     req.Details,
		},
		Coords:    req.Coords,
		ManagerID: managerID,
		Price:     req.Price,
		Status:    models.HostelStatusPending,
		Rooms:     rooms,
		Gallery:   req.Gallery,
	}
	if err := s.store.UpsertHostel(&hostel); err != nil {
		return models.Hostel{}, err
	}
	s.logger.WithFields(logrus.Fields{"hostel_id": hostel.ID, "manager_id": managerID}).
		Info("Hostel created, pending review")
	return hostel, nil
}

// Update applies a manager's field edits. Any accepted edit resets the
// hostel to pending regardless of which field changed.
func (s *HostelService) Update(managerID, hostelID uint64, req models.UpdateHostelRequest) (models.Hostel, error) {
	hostel, ok := s.store.HostelByID(hostelID)
	if !ok {
		return models.Hostel{}, store.NewNotFoundError("hostel", hostelID)
	}
	if hostel.ManagerID != managerID {
		return models.Hostel{}, store.NewValidationError("hostel %d is not managed by user %d", hostelID, managerID)
	}

	if req.Name != nil {
		hostel.Name = *req.Name
	}
	if req.Region != nil {
		hostel.Location.Region = *req.Region
	}
	if req.District != nil {
		hostel.Location.District = *req.District
	}
	if req.Subdistrict != nil {
		hostel.Location.Subdistrict = *req.Subdistrict
	}
	if req.Details != nil {
		hostel.Location.Details = *req.Details
	}
	if req.Coords != nil {
		hostel.Coords = req.Coords
	}
	if req.Price != nil {
		hostel.Price = *req.Price
	}
	if req.Gallery != nil {
		hostel.Gallery = req.Gallery
	}
	if req.Rooms != nil {
		rooms, err := reconcileRooms(&hostel, req.Rooms)
		if err != nil {
			return models.Hostel{}, err
		}
		hostel.Rooms = rooms
	}
	if req.Region != nil || req.District != nil || req.Subdistrict != nil {
		loc := hostel.Location
		if err := geo.Validate(loc.Region, loc.District, loc.Subdistrict); err != nil {
			return models.Hostel{}, store.NewValidationError("invalid location: %v", err)
		}
	}

	// Manager edits always re-enter review.
	hostel.Status = models.HostelStatusPending
	if req.Version != 0 {
		hostel.Version = req.Version
	}
	if err := s.store.UpsertHostel(&hostel); err != nil {
		return models.Hostel{}, err
	}
	return hostel, nil
}

// reconcileRooms rebuilds a hostel's room list from an update request.
// Retained rooms keep their occupied slots and may not shrink capacity below
// them; new rooms start empty; a room may only be dropped once it is empty.
func reconcileRooms(hostel *models.Hostel, inputs []models.RoomInput) ([]models.Room, error) {
	seen := make(map[string]bool, len(inputs))
	rooms := make([]models.Room, 0, len(inputs))
	for _, in := range inputs {
		if in.Capacity <= 0 {
			return nil, store.NewValidationError("room %s: capacity must be positive", in.ID)
		}
		if seen[in.ID] {
			return nil, store.NewValidationError("duplicate room id %s", in.ID)
		}
		seen[in.ID] = true
		room := models.Room{ID: in.ID, Capacity: in.Capacity, Price: in.Price}
		if existing := hostel.FindRoom(in.ID); existing != nil {
			if len(existing.Occupied) > in.Capacity {
				return nil, store.NewValidationError("room %s: capacity %d is below %d occupied beds",
					in.ID, in.Capacity, len(existing.Occupied))
			}
			room.Occupied = existing.Occupied
		}
		rooms = append(rooms, room)
	}
	for i := range hostel.Rooms {
		if !seen[hostel.Rooms[i].ID] && len(hostel.Rooms[i].Occupied) > 0 {
			return nil, store.NewValidationError("room %s still has %d occupied beds and cannot be removed",
				hostel.Rooms[i].ID, len(hostel.Rooms[i].Occupied))
		}
	}
	return rooms, nil
}

// SetStatus is the admin transition: it changes status without resetting the
// listing to pending.
func (s *HostelService) SetStatus(hostelID uint64, status models.HostelStatus) (models.Hostel, error) {
	switch status {
	case models.HostelStatusActive, models.HostelStatusRejected, models.HostelStatusInactive, models.HostelStatusPending:
	default:
		return models.Hostel{}, store.NewValidationError("unknown hostel status %q", status)
	}
	hostel, ok := s.store.HostelByID(hostelID)
	if !ok {
		return models.Hostel{}, store.NewNotFoundError("hostel", hostelID)
	}
	hostel.Status = status
	if err := s.store.UpsertHostel(&hostel); err != nil {
		return models.Hostel{}, err
	}
	s.logger.WithFields(logrus.Fields{"hostel_id": hostelID, "status": status}).
		Info("Hostel status changed by admin")
	return hostel, nil
}

// ToggleActive flips a manager's hostel between active and inactive. Other
// states need the admin.
func (s *HostelService) ToggleActive(managerID, hostelID uint64) (models.Hostel, error) {
	hostel, ok := s.store.HostelByID(hostelID)
	if !ok {
		return models.Hostel{}, store.NewNotFoundError("hostel", hostelID)
	}
	if hostel.ManagerID != managerID {
		return models.Hostel{}, store.NewValidationError("hostel %d is not managed by user %d", hostelID, managerID)
	}
	switch hostel.Status {
	case models.HostelStatusActive:
		hostel.Status = models.HostelStatusInactive
	case models.HostelStatusInactive:
		hostel.Status = models.HostelStatusActive
	default:
		return models.Hostel{}, store.NewValidationError("hostel %d is %s and cannot be toggled", hostelID, hostel.Status)
	}
	if err := s.store.UpsertHostel(&hostel); err != nil {
		return models.Hostel{}, err
	}
	return hostel, nil
}

// Delete removes a listing. It is refused while any booking still references
// the hostel, so bookings are never silently orphaned.
func (s *HostelService) Delete(hostelID uint64) error {
	for _, b := range s.store.Bookings() {
		if b.HostelID == hostelID {
			return store.NewValidationError("hostel %d still has bookings; remove them first", hostelID)
		}
	}
	return s.store.RemoveHostel(hostelID)
}

// SetAdminNote attaches or replaces the admin oversight note on a hostel.
func (s *HostelService) SetAdminNote(hostelID uint64, note *models.AdminNote) (models.Hostel, error) {
	if note != nil && !note.Audience.Valid() {
		return models.Hostel{}, store.NewValidationError("audience must be user, manager or both")
	}
	hostel, ok := s.store.HostelByID(hostelID)
	if !ok {
		return models.Hostel{}, store.NewNotFoundError("hostel", hostelID)
	}
	hostel.AdminNote = note
	if err := s.store.UpsertHostel(&hostel); err != nil {
		return models.Hostel{}, err
	}
	return hostel, nil
}

// SetOccupiedCount forces a room's occupied count, synthesizing manual slots
// on growth. Runs under the hostel lock.
func (s *HostelService) SetOccupiedCount(managerID, hostelID uint64, roomID string, count int) (models.Hostel, error) {
	var updated models.Hostel
	err := s.store.WithHostelLock(hostelID, func() error {
		hostel, ok := s.store.HostelByID(hostelID)
		if !ok {
			return store.NewNotFoundError("hostel", hostelID)
		}
		if hostel.ManagerID != managerID {
			return store.NewValidationError("hostel %d is not managed by user %d", hostelID, managerID)
		}
		room := hostel.FindRoom(roomID)
		if room == nil {
			return store.NewNotFoundError("room", roomID)
		}
		if err := s.occupancy.SetOccupiedCount(room, count); err != nil {
			return err
		}
		updated = hostel
		return s.store.UpsertHostel(&updated)
	})
	if err != nil {
		return models.Hostel{}, err
	}
	return updated, nil
}

// SetCapacity resizes a room under the hostel lock.
func (s *HostelService) SetCapacity(managerID, hostelID uint64, roomID string, capacity int) (models.Hostel, error) {
	var updated models.Hostel
	err := s.store.WithHostelLock(hostelID, func() error {
		hostel, ok := s.store.HostelByID(hostelID)
		if !ok {
			return store.NewNotFoundError("hostel", hostelID)
		}
		if hostel.ManagerID != managerID {
			return store.NewValidationError("hostel %d is not managed by user %d", hostelID, managerID)
		}
		room := hostel.FindRoom(roomID)
		if room == nil {
			return store.NewNotFoundError("room", roomID)
		}
		if err := s.occupancy.SetCapacity(room, capacity); err != nil {
			return err
		}
		updated = hostel
		return s.store.UpsertHostel(&updated)
	})
	if err != nil {
		return models.Hostel{}, err
	}
	return updated, nil
}

// ListActive returns the hostels residents can browse.
func (s *HostelService) ListActive() []models.Hostel {
	var out []models.Hostel
	for _, h := range s.store.Hostels() {
		if h.Status == models.HostelStatusActive {
			out = append(out, h)
		}
	}
	return out
}

// ListForManager returns every listing owned by one manager.
func (s *HostelService) ListForManager(managerID uint64) []models.Hostel {
	var out []models.Hostel
	for _, h := range s.store.Hostels() {
		if h.ManagerID == managerID {
			out = append(out, h)
		}
	}
	return out
}
