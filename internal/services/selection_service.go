package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
)

// SelectionSession is one resident's short-lived walk through a hostel's
// seat grids. It lives only in memory: restarting the process discards open
// selections, which is acceptable because nothing is reserved until the
// booking exists.
type SelectionSession struct {
	ID        string    `json:"id"`
	UserID    uint64    `json:"user_id"`
	HostelID  uint64    `json:"hostel_id"`
	RoomID    string    `json:"room_id,omitempty"`
	BedID     string    `json:"bed_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Selected reports whether the session currently holds a bed choice.
func (s *SelectionSession) Selected() bool {
	return s.RoomID != "" && s.BedID != ""
}

// SelectionService runs the seat-selection workflow: start a session against
// an active hostel, pick at most one free bed across the whole hostel
// (picking again replaces the previous choice), then submit an application
// that becomes a pending booking. Expired sessions are swept in the
// background.
type SelectionService struct {
	store    *store.Store
	bookings *BookingService
	logger   *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*SelectionSession
	ttl      time.Duration
	stopCh   chan struct{}
}

// NewSelectionService creates a new SelectionService
func NewSelectionService(st *store.Store, bookings *BookingService, ttl time.Duration, logger *logrus.Logger) *SelectionService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SelectionService{
		store:    st,
		bookings: bookings,
		logger:   logger,
		sessions: make(map[string]*SelectionSession),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep of expired sessions.
func (s *SelectionService) Start() {
	s.logger.Info("Starting seat selection session sweeper")
	go s.run()
}

// Stop stops the background sweep.
func (s *SelectionService) Stop() {
	close(s.stopCh)
}

func (s *SelectionService) run() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			s.logger.Info("Seat selection session sweeper stopped")
			return
		}
	}
}

func (s *SelectionService) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	expired := 0
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		s.logger.WithField("count", expired).Info("Expired seat selection sessions")
	}
}

// StartSession opens a selection session for a resident against an active
// hostel.
func (s *SelectionService) StartSession(userID, hostelID uint64) (SelectionSession, error) {
	hostel, ok := s.store.HostelByID(hostelID)
	if !ok {
		return SelectionSession{}, store.NewNotFoundError("hostel", hostelID)
	}
	if hostel.Status != models.HostelStatusActive {
		return SelectionSession{}, store.NewValidationError("hostel %d is not open for booking", hostelID)
	}
	now := time.Now()
	sess := &SelectionSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		HostelID:  hostelID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return *sess, nil
}

// Select records a bed choice. A session holds at most one selection across
// the whole hostel; selecting again replaces the previous choice. The bed
// must be free right now, though the real race is settled at approval time.
func (s *SelectionService) Select(userID uint64, sessionID, roomID, bedID string) (SelectionSession, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return SelectionSession{}, err
	}
	hostel, ok := s.store.HostelByID(sess.HostelID)
	if !ok {
		return SelectionSession{}, store.NewNotFoundError("hostel", sess.HostelID)
	}
	room := hostel.FindRoom(roomID)
	if room == nil {
		return SelectionSession{}, store.NewNotFoundError("room", roomID)
	}
	if room.HasBed(bedID) {
		return SelectionSession{}, store.NewConflictError("bed %s in room %s is already occupied", bedID, roomID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.RoomID = roomID
	sess.BedID = bedID
	return *sess, nil
}

// Deselect clears the current bed choice without ending the session.
func (s *SelectionService) Deselect(userID uint64, sessionID string) (SelectionSession, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return SelectionSession{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.RoomID = ""
	sess.BedID = ""
	return *sess, nil
}

// Submit turns the session's selection plus the application form into a
// pending booking. If the chosen bed was taken between selection and
// submission the submit fails with ConflictError and the session survives so
// the resident can re-select; no substitute bed is ever chosen silently.
func (s *SelectionService) Submit(userID uint64, sessionID string, details models.ApplicationDetails) (models.Booking, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return models.Booking{}, err
	}
	if !sess.Selected() {
		return models.Booking{}, store.NewValidationError("no bed selected")
	}
	booking, err := s.bookings.Create(sess.UserID, sess.HostelID, sess.RoomID, sess.BedID, details)
	if err != nil {
		// Conflicts keep the session alive for re-selection.
		return models.Booking{}, err
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return booking, nil
}

// Session returns a copy of an open session.
func (s *SelectionService) Session(userID uint64, sessionID string) (SelectionSession, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return SelectionSession{}, err
	}
	return *sess, nil
}

// session resolves an open session for its owner. A session held by a
// different resident resolves the same way as a missing one, so session ids
// cannot be probed across accounts.
func (s *SelectionService) session(userID uint64, id string) (*SelectionSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.UserID != userID || time.Now().After(sess.ExpiresAt) {
		return nil, store.NewNotFoundError("selection session", id)
	}
	return sess, nil
}
