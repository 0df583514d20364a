package services

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
)

// NoticeService distributes notices along two independent axes: scope
// (platform-wide via the zero hostel id, or one hostel) and audience
// (resident, manager, or both). Notices reference nothing else, so deleting
// one has no side effects.
type NoticeService struct {
	store  *store.Store
	logger *logrus.Logger
}

// NewNoticeService creates a new NoticeService
func NewNoticeService(st *store.Store, logger *logrus.Logger) *NoticeService {
	return &NoticeService{store: st, logger: logger}
}

// Create publishes a notice. Hostel-scoped notices must point at a real
// hostel; the zero id is the platform-wide scope, not a reference.
func (s *NoticeService) Create(req models.CreateNoticeRequest) (models.Notice, error) {
	if err := req.Validate(); err != nil {
		return models.Notice{}, store.NewValidationError("invalid notice: %v", err)
	}
	if req.HostelID != models.GlobalNoticeScope {
		if _, ok := s.store.HostelByID(req.HostelID); !ok {
			return models.Notice{}, store.NewNotFoundError("hostel", req.HostelID)
		}
	}
	notice := models.Notice{
		HostelID: req.HostelID,
		Title:    req.Title,
		Content:  req.Content,
		Date:     time.Now(),
		Audience: req.Audience,
	}
	if err := s.store.UpsertNotice(&notice); err != nil {
		return models.Notice{}, err
	}
	s.logger.WithFields(logrus.Fields{
		"notice_id": notice.ID,
		"hostel_id": notice.HostelID,
		"audience":  notice.Audience,
	}).Info("Notice published")
	return notice, nil
}

// Delete removes a notice.
func (s *NoticeService) Delete(noticeID uint64) error {
	return s.store.RemoveNotice(noticeID)
}

// ListFor returns the notices a viewer should see, newest first: global
// notices plus those scoped to hostelID, filtered to the viewer's role.
// Residents pass the hostel they reside in (or zero for global only);
// managers pass one of their hostels; admins see everything regardless.
func (s *NoticeService) ListFor(role models.Role, hostelID uint64) []models.Notice {
	var out []models.Notice
	for _, n := range s.store.Notices() {
		inScope := n.HostelID == models.GlobalNoticeScope || (hostelID != 0 && n.HostelID == hostelID)
		if role == models.RoleAdmin {
			inScope = true
		}
		if inScope && n.Audience.AppliesTo(role) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
