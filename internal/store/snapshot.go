package store

import (
	"time"

	"github.com/hostelnest/hostel-booking-backend/internal/models"
)

// Snapshot is the full durable state of the marketplace. Every successful
// mutation writes one of these through the configured Persister before it is
// visible to readers.
type Snapshot struct {
	Users    []models.User    `json:"users"`
	Hostels  []models.Hostel  `json:"hostels"`
	Bookings []models.Booking `json:"bookings"`
	Notices  []models.Notice  `json:"notices"`

	Sequences Sequences `json:"sequences"`
	SavedAt   time.Time `json:"saved_at"`
}

// Sequences tracks the next id per collection. Ids are never reused after a
// hard delete.
type Sequences struct {
	Users    uint64 `json:"users"`
	Hostels  uint64 `json:"hostels"`
	Bookings uint64 `json:"bookings"`
	Notices  uint64 `json:"notices"`
}

// Persister loads and saves durable snapshots. Load returns (nil, nil) when
// no snapshot has ever been written.
type Persister interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
}

// seedSnapshot builds the baseline fixture used when no durable snapshot
// exists yet: one admin, one manager with a reviewed hostel, and a welcome
// notice.
func seedSnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		Users: []models.User{
			{
				ID:        1,
				Name:      "Platform Admin",
				Email:     "admin@hostelnest.io",
				Role:      models.RoleAdmin,
				Password:  "admin123",
				Status:    models.UserStatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			},
			{
				ID:        2,
				Name:      "Rahim Uddin",
				Email:     "rahim@hostelnest.io",
				Role:      models.RoleManager,
				Password:  "manager123",
				Status:    models.UserStatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		Hostels: []models.Hostel{
			{
				ID:   1,
				Name: "Green View Hostel",
				Location: models.Location{
					Region:      "Dhaka",
					District:    "Dhaka",
					Subdistrict: "Dhanmondi",
					Details:     "Road 27, House 14",
				},
				ManagerID: 2,
				Price:     4500,
				Status:    models.HostelStatusActive,
				Rooms: []models.Room{
					{ID: "101", Capacity: 4, Price: 4500},
					{ID: "102", Capacity: 2, Price: 6000},
				},
				Version:   1,
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		Notices: []models.Notice{
			{
				ID:       1,
				HostelID: models.GlobalNoticeScope,
				Title:    "Welcome to HostelNest",
				Content:  "Browse active hostels and apply for a bed from the seat map.",
				Date:     now,
				Audience: models.AudienceBoth,
			},
		},
		Sequences: Sequences{Users: 2, Hostels: 1, Bookings: 0, Notices: 1},
		SavedAt:   now,
	}
}
