package services

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
)

// memPersister is an in-memory store.Persister for service tests. The seed
// fixture the store creates on first load (admin, manager Rahim, Green View
// Hostel with rooms 101 and 102) is the baseline for most of these tests.
type memPersister struct {
	mu       sync.Mutex
	snap     *store.Snapshot
	failSave bool
}

func (p *memPersister) Load() (*store.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap, nil
}

func (p *memPersister) Save(snap *store.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failSave {
		return errors.New("persist failed")
	}
	p.snap = snap
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newFixtureStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(&memPersister{}, testLogger())
	require.NoError(t, err)
	return s
}

// addResident registers an active resident account and returns it.
func addResident(t *testing.T, s *store.Store, name, email string) models.User {
	t.Helper()
	u := models.User{
		Name:     name,
		Email:    email,
		Password: "pass1234",
		Role:     models.RoleResident,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, s.UpsertUser(&u))
	return u
}

func validApplication() models.ApplicationDetails {
	return models.ApplicationDetails{
		FullName:      "Karim Ahmed",
		Phone:         "01712345678",
		GuardianName:  "Abdul Ahmed",
		GuardianPhone: "01898765432",
		Address:       "Mirpur, Dhaka",
	}
}
