package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/hostelnest/hostel-booking-backend/internal/middleware"
	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/services"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memPersister struct {
	snap *store.Snapshot
}

func (p *memPersister) Load() (*store.Snapshot, error) { return p.snap, nil }
func (p *memPersister) Save(snap *store.Snapshot) error {
	p.snap = snap
	return nil
}

// testEnv bundles the store and services behind the handlers under test.
// The store seeds its baseline fixture: admin user 1, manager user 2 and the
// active Green View Hostel (id 1, rooms 101 and 102).
type testEnv struct {
	store     *store.Store
	occupancy *services.OccupancyEngine
	bookings  *services.BookingService
	hostels   *services.HostelService
	notices   *services.NoticeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s, err := store.New(&memPersister{}, logger)
	require.NoError(t, err)

	occupancy := services.NewOccupancyEngine()
	return &testEnv{
		store:     s,
		occupancy: occupancy,
		bookings:  services.NewBookingService(s, occupancy, logger),
		hostels:   services.NewHostelService(s, occupancy, logger),
		notices:   services.NewNoticeService(s, logger),
	}
}

// asUser injects an authenticated user context, standing in for the JWT
// middleware.
func asUser(userID uint64, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID: userID,
			Email:  "test@test.io",
			Role:   role,
		})
		c.Next()
	}
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func serve(router *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func addResident(t *testing.T, s *store.Store, email string) models.User {
	t.Helper()
	u := models.User{
		Name:     "Test Resident",
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
