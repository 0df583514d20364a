package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelnest/hostel-booking-backend/internal/models"
)

func hostelRouter(env *testEnv, userID uint64, role models.Role) *gin.Engine {
	h := NewHostelHandler(env.store, env.hostels, env.bookings, env.occupancy)
	router := gin.New()
	router.GET("/hostels", h.ListActive)
	router.GET("/hostels/:id", h.Get)
	router.GET("/geography", h.Geography)

	g := router.Group("/manage", asUser(userID, role))
	g.PUT("/hostels/:id", h.Update)
	g.PUT("/hostels/:id/rooms/:roomId/occupied", h.SetOccupiedCount)
	g.PUT("/hostels/:id/rooms/:roomId/capacity", h.SetCapacity)
	return router
}

func TestHostelGet_IncludesSeatGrids(t *testing.T) {
	env := newTestEnv(t)
	resident := addResident(t, env.store, "karim@test.io")
	booking, err := env.bookings.Create(resident.ID, 1, "101", "S2", validApplication())
	require.NoError(t, err)
	_, err = env.bookings.Approve(booking.ID)
	require.NoError(t, err)

	router := hostelRouter(env, 0, models.RoleResident)
	w := serve(router, http.MethodGet, "/hostels/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	grids, ok := body["seat_grids"].(map[string]interface{})
	require.True(t, ok)

	// Room 101 has capacity 4; position S2 is marked occupied.
	room101, ok := grids["101"].([]interface{})
	require.True(t, ok)
	require.Len(t, room101, 4)
	second := room101[1].(map[string]interface{})
	assert.Equal(t, "S2", second["bed_id"])
	assert.Equal(t, true, second["occupied"])
	first := room101[0].(map[string]interface{})
	assert.Equal(t, false, first["occupied"])
}

func TestHostelGet_NotFound(t *testing.T) {
	env := newTestEnv(t)
	router := hostelRouter(env, 0, models.RoleResident)

	w := serve(router, http.MethodGet, "/hostels/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(router, http.MethodGet, "/hostels/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHostelListActive_HidesUnreviewed(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.hostels.Create(2, models.CreateHostelRequest{
		Name:        "Second Hostel",
		Region:      "Dhaka",
		District:    "Dhaka",
		Subdistrict: "Mirpur",
		Rooms:       []models.RoomInput{{ID: "A1", Capacity: 2}},
	})
	require.NoError(t, err)

	router := hostelRouter(env, 0, models.RoleResident)
	w := serve(router, http.MethodGet, "/hostels", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Len(t, body["hostels"], 1)
}

func TestGeography_Cascade(t *testing.T) {
	env := newTestEnv(t)
	router := hostelRouter(env, 0, models.RoleResident)

	w := serve(router, http.MethodGet, "/geography", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["regions"])

	w = serve(router, http.MethodGet, "/geography?region=Dhaka", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["districts"])

	w = serve(router, http.MethodGet, "/geography?region=Dhaka&district=Dhaka", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["subdistricts"])
}

func TestHostelUpdate_ResetsStatus(t *testing.T) {
	env := newTestEnv(t)
	router := hostelRouter(env, 2, models.RoleManager)

	w := serve(router, http.MethodPut, "/manage/hostels/1", jsonBody(t, gin.H{"name": "Renamed"}))
	require.Equal(t, http.StatusOK, w.Code)

	hostel, _ := env.store.HostelByID(1)
	assert.Equal(t, "Renamed", hostel.Name)
	assert.Equal(t, models.HostelStatusPending, hostel.Status)
}

func TestSetOccupiedCount_Endpoint(t *testing.T) {
	env := newTestEnv(t)
	router := hostelRouter(env, 2, models.RoleManager)

	w := serve(router, http.MethodPut, "/manage/hostels/1/rooms/101/occupied",
		jsonBody(t, models.SetOccupiedCountRequest{Count: 3}))
	require.Equal(t, http.StatusOK, w.Code)

	hostel, _ := env.store.HostelByID(1)
	assert.Len(t, hostel.FindRoom("101").Occupied, 3)

	// Over capacity is a validation failure.
	w = serve(router, http.MethodPut, "/manage/hostels/1/rooms/101/occupied",
		jsonBody(t, models.SetOccupiedCountRequest{Count: 9}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetCapacity_Endpoint(t *testing.T) {
	env := newTestEnv(t)
	router := hostelRouter(env, 2, models.RoleManager)

	w := serve(router, http.MethodPut, "/manage/hostels/1/rooms/102/capacity",
		jsonBody(t, models.SetCapacityRequest{Capacity: 5}))
	require.Equal(t, http.StatusOK, w.Code)

	hostel, _ := env.store.HostelByID(1)
	assert.Equal(t, 5, hostel.FindRoom("102").Capacity)
}
