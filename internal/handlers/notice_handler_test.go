package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelnest/hostel-booking-backend/internal/models"
)

func noticeRouter(env *testEnv, userID uint64, role models.Role) *gin.Engine {
	h := NewNoticeHandler(env.store, env.notices)
	router := gin.New()
	g := router.Group("/notices", asUser(userID, role))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.DELETE("/:id", h.Delete)
	return router
}

func TestNoticeCreate_ManagerOwnHostel(t *testing.T) {
	env := newTestEnv(t)
	router := noticeRouter(env, 2, models.RoleManager)

	w := serve(router, http.MethodPost, "/notices", jsonBody(t, models.CreateNoticeRequest{
		HostelID: 1,
		Title:    "Water outage on Friday",
		Audience: models.AudienceUser,
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	notice := decodeBody(t, w)["notice"].(map[string]interface{})
	assert.Equal(t, "Water outage on Friday", notice["title"])
}

func TestNoticeCreate_ManagerGlobalForbidden(t *testing.T) {
	env := newTestEnv(t)
	router := noticeRouter(env, 2, models.RoleManager)

	w := serve(router, http.MethodPost, "/notices", jsonBody(t, models.CreateNoticeRequest{
		HostelID: models.GlobalNoticeScope,
		Title:    "Platform maintenance",
		Audience: models.AudienceBoth,
	}))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNoticeCreate_ManagerForeignHostelForbidden(t *testing.T) {
	env := newTestEnv(t)
	router := noticeRouter(env, 99, models.RoleManager)

	w := serve(router, http.MethodPost, "/notices", jsonBody(t, models.CreateNoticeRequest{
		HostelID: 1,
		Title:    "Not my hostel",
		Audience: models.AudienceUser,
	}))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNoticeCreate_AdminGlobal(t *testing.T) {
	env := newTestEnv(t)
	router := noticeRouter(env, 1, models.RoleAdmin)

	w := serve(router, http.MethodPost, "/notices", jsonBody(t, models.CreateNoticeRequest{
		HostelID: models.GlobalNoticeScope,
		Title:    "Platform maintenance",
		Audience: models.AudienceBoth,
	}))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestNoticeList_ScopedByAudience(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.notices.Create(models.CreateNoticeRequest{
		HostelID: 1,
		Title:    "Managers only",
		Audience: models.AudienceManager,
	})
	require.NoError(t, err)

	// The seed global notice targets both audiences; a resident scoped to
	// hostel 1 must not see the manager-only one.
	router := noticeRouter(env, 3, models.RoleResident)
	w := serve(router, http.MethodGet, "/notices?hostel_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])

	router = noticeRouter(env, 2, models.RoleManager)
	w = serve(router, http.MethodGet, "/notices?hostel_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["count"])
}

func TestNoticeDelete_ManagerRules(t *testing.T) {
	env := newTestEnv(t)
	own, err := env.notices.Create(models.CreateNoticeRequest{
		HostelID: 1,
		Title:    "Kitchen closed",
		Audience: models.AudienceUser,
	})
	require.NoError(t, err)

	router := noticeRouter(env, 2, models.RoleManager)

	// The seed notice (id 1) is global, so a manager cannot delete it.
	w := serve(router, http.MethodDelete, "/notices/1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router, http.MethodDelete, fmt.Sprintf("/notices/%d", own.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodDelete, fmt.Sprintf("/notices/%d", own.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNoticeDelete_AdminAnyScope(t *testing.T) {
	env := newTestEnv(t)
	router := noticeRouter(env, 1, models.RoleAdmin)

	w := serve(router, http.MethodDelete, "/notices/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodDelete, "/notices/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
