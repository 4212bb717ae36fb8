package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mathumitha-create/grievance-cell/internal/live"
	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubUserRepo serves a fixed user count.
type stubUserRepo struct {
	count int64
}

func (s *stubUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	return nil
}

func (s *stubUserRepo) Count(ctx context.Context) (int64, error) { return s.count, nil }

func seedOverviewHub(studentEmail string) *live.Hub {
	hub := live.NewHub()
	hub.Seed([]model.Grievance{
		{
			ID:             uuid.New(),
			Title:          "Hostel wifi",
			Category:       model.CategoryHostel,
			Status:         model.StatusResolved,
			SubmitterEmail: studentEmail,
			CreatedAt:      time.Now().Add(-24 * time.Hour),
			UpdatedAt:      time.Now(),
		},
		{
			ID:             uuid.New(),
			Title:          "Bus overcrowding",
			Category:       model.CategoryTransport,
			Status:         model.StatusPending,
			SubmitterEmail: "someone.else@sece.ac.in",
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		},
	})
	return hub
}

func overviewRequest(t *testing.T, hub *live.Hub, users *stubUserRepo, user *model.User) map[string]json.RawMessage {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewDashboardHandler(hub, users, nil)
	router.GET("/api/dashboard", withTestUser(user), h.Overview)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDashboardHandler_Overview(t *testing.T) {
	studentEmail := "student@sece.ac.in"

	t.Run("admin sees full-set stats and the user count", func(t *testing.T) {
		hub := seedOverviewHub(studentEmail)
		admin := &model.User{ID: uuid.New(), Email: "admin@sece.ac.in", Role: model.RoleAdmin}
		body := overviewRequest(t, hub, &stubUserRepo{count: 7}, admin)

		assert.JSONEq(t, `"admin"`, string(body["dashboard"]))
		assert.JSONEq(t, `7`, string(body["total_users"]))

		var stats struct {
			Total    int `json:"total"`
			Resolved int `json:"resolved"`
		}
		require.NoError(t, json.Unmarshal(body["stats"], &stats))
		assert.Equal(t, 2, stats.Total)
		assert.Equal(t, 1, stats.Resolved)
	})

	t.Run("warden stats cover only the hostel subset", func(t *testing.T) {
		hub := seedOverviewHub(studentEmail)
		warden := &model.User{ID: uuid.New(), Email: "warden@sece.ac.in", Role: model.RoleWarden}
		body := overviewRequest(t, hub, &stubUserRepo{count: 7}, warden)

		assert.JSONEq(t, `"warden"`, string(body["dashboard"]))
		assert.NotContains(t, body, "total_users")

		var stats struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(body["stats"], &stats))
		assert.Equal(t, 1, stats.Total)
	})

	t.Run("student stats cover only own records", func(t *testing.T) {
		hub := seedOverviewHub(studentEmail)
		student := &model.User{ID: uuid.New(), Email: studentEmail, Role: model.RoleStudent}
		body := overviewRequest(t, hub, &stubUserRepo{}, student)

		assert.JSONEq(t, `"student"`, string(body["dashboard"]))

		var stats struct {
			Total    int `json:"total"`
			Resolved int `json:"resolved"`
		}
		require.NoError(t, json.Unmarshal(body["stats"], &stats))
		assert.Equal(t, 1, stats.Total)
		assert.Equal(t, 1, stats.Resolved)
	})

	t.Run("overview reflects hub changes without a reload", func(t *testing.T) {
		hub := seedOverviewHub(studentEmail)
		admin := &model.User{ID: uuid.New(), Email: "admin@sece.ac.in", Role: model.RoleAdmin}

		hub.Apply(live.Event{Type: live.EventCreated, Record: model.Grievance{
			ID:             uuid.New(),
			Title:          "Library hours",
			Category:       model.CategoryLibrary,
			Status:         model.StatusPending,
			SubmitterEmail: studentEmail,
			CreatedAt:      time.Now(),
		}})

		body := overviewRequest(t, hub, &stubUserRepo{count: 7}, admin)
		var stats struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(body["stats"], &stats))
		assert.Equal(t, 3, stats.Total)
	})
}
