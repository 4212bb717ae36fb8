package handler

import (
	"log"
	"net/http"

	"github.com/Mathumitha-create/grievance-cell/internal/live"
	"github.com/Mathumitha-create/grievance-cell/internal/middleware"
	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"github.com/Mathumitha-create/grievance-cell/internal/repository"
	"github.com/Mathumitha-create/grievance-cell/internal/service"
	"github.com/Mathumitha-create/grievance-cell/pkg/apperror"
	"github.com/Mathumitha-create/grievance-cell/pkg/response"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	hub    *live.Hub
	users  repository.UserRepository
	search service.SearchService
}

func NewDashboardHandler(hub *live.Hub, users repository.UserRepository, search service.SearchService) *DashboardHandler {
	return &DashboardHandler{hub: hub, users: users, search: search}
}

// Overview returns the dashboard selection for the viewer plus the statistics
// for its scope. Statistics are recomputed on every request from the same
// live-mirrored set the WebSocket feed serves.
func (h *DashboardHandler) Overview(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	records := h.hub.Snapshot(live.ScopeForRole(user.Role, user.Email))

	body := gin.H{
		"role":      user.Role,
		"dashboard": service.SelectDashboard(true, user.Role),
	}

	if user.Role.IsStaff() {
		body["stats"] = service.ComputeAdminStats(records)
		if user.Role == model.RoleAdmin {
			if total, err := h.users.Count(c.Request.Context()); err != nil {
				log.Printf("failed to count users for admin overview: %v", err)
			} else {
				body["total_users"] = total
			}
		}
	} else {
		body["stats"] = service.ComputeStudentStats(records)
	}

	c.JSON(http.StatusOK, body)
}

// SearchToken mints a role-scoped Meilisearch tenant token for the viewer.
func (h *DashboardHandler) SearchToken(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not configured"})
		return
	}

	token, err := h.search.GenerateSearchToken(user.Role, user.Email)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
