package app

import (
	"net/http"
	"strconv"

	"github.com/kamruz-zzaman/portfolio-v2/internal/service"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	authService      service.AuthService
}

func NewDashboardHandler(dashboardService service.DashboardService, authService service.AuthService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		authService:      authService,
	}
}

// Stats returns content totals and recent growth
// GET /api/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "", gin.H{"stats": stats})
}

// Activities returns the latest engagement feed
// GET /api/dashboard/activities
func (h *DashboardHandler) Activities(c *gin.Context) {
	activities, err := h.dashboardService.RecentActivities(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "", gin.H{"activities": activities})
}

// Analytics returns monthly view totals for the current year
// GET /api/dashboard/analytics
func (h *DashboardHandler) Analytics(c *gin.Context) {
	data, err := h.dashboardService.MonthlyViews(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "", gin.H{"data": data})
}

// ListUsers returns a page of users
// GET /api/dashboard/users?page=&limit=
func (h *DashboardHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := h.authService.ListUsers(c.Request.Context(), actorFrom(c), limit, (page-1)*limit)
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "", gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// UpdateUserRole
// PUT /api/dashboard/users/:id/role
func (h *DashboardHandler) UpdateUserRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.UpdateUserRole(c.Request.Context(), actorFrom(c), c.Param("id"), req.Role); err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "User role updated successfully", gin.H{"role": req.Role})
}
