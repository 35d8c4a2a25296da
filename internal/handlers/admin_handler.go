package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"xogs-backend/internal/services"
)

// AdminHandler handles the admin console endpoints
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// AdminMiddleware checks if user is admin
func (h *AdminHandler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		admin, err := h.adminService.GetAdminByUserID(userID.(uint))
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not an admin"})
			c.Abort()
			return
		}

		c.Set("admin_id", admin.ID)
		c.Set("admin_role", admin.Role)
		c.Next()
	}
}

// SuperAdminMiddleware checks if user is super admin
func (h *AdminHandler) SuperAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("admin_role")
		if !exists || role != "SUPER_ADMIN" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Super admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetDashboard returns admin dashboard data
// GET /api/admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
		return
	}

	logs, _ := h.adminService.GetAdminLogs(10, 0)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"stats":       stats,
			"recent_logs": logs,
		},
	})
}

// GetUsers returns all users
// GET /api/admin/users?limit=&offset=&search=
func (h *AdminHandler) GetUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	search := c.Query("search")

	users, total, err := h.adminService.GetAllUsers(limit, offset, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// ResyncBalance rebuilds a user's balance from their transaction history
// POST /api/admin/users/:id/resync
func (h *AdminHandler) ResyncBalance(c *gin.Context) {
	adminID := c.GetUint("admin_id")
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	balance, adjustment, err := h.adminService.ResyncUserBalance(uint(userID), adminID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{
		"success": true,
		"balance": balance,
	}
	if adjustment != nil {
		response["adjustment"] = adjustment
	} else {
		response["message"] = "Balance already consistent"
	}

	c.JSON(http.StatusOK, response)
}

// RestrictUser restricts a user
// POST /api/admin/users/restrict
func (h *AdminHandler) RestrictUser(c *gin.Context) {
	adminID := c.GetUint("admin_id")

	var req struct {
		UserID          uint   `json:"user_id" binding:"required"`
		RestrictionType string `json:"restriction_type" binding:"required"`
		Reason          string `json:"reason"`
		DurationDays    *int   `json:"duration_days"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	restriction, err := h.adminService.RestrictUser(req.UserID, req.RestrictionType, req.Reason, req.DurationDays, adminID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    restriction,
	})
}

// RemoveRestriction removes a user restriction
// DELETE /api/admin/users/restrictions/:id
func (h *AdminHandler) RemoveRestriction(c *gin.Context) {
	adminID := c.GetUint("admin_id")
	restrictionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restriction ID"})
		return
	}

	if err := h.adminService.RemoveRestriction(uint(restrictionID), adminID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove restriction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Restriction removed",
	})
}

// GetUserRestrictions returns restrictions for a user
// GET /api/admin/users/:id/restrictions
func (h *AdminHandler) GetUserRestrictions(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	restrictions, err := h.adminService.GetUserRestrictions(uint(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch restrictions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    restrictions,
	})
}

// PromoteToAdmin promotes a user to admin
// POST /api/admin/users/promote
func (h *AdminHandler) PromoteToAdmin(c *gin.Context) {
	adminID := c.GetUint("admin_id")

	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Role != "SUPER_ADMIN" && req.Role != "MODERATOR" && req.Role != "ANALYST" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	admin, err := h.adminService.PromoteUserToAdmin(req.UserID, req.Role, adminID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    admin,
	})
}

// GetAdminLogs returns admin activity logs
// GET /api/admin/logs
func (h *AdminHandler) GetAdminLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.adminService.GetAdminLogs(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"count":   len(logs),
	})
}
