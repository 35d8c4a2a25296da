package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"xogs-backend/internal/auth"
	"xogs-backend/internal/services"
)

// UserHandler handles user-related endpoints
type UserHandler struct {
	userService   *services.UserService
	ledgerService *services.LedgerService
	adminService  *services.AdminService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, ledgerService *services.LedgerService, adminService *services.AdminService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		ledgerService: ledgerService,
		adminService:  adminService,
	}
}

// GetProfile returns the current user's profile
// GET /api/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	userResponse := gin.H{
		"id":               user.ID,
		"twitter_username": user.TwitterUsername,
		"display_name":     user.DisplayName,
		"avatar_url":       user.AvatarURL,
		"followers_count":  user.FollowersCount,
		"verified":         user.Verified,
		"ai_score":         user.AIScore,
		"xogs_balance":     user.XogsBalance,
		"created_at":       user.CreatedAt,
	}

	if h.adminService != nil && h.adminService.IsAdmin(userID) {
		userResponse["role"] = "admin"
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userResponse,
	})
}

// GetScore returns the current user's AI score with its component breakdown
// GET /api/user/score
func (h *UserHandler) GetScore(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := h.userService.ScoreForUser(userID, time.Now())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// RefreshScore re-fetches the user's Twitter profile and recomputes the score
// POST /api/user/score/refresh
func (h *UserHandler) RefreshScore(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := h.userService.RefreshProfile(c.Request.Context(), userID, time.Now())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to refresh profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"ai_score":     user.AIScore,
			"xogs_balance": user.XogsBalance,
		},
	})
}

// GetTransactions returns the user's ledger history, newest first, optionally
// filtered by type.
// GET /api/user/transactions?type=&limit=&offset=
func (h *UserHandler) GetTransactions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	txType := c.Query("type")

	transactions, total, err := h.ledgerService.Transactions(userID, txType, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    transactions,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetLeaderboard returns the top users by AI score
// GET /api/leaderboard?limit=&offset=
func (h *UserHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, total, err := h.userService.Leaderboard(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leaderboard"})
		return
	}

	entries := make([]gin.H, 0, len(users))
	for i, user := range users {
		entries = append(entries, gin.H{
			"rank":             offset + i + 1,
			"twitter_username": user.TwitterUsername,
			"display_name":     user.DisplayName,
			"avatar_url":       user.AvatarURL,
			"ai_score":         user.AIScore,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
		"total":   total,
	})
}
