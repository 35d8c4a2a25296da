package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"xogs-backend/internal/auth"
	"xogs-backend/internal/services"
)

// InviteHandler handles invite code and referral endpoints
type InviteHandler struct {
	inviteService *services.InviteService
}

// NewInviteHandler creates a new InviteHandler
func NewInviteHandler(inviteService *services.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// GetInviteCodes returns the current user's invite codes
// GET /api/invite/codes
func (h *InviteHandler) GetInviteCodes(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	codes, err := h.inviteService.GetUserInviteCodes(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invite codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    codes,
	})
}

// AcceptInvite applies an invite code to the current user. Failure reasons
// are mapped to distinct messages so the frontend can tell "already invited"
// apart from "too late" instead of offering a retry.
// POST /api/invite/accept
func (h *InviteHandler) AcceptInvite(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.inviteService.AcceptInvite(userID, req.Code, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInviteCode):
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid or already used invite code"})
		case errors.Is(err, services.ErrSelfInvite):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot accept your own invite"})
		case errors.Is(err, services.ErrAlreadyInvited):
			c.JSON(http.StatusConflict, gin.H{"error": "You have already been invited"})
		case errors.Is(err, services.ErrInviteWindowExpired):
			c.JSON(http.StatusGone, gin.H{"error": "Your registration is too old to accept an invite"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept invite"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    record,
	})
}

// GetReferrals returns invites the current user successfully made
// GET /api/invite/referrals
func (h *InviteHandler) GetReferrals(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	referrals, err := h.inviteService.GetUserReferrals(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve referrals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    referrals,
		"count":   len(referrals),
	})
}
