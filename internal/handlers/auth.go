package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"xogs-backend/internal/auth"
	"xogs-backend/internal/services"
	"xogs-backend/internal/twitter"
)

const stateCookie = "oauth_state"

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	provider    *twitter.OAuthProvider
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, provider *twitter.OAuthProvider) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		provider:    provider,
	}
}

// TwitterLogin starts the X OAuth flow.
// GET /auth/twitter/login
func (h *AuthHandler) TwitterLogin(c *gin.Context) {
	state := uuid.NewString()
	c.SetCookie(stateCookie, state, int((10 * time.Minute).Seconds()), "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.provider.AuthURL(state))
}

// TwitterCallback completes the X OAuth flow and issues a session token.
// GET /auth/twitter/callback
func (h *AuthHandler) TwitterCallback(c *gin.Context) {
	state := c.Query("state")
	expected, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != expected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid OAuth state"})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	profile, err := h.provider.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to complete Twitter sign-in"})
		return
	}

	user, err := h.authService.ProcessTwitterLogin(profile, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.TwitterUsername)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout handles user logout (stateless JWT — client-side only)
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}

// GetMe returns the currently authenticated user's profile
// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
