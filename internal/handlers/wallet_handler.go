package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"xogs-backend/internal/auth"
	"xogs-backend/internal/wallet"
)

// WalletHandler handles Solana wallet binding endpoints
type WalletHandler struct {
	walletService *wallet.Service
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(walletService *wallet.Service) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// GetBindingLink issues a signed, expiring binding token and its deep link
// POST /api/wallet/binding-link
func (h *WalletHandler) GetBindingLink(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	token, link, err := h.walletService.BindingLink(userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create binding link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"binding_token": token,
			"deep_link":     link,
		},
	})
}

// BindWallet completes the binding flow: verifies the token and the wallet's
// signature, then persists the binding.
// POST /api/wallet/bind
func (h *WalletHandler) BindWallet(c *gin.Context) {
	var req struct {
		BindingToken  string `json:"binding_token" binding:"required"`
		WalletAddress string `json:"wallet_address" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	binding, err := h.walletService.Bind(c.Request.Context(), req.BindingToken, req.WalletAddress, req.Signature, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrTokenExpired):
			c.JSON(http.StatusGone, gin.H{"error": "Binding link expired, request a new one"})
		case errors.Is(err, wallet.ErrTokenMalformed), errors.Is(err, wallet.ErrTokenSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid binding token"})
		case errors.Is(err, wallet.ErrBadSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Wallet signature verification failed"})
		case errors.Is(err, wallet.ErrAddressInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "Wallet already bound to another account"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    binding,
	})
}

// GetWallet returns the current user's wallet binding
// GET /api/wallet
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	binding, err := h.walletService.GetBinding(userID)
	if err != nil {
		if errors.Is(err, wallet.ErrBindingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No wallet bound"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve wallet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    binding,
	})
}

// UnbindWallet removes the current user's wallet binding
// DELETE /api/wallet
func (h *WalletHandler) UnbindWallet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.walletService.Unbind(userID); err != nil {
		if errors.Is(err, wallet.ErrBindingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No wallet bound"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unbind wallet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Wallet unbound",
	})
}

// RefreshWalletBalance re-fetches the bound wallet's on-chain balance
// POST /api/wallet/refresh
func (h *WalletHandler) RefreshWalletBalance(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	binding, err := h.walletService.RefreshBalance(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, wallet.ErrBindingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No wallet bound"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to refresh balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    binding,
	})
}
