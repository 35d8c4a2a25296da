package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mr-tron/base58"
	"gorm.io/gorm"

	"xogs-backend/internal/models"
)

// Binding errors callers can distinguish
var (
	ErrBindingNotFound = errors.New("no wallet bound")
	ErrAddressInUse    = errors.New("wallet address already bound to another account")
	ErrBadSignature    = errors.New("wallet signature verification failed")
)

// SignedMessage is what the wallet app signs to prove ownership of the
// address being bound.
const SignedMessage = "Sign this message to bind your wallet to XOGS"

// Service runs the wallet-binding flow: issue a signed deep-link token,
// verify the wallet's ed25519 signature over the binding message, persist the
// binding and keep its SOL balance fresh.
type Service struct {
	db     *gorm.DB
	solana *SolanaClient
	tokens *TokenIssuer

	deepLinkURL string
}

// NewService creates a wallet binding Service
func NewService(db *gorm.DB, solana *SolanaClient, tokens *TokenIssuer, deepLinkURL string) *Service {
	return &Service{
		db:          db,
		solana:      solana,
		tokens:      tokens,
		deepLinkURL: deepLinkURL,
	}
}

// BindingLink issues a fresh binding token for a user and wraps it in the
// wallet-app deep link.
func (s *Service) BindingLink(userID uint, now time.Time) (token, link string, err error) {
	token, err = s.tokens.Issue(userID, now)
	if err != nil {
		return "", "", err
	}
	return token, DeepLink(s.deepLinkURL, token), nil
}

// Bind verifies a binding token plus the wallet's signature over
// SignedMessage and persists the binding. The token authenticates which user
// initiated the flow; the signature proves control of the address.
func (s *Service) Bind(ctx context.Context, token, walletAddress, signature string, now time.Time) (*models.WalletBinding, error) {
	userID, err := s.tokens.Verify(token, now)
	if err != nil {
		return nil, err
	}

	if err := s.solana.ValidateAddress(walletAddress); err != nil {
		return nil, err
	}

	pubKey, err := base58.Decode(walletAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid public key format: %w", err)
	}

	// Wallets return the signature as base58 or hex depending on the client
	sig, err := base58.Decode(signature)
	if err != nil {
		sig, err = hex.DecodeString(signature)
		if err != nil {
			return nil, ErrBadSignature
		}
	}

	if !ed25519.Verify(pubKey, []byte(SignedMessage), sig) {
		return nil, ErrBadSignature
	}

	var existing models.WalletBinding
	if err := s.db.Where("wallet_address = ? AND user_id != ?", walletAddress, userID).
		First(&existing).Error; err == nil {
		return nil, ErrAddressInUse
	}

	binding := models.WalletBinding{
		UserID:        userID,
		WalletAddress: walletAddress,
		Blockchain:    "SOLANA",
		IsVerified:    true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Rebinding replaces the previous wallet
		if err := tx.Where("user_id = ?", userID).Delete(&models.WalletBinding{}).Error; err != nil {
			return err
		}
		return tx.Create(&binding).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bind wallet: %w", err)
	}

	log.Printf("Wallet %s bound to user %d", walletAddress, userID)

	// Balance fetch is best-effort; the binding stands without it
	if _, err := s.RefreshBalance(ctx, userID); err != nil {
		log.Printf("Warning: failed to fetch balance for %s: %v", walletAddress, err)
	}

	return s.GetBinding(userID)
}

// GetBinding returns a user's wallet binding
func (s *Service) GetBinding(userID uint) (*models.WalletBinding, error) {
	var binding models.WalletBinding
	if err := s.db.Where("user_id = ?", userID).First(&binding).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrBindingNotFound
		}
		return nil, err
	}
	return &binding, nil
}

// Unbind removes a user's wallet binding
func (s *Service) Unbind(userID uint) error {
	result := s.db.Where("user_id = ?", userID).Delete(&models.WalletBinding{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBindingNotFound
	}
	return nil
}

// RefreshBalance re-fetches the on-chain SOL balance for a user's bound wallet
func (s *Service) RefreshBalance(ctx context.Context, userID uint) (*models.WalletBinding, error) {
	binding, err := s.GetBinding(userID)
	if err != nil {
		return nil, err
	}

	balance, err := s.solana.GetSolBalance(ctx, binding.WalletAddress)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(binding).Updates(map[string]interface{}{
		"sol_balance":         balance,
		"last_balance_update": now,
	}).Error; err != nil {
		return nil, err
	}

	return s.GetBinding(userID)
}
