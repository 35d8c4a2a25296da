package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"xogs-backend/internal/models"
	"xogs-backend/internal/utils"
)

// InviteService owns invite codes and the invite acceptance gate. Crediting
// goes through the ledger; the unique InviteRecord per invitee is the
// authorization token that makes crediting exactly-once.
type InviteService struct {
	db           *gorm.DB
	ledger       *LedgerService
	acceptWindow time.Duration
	codesPerUser int
	mu           sync.Mutex
}

// NewInviteService creates a new InviteService
func NewInviteService(db *gorm.DB, ledger *LedgerService, acceptWindow time.Duration, codesPerUser int) *InviteService {
	return &InviteService{
		db:           db,
		ledger:       ledger,
		acceptWindow: acceptWindow,
		codesPerUser: codesPerUser,
	}
}

// GenerateInviteCodes creates the initial batch of invite codes for a new user
func (s *InviteService) GenerateInviteCodes(userID uint) error {
	for i := 0; i < s.codesPerUser; i++ {
		code, err := utils.GenerateInviteCode()
		if err != nil {
			return err
		}

		inviteCode := models.InviteCode{
			UserID: userID,
			Code:   code,
		}

		if err := s.db.Create(&inviteCode).Error; err != nil {
			return fmt.Errorf("failed to create invite code: %w", err)
		}
	}

	return nil
}

// GetUserInviteCodes retrieves all invite codes owned by a user
func (s *InviteService) GetUserInviteCodes(userID uint) ([]models.InviteCode, error) {
	var inviteCodes []models.InviteCode
	if err := s.db.Where("user_id = ?", userID).Preload("UsedByUser").Find(&inviteCodes).Error; err != nil {
		return nil, err
	}
	return inviteCodes, nil
}

// AcceptInvite validates and applies an invite code for the invitee.
// Rules, in order: the code must exist and be unused, self-invitation is
// rejected unconditionally, an invitee accepts at most one invite ever, and
// acceptance must happen within the post-registration window. On success the
// inviter is credited 2x and the invitee 1x of the invitee's AI score, with
// the reward snapshotted on the InviteRecord.
func (s *InviteService) AcceptInvite(inviteeID uint, code string, now time.Time) (*models.InviteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inviteCode models.InviteCode
	if err := s.db.Where("code = ? AND used_by_user_id IS NULL", code).First(&inviteCode).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidInviteCode
		}
		return nil, err
	}

	if inviteCode.UserID == inviteeID {
		return nil, ErrSelfInvite
	}

	var invitee models.User
	if err := s.db.First(&invitee, inviteeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if invitee.InviterID != nil {
		return nil, ErrAlreadyInvited
	}

	if now.Sub(invitee.CreatedAt) > s.acceptWindow {
		return nil, ErrInviteWindowExpired
	}

	record := models.InviteRecord{
		InviterID:    inviteCode.UserID,
		InviteeID:    inviteeID,
		InviteCodeID: &inviteCode.ID,
		RewardAmount: int64(invitee.AIScore) * 2,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Setting inviter_id only where it is still NULL is the one-time
		// guard; a concurrent acceptance loses this race and gets zero rows.
		result := tx.Model(&models.User{}).
			Where("id = ? AND inviter_id IS NULL", inviteeID).
			Update("inviter_id", inviteCode.UserID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyInvited
		}

		if err := tx.Model(&models.InviteCode{}).
			Where("id = ? AND used_by_user_id IS NULL", inviteCode.ID).
			Updates(map[string]interface{}{
				"used_by_user_id": inviteeID,
				"used_at":         now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create invite record: %w", err)
		}

		if _, _, err := s.ledger.WithTx(tx).CreditInviteAccepted(inviteCode.UserID, inviteeID, invitee.AIScore); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	log.Printf("Invite accepted: user %d invited by user %d via code %s", inviteeID, inviteCode.UserID, code)
	return &record, nil
}

// GetUserReferrals returns all accepted invites where the user is the inviter
func (s *InviteService) GetUserReferrals(userID uint) ([]models.InviteRecord, error) {
	var records []models.InviteRecord
	if err := s.db.Where("inviter_id = ?", userID).Preload("Invitee").
		Order("accepted_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
