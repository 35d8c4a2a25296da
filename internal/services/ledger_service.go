package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"xogs-backend/internal/models"
)

// LedgerService applies signed $XOGS deltas to user balances. Every delta is
// paired with an immutable Transaction record inside one database
// transaction; neither write is ever observable without the other. Balance
// mutation always goes through an in-SQL increment, never a read-then-write.
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// WithTx returns a LedgerService bound to an existing transaction handle so
// callers can make ledger writes atomic with their own records.
func (s *LedgerService) WithTx(tx *gorm.DB) *LedgerService {
	return &LedgerService{db: tx}
}

// applyDelta appends a transaction record and increments the balance as one
// unit. Must be called inside a gorm transaction.
func applyDelta(tx *gorm.DB, userID uint, txType string, amount int64, description string, relatedUserID *uint) (*models.Transaction, error) {
	record := models.Transaction{
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		Description:   description,
		RelatedUserID: relatedUserID,
	}

	if err := tx.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create transaction record: %w", err)
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("xogs_balance", gorm.Expr("xogs_balance + ?", amount)).Error; err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	return &record, nil
}

// CreditBaseScore credits the difference between the user's current AI score
// and the score already credited as base reward. A recompute that leaves the
// score unchanged is a no-op, and the ledger is credit-only: a score decrease
// moves the credited watermark down without debiting anything.
func (s *LedgerService) CreditBaseScore(userID uint, aiScore int) (*models.Transaction, error) {
	var record *models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrUserNotFound
			}
			return err
		}

		delta := int64(aiScore) - int64(user.LastCreditedScore)
		if delta == 0 {
			return nil
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("last_credited_score", aiScore).Error; err != nil {
			return err
		}

		if delta < 0 {
			return nil
		}

		created, err := applyDelta(tx, userID, models.TxTypeBaseScore, delta,
			fmt.Sprintf("Base score reward (AI score %d)", aiScore), nil)
		if err != nil {
			return err
		}
		record = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	if record != nil {
		log.Printf("Base score credited: %d XOGS to user %d", record.Amount, userID)
	}
	return record, nil
}

// CreditInviteAccepted credits the inviter with 2x and the invitee with 1x of
// the invitee's AI score. Callers must hold the InviteRecord uniqueness guard;
// the ledger itself performs no duplicate detection here.
func (s *LedgerService) CreditInviteAccepted(inviterID, inviteeID uint, inviteeAIScore int) (inviterTx, inviteeTx *models.Transaction, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		inviterTx, err = applyDelta(tx, inviterID, models.TxTypeInviteReward, int64(inviteeAIScore)*2,
			fmt.Sprintf("Invite reward (2x invitee score %d)", inviteeAIScore), &inviteeID)
		if err != nil {
			return err
		}

		inviteeTx, err = applyDelta(tx, inviteeID, models.TxTypeBaseScore, int64(inviteeAIScore),
			fmt.Sprintf("Invite acceptance bonus (1x score %d)", inviteeAIScore), &inviterID)
		if err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return nil, nil, err
	}

	log.Printf("Invite credited: inviter %d +%d, invitee %d +%d",
		inviterID, inviterTx.Amount, inviteeID, inviteeTx.Amount)
	return inviterTx, inviteeTx, nil
}

// CreditTaskReward credits a task reward. Cooldown and repeatability gating
// belong to the task subsystem; this only performs the mutation.
func (s *LedgerService) CreditTaskReward(userID uint, taskKey string, amount int64) (*models.Transaction, error) {
	var record *models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		created, err := applyDelta(tx, userID, models.TxTypeTaskReward, amount,
			fmt.Sprintf("Task reward: %s", taskKey), nil)
		if err != nil {
			return err
		}
		record = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	log.Printf("Task reward credited: %d XOGS to user %d for %s", amount, userID, taskKey)
	return record, nil
}

// ResyncBalance rebuilds a user's balance from their transaction history.
// When the stored balance and the transaction sum disagree, the drift is
// absorbed as a system_adjustment entry and the balance is overwritten with
// the recomputed sum, so the reconciliation invariant holds afterwards. A
// consistent user is left untouched.
func (s *LedgerService) ResyncBalance(userID uint) (int64, *models.Transaction, error) {
	var balance int64
	var record *models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrUserNotFound
			}
			return err
		}

		var sum int64
		row := tx.Model(&models.Transaction{}).Where("user_id = ?", userID).
			Select("COALESCE(SUM(amount), 0)").Row()
		if err := row.Scan(&sum); err != nil {
			return err
		}

		if sum == user.XogsBalance {
			balance = user.XogsBalance
			return nil
		}

		drift := user.XogsBalance - sum
		adjustment := models.Transaction{
			UserID:      userID,
			Type:        models.TxTypeSystemAdjustment,
			Amount:      drift,
			Description: fmt.Sprintf("Balance resync: absorbed drift of %d", drift),
		}
		if err := tx.Create(&adjustment).Error; err != nil {
			return err
		}

		// Recompute from first principles including the adjustment just
		// written and overwrite the stored balance with it.
		row = tx.Model(&models.Transaction{}).Where("user_id = ?", userID).
			Select("COALESCE(SUM(amount), 0)").Row()
		if err := row.Scan(&balance); err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("xogs_balance", balance).Error; err != nil {
			return err
		}

		record = &adjustment
		return nil
	})

	if err != nil {
		return 0, nil, err
	}

	if record != nil {
		log.Printf("Balance resynced for user %d: drift %d absorbed", userID, record.Amount)
	}
	return balance, record, nil
}

// Transactions returns a page of a user's ledger entries, newest first,
// optionally filtered by type.
func (s *LedgerService) Transactions(userID uint, txType string, limit, offset int) ([]models.Transaction, int64, error) {
	query := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if txType != "" {
		query = query.Where("type = ?", txType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []models.Transaction
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// GetBalance returns the stored balance for a user
func (s *LedgerService) GetBalance(userID uint) (int64, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return user.XogsBalance, nil
}
