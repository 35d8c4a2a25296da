package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"xogs-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// :memory: is unique per connection unless using cache=shared, and the
	// services open nested transactions on the same handle.
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.InviteCode{},
		&models.InviteRecord{},
		&models.Task{},
		&models.TaskCompletion{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func cleanTables(db *gorm.DB) {
	db.Exec("DELETE FROM task_completions")
	db.Exec("DELETE FROM tasks")
	db.Exec("DELETE FROM invite_records")
	db.Exec("DELETE FROM invite_codes")
	db.Exec("DELETE FROM transactions")
	db.Exec("DELETE FROM users")
}

func createTestUser(t *testing.T, db *gorm.DB, twitterID, username string, aiScore int) *models.User {
	user := models.User{
		TwitterID:       twitterID,
		TwitterUsername: username,
		AIScore:         aiScore,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

// txSum returns the sum of a user's transaction amounts.
func txSum(t *testing.T, db *gorm.DB, userID uint) int64 {
	var sum int64
	row := db.Model(&models.Transaction{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&sum); err != nil {
		t.Fatalf("failed to sum transactions: %v", err)
	}
	return sum
}

// assertReconciled checks the stored balance equals the transaction sum.
func assertReconciled(t *testing.T, db *gorm.DB, userID uint) {
	t.Helper()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}

	sum := txSum(t, db, userID)
	if user.XogsBalance != sum {
		t.Errorf("balance %d does not reconcile with transaction sum %d", user.XogsBalance, sum)
	}
}

func TestCreditBaseScoreInitial(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	ledger := NewLedgerService(db)
	user := createTestUser(t, db, "100", "alice", 40)

	record, err := ledger.CreditBaseScore(user.ID, 40)
	if err != nil {
		t.Fatalf("CreditBaseScore failed: %v", err)
	}
	if record == nil {
		t.Fatal("expected a transaction record for the initial credit")
	}
	if record.Amount != 40 {
		t.Errorf("expected credit of 40, got %d", record.Amount)
	}
	if record.Type != models.TxTypeBaseScore {
		t.Errorf("expected type %s, got %s", models.TxTypeBaseScore, record.Type)
	}

	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.XogsBalance != 40 {
		t.Errorf("expected balance 40, got %d", fresh.XogsBalance)
	}
	if fresh.LastCreditedScore != 40 {
		t.Errorf("expected credited watermark 40, got %d", fresh.LastCreditedScore)
	}
	assertReconciled(t, db, user.ID)
}

func TestCreditBaseScoreUnchangedIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	ledger := NewLedgerService(db)
	user := createTestUser(t, db, "100", "alice", 40)

	if _, err := ledger.CreditBaseScore(user.ID, 40); err != nil {
		t.Fatalf("first credit failed: %v", err)
	}

	record, err := ledger.CreditBaseScore(user.ID, 40)
	if err != nil {
		t.Fatalf("second credit failed: %v", err)
	}
	if record != nil {
		t.Errorf("expected no transaction for unchanged score, got amount %d", record.Amount)
	}

	var count int64
	db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 transaction, got %d", count)
	}
	assertReconciled(t, db, user.ID)
}

func TestCreditBaseScoreIncreaseCreditsDelta(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	ledger := NewLedgerService(db)
	user := createTestUser(t, db, "100", "alice", 40)

	if _, err := ledger.CreditBaseScore(user.ID, 40); err != nil {
		t.Fatalf("first credit failed: %v", err)
	}

	record, err := ledger.CreditBaseScore(user.ID, 55)
	if err != nil {
		t.Fatalf("second credit failed: %v", err)
	}
	if record == nil || record.Amount != 15 {
		t.Fatalf("expected credit of 15 for the score increase, got %+v", record)
	}

	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.XogsBalance != 55 {
		t.Errorf("expected balance 55, got %d", fresh.XogsBalance)
	}
	assertReconciled(t, db, user.ID)
}

func TestCreditBaseScoreDecreaseNeverDebits(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	ledger := NewLedgerService(db)
	user := createTestUser(t, db, "100", "alice", 55)

	if _, err := ledger.CreditBaseScore(user.ID, 55); err != nil {
		t.Fatalf("first credit failed: %v", err)
	}

	record, err := ledger.CreditBaseScore(user.ID, 30)
	if err != nil {
		t.Fatalf("decrease call failed: %v", err)
	}
	if record != nil {
		t.Errorf("expected no transaction for a score decrease, got amount %d", record.Amount)
	}

	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.XogsBalance != 55 {
		t.Errorf("balance must stay at 55 after a decrease, got %d", fresh.XogsBalance)
	}
	if fresh.LastCreditedScore != 30 {
		t.Errorf("watermark should follow the score down to 30, got %d", fresh.LastCreditedScore)
	}

	// Recovery back up only pays out from the lowered watermark.
	record, err = ledger.CreditBaseScore(user.ID, 55)
	if err != nil {
		t.Fatalf("recovery credit failed: %v", err)
	}
	if record == nil || record.Amount != 25 {
		t.Fatalf("expected credit of 25 on recovery, got %+v", record)
	}
	assertReconciled(t, db, user.ID)
}

func TestCreditInviteAccepted(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	ledger := NewLedgerService(db)
	inviter := createTestUser(t, db, "100", "alice", 50)
	invitee := createTestUser(t, db, "200", "bob", 30)

	inviterTx, inviteeTx, err := ledger.CreditInviteAccepted(inviter.ID, invitee.ID, invitee.AIScore)
	if err != nil {
		t.Fatalf("CreditInviteAccepted failed: %v", err)
	}

	if inviterTx.Amount != 60 {
		t.Errorf("expected inviter credit of 60 (2x30), got %d", inviterTx.Amount)
	}
	if inviterTx.Type != models.TxTypeInviteReward {
		t.Errorf("expected inviter type %s, got %s", models.TxTypeInviteReward, inviterTx.Type)
	}
	if inviterTx.RelatedUserID == nil || *inviterTx.RelatedUserID != invitee.ID {
		t.Errorf("inviter transaction should reference the invitee")
	}

	if inviteeTx.Amount != 30 {
		t.Errorf("expected invitee credit of 30 (1x30), got %d", inviteeTx.Amount)
	}
	if inviteeTx.Type != models.TxTypeBaseScore {
		t.Errorf("expected invitee type %s, got %s", models.TxTypeBaseScore, inviteeTx.Type)
	}

	assertReconciled(t, db, inviter.ID)
	assertReconciled(t, db, invitee.ID)
}

func TestResyncBalanceConsistentIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	ledger := NewLedgerService(db)
	user := createTestUser(t, db, "100", "alice", 40)

	if _, err := ledger.CreditBaseScore(user.ID, 40); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	balance, adjustment, err := ledger.ResyncBalance(user.ID)
	if err != nil {
		t.Fatalf("ResyncBalance failed: %v", err)
	}
	if adjustment != nil {
		t.Errorf("expected no adjustment for a consistent user, got amount %d", adjustment.Amount)
	}
	if balance != 40 {
		t.Errorf("expected balance 40, got %d", balance)
	}
}

func TestResyncBalanceAbsorbsDrift(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	ledger := NewLedgerService(db)
	user := createTestUser(t, db, "100", "alice", 40)

	if _, err := ledger.CreditBaseScore(user.ID, 40); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	// Simulate drift: the balance was mutated outside the ledger.
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("xogs_balance", 100).Error; err != nil {
		t.Fatalf("failed to inject drift: %v", err)
	}

	balance, adjustment, err := ledger.ResyncBalance(user.ID)
	if err != nil {
		t.Fatalf("ResyncBalance failed: %v", err)
	}
	if adjustment == nil {
		t.Fatal("expected an adjustment transaction")
	}
	if adjustment.Type != models.TxTypeSystemAdjustment {
		t.Errorf("expected type %s, got %s", models.TxTypeSystemAdjustment, adjustment.Type)
	}
	if adjustment.Amount != 60 {
		t.Errorf("expected adjustment of 60 (drift 100-40), got %d", adjustment.Amount)
	}
	if balance != 100 {
		t.Errorf("expected resynced balance 100, got %d", balance)
	}
	assertReconciled(t, db, user.ID)

	// A second resync sees a consistent user and does nothing.
	balance, adjustment, err = ledger.ResyncBalance(user.ID)
	if err != nil {
		t.Fatalf("second ResyncBalance failed: %v", err)
	}
	if adjustment != nil {
		t.Errorf("expected no adjustment on a repeated resync, got amount %d", adjustment.Amount)
	}
	if balance != 100 {
		t.Errorf("balance changed on repeated resync: %d", balance)
	}
}

func TestResyncBalanceUserNotFound(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	ledger := NewLedgerService(db)

	if _, _, err := ledger.ResyncBalance(9999); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTransactionsFilterAndOrder(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	ledger := NewLedgerService(db)
	user := createTestUser(t, db, "100", "alice", 10)

	if _, err := ledger.CreditBaseScore(user.ID, 10); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if _, err := ledger.CreditTaskReward(user.ID, models.TaskDailyCheckin, 10); err != nil {
		t.Fatalf("task credit failed: %v", err)
	}
	if _, err := ledger.CreditTaskReward(user.ID, models.TaskPublishTweet, 25); err != nil {
		t.Fatalf("task credit failed: %v", err)
	}

	all, total, err := ledger.Transactions(user.ID, "", 10, 0)
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("expected 3 transactions, got total=%d len=%d", total, len(all))
	}

	taskOnly, total, err := ledger.Transactions(user.ID, models.TxTypeTaskReward, 10, 0)
	if err != nil {
		t.Fatalf("filtered Transactions failed: %v", err)
	}
	if total != 2 || len(taskOnly) != 2 {
		t.Fatalf("expected 2 task transactions, got total=%d len=%d", total, len(taskOnly))
	}
	for _, tx := range taskOnly {
		if tx.Type != models.TxTypeTaskReward {
			t.Errorf("filter leaked type %s", tx.Type)
		}
	}

	assertReconciled(t, db, user.ID)
}
