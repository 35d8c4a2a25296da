package services

import (
	"errors"
	"testing"
	"time"

	"xogs-backend/internal/models"

	"gorm.io/gorm"
)

func newInviteService(db *gorm.DB) *InviteService {
	return NewInviteService(db, NewLedgerService(db), 5*time.Minute, 5)
}

func createInviteCode(t *testing.T, db *gorm.DB, ownerID uint, code string) *models.InviteCode {
	inviteCode := models.InviteCode{UserID: ownerID, Code: code}
	if err := db.Create(&inviteCode).Error; err != nil {
		t.Fatalf("failed to create invite code: %v", err)
	}
	return &inviteCode
}

func TestGenerateInviteCodes(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newInviteService(db)
	user := createTestUser(t, db, "100", "alice", 40)

	if err := service.GenerateInviteCodes(user.ID); err != nil {
		t.Fatalf("GenerateInviteCodes failed: %v", err)
	}

	codes, err := service.GetUserInviteCodes(user.ID)
	if err != nil {
		t.Fatalf("GetUserInviteCodes failed: %v", err)
	}
	if len(codes) != 5 {
		t.Errorf("expected 5 invite codes, got %d", len(codes))
	}
	for _, code := range codes {
		if code.UsedByUserID != nil {
			t.Errorf("fresh code %s should be unused", code.Code)
		}
	}
}

func TestAcceptInvite(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newInviteService(db)
	inviter := createTestUser(t, db, "100", "alice", 50)
	invitee := createTestUser(t, db, "200", "bob", 30)
	code := createInviteCode(t, db, inviter.ID, "Swift-Falcon-1234")

	record, err := service.AcceptInvite(invitee.ID, code.Code, time.Now())
	if err != nil {
		t.Fatalf("AcceptInvite failed: %v", err)
	}

	if record.InviterID != inviter.ID || record.InviteeID != invitee.ID {
		t.Errorf("record links wrong users: %+v", record)
	}
	if record.RewardAmount != 60 {
		t.Errorf("expected snapshotted reward 60 (2x30), got %d", record.RewardAmount)
	}

	var freshInviter, freshInvitee models.User
	db.First(&freshInviter, inviter.ID)
	db.First(&freshInvitee, invitee.ID)

	if freshInviter.XogsBalance != 60 {
		t.Errorf("expected inviter balance 60, got %d", freshInviter.XogsBalance)
	}
	if freshInvitee.XogsBalance != 30 {
		t.Errorf("expected invitee balance 30, got %d", freshInvitee.XogsBalance)
	}
	if freshInvitee.InviterID == nil || *freshInvitee.InviterID != inviter.ID {
		t.Errorf("invitee's inviter_id not set")
	}

	var freshCode models.InviteCode
	db.First(&freshCode, code.ID)
	if freshCode.UsedByUserID == nil || *freshCode.UsedByUserID != invitee.ID {
		t.Errorf("code not marked used by invitee")
	}
	if freshCode.UsedAt == nil {
		t.Errorf("code used_at not set")
	}

	assertReconciled(t, db, inviter.ID)
	assertReconciled(t, db, invitee.ID)
}

func TestAcceptInviteExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newInviteService(db)
	inviter := createTestUser(t, db, "100", "alice", 50)
	other := createTestUser(t, db, "300", "carol", 20)
	invitee := createTestUser(t, db, "200", "bob", 30)
	first := createInviteCode(t, db, inviter.ID, "Swift-Falcon-1234")
	second := createInviteCode(t, db, other.ID, "Brave-Otter-5678")

	if _, err := service.AcceptInvite(invitee.ID, first.Code, time.Now()); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	var txCountBefore int64
	db.Model(&models.Transaction{}).Count(&txCountBefore)

	_, err := service.AcceptInvite(invitee.ID, second.Code, time.Now())
	if !errors.Is(err, ErrAlreadyInvited) {
		t.Fatalf("expected ErrAlreadyInvited, got %v", err)
	}

	// The failed attempt must not have credited anybody.
	var txCountAfter int64
	db.Model(&models.Transaction{}).Count(&txCountAfter)
	if txCountAfter != txCountBefore {
		t.Errorf("rejected accept created %d new transactions", txCountAfter-txCountBefore)
	}

	var records int64
	db.Model(&models.InviteRecord{}).Where("invitee_id = ?", invitee.ID).Count(&records)
	if records != 1 {
		t.Errorf("expected exactly 1 invite record, got %d", records)
	}
}

func TestAcceptInviteSelf(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newInviteService(db)
	user := createTestUser(t, db, "100", "alice", 50)
	code := createInviteCode(t, db, user.ID, "Swift-Falcon-1234")

	if _, err := service.AcceptInvite(user.ID, code.Code, time.Now()); !errors.Is(err, ErrSelfInvite) {
		t.Errorf("expected ErrSelfInvite, got %v", err)
	}
}

func TestAcceptInviteInvalidCode(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newInviteService(db)
	invitee := createTestUser(t, db, "200", "bob", 30)

	if _, err := service.AcceptInvite(invitee.ID, "No-Such-Code", time.Now()); !errors.Is(err, ErrInvalidInviteCode) {
		t.Errorf("expected ErrInvalidInviteCode, got %v", err)
	}
}

func TestAcceptInviteUsedCode(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newInviteService(db)
	inviter := createTestUser(t, db, "100", "alice", 50)
	first := createTestUser(t, db, "200", "bob", 30)
	second := createTestUser(t, db, "300", "carol", 20)
	code := createInviteCode(t, db, inviter.ID, "Swift-Falcon-1234")

	if _, err := service.AcceptInvite(first.ID, code.Code, time.Now()); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	if _, err := service.AcceptInvite(second.ID, code.Code, time.Now()); !errors.Is(err, ErrInvalidInviteCode) {
		t.Errorf("expected ErrInvalidInviteCode for a used code, got %v", err)
	}
}

func TestAcceptInviteWindowExpired(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newInviteService(db)
	inviter := createTestUser(t, db, "100", "alice", 50)
	code := createInviteCode(t, db, inviter.ID, "Swift-Falcon-1234")

	// Registered ten minutes ago, well past the five-minute window.
	invitee := models.User{
		TwitterID:       "200",
		TwitterUsername: "bob",
		AIScore:         30,
		CreatedAt:       time.Now().Add(-10 * time.Minute),
	}
	if err := db.Create(&invitee).Error; err != nil {
		t.Fatalf("failed to create invitee: %v", err)
	}

	_, err := service.AcceptInvite(invitee.ID, code.Code, time.Now())
	if !errors.Is(err, ErrInviteWindowExpired) {
		t.Fatalf("expected ErrInviteWindowExpired, got %v", err)
	}

	// The code survives the failed attempt.
	var freshCode models.InviteCode
	db.First(&freshCode, code.ID)
	if freshCode.UsedByUserID != nil {
		t.Errorf("code must stay unused after a window-expired attempt")
	}
}
