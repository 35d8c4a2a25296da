package services

import (
	"testing"
	"time"

	"xogs-backend/internal/models"
	"xogs-backend/internal/twitter"
)

func TestProcessTwitterLoginCreatesUser(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	ledger := NewLedgerService(db)
	users := NewUserService(db, &stubFetcher{}, ledger)
	invites := newInviteService(db)
	service := NewAuthService(db, users, invites)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profile := &twitter.Profile{
		TwitterID:      "100",
		Username:       "alice",
		Name:           "Alice",
		FollowersCount: 5000,
		StatusesCount:  300,
		CreatedAt:      now.AddDate(-2, 0, 0),
	}

	user, err := service.ProcessTwitterLogin(profile, now)
	if err != nil {
		t.Fatalf("ProcessTwitterLogin failed: %v", err)
	}
	if user.TwitterID != "100" || user.TwitterUsername != "alice" {
		t.Errorf("unexpected user identity: %+v", user)
	}
	if user.AIScore == 0 {
		t.Error("expected the first login to compute a score")
	}
	if user.XogsBalance != int64(user.AIScore) {
		t.Errorf("expected the score credited on first login, balance %d score %d",
			user.XogsBalance, user.AIScore)
	}

	codes, err := invites.GetUserInviteCodes(user.ID)
	if err != nil {
		t.Fatalf("GetUserInviteCodes failed: %v", err)
	}
	if len(codes) != 5 {
		t.Errorf("expected 5 invite codes for a new user, got %d", len(codes))
	}
	assertReconciled(t, db, user.ID)
}

func TestProcessTwitterLoginExistingUser(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	ledger := NewLedgerService(db)
	users := NewUserService(db, &stubFetcher{}, ledger)
	invites := newInviteService(db)
	service := NewAuthService(db, users, invites)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profile := &twitter.Profile{
		TwitterID: "100",
		Username:  "alice",
		CreatedAt: now.AddDate(-2, 0, 0),
	}

	first, err := service.ProcessTwitterLogin(profile, now)
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}

	second, err := service.ProcessTwitterLogin(profile, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("second login created a new user: %d vs %d", first.ID, second.ID)
	}

	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	if userCount != 1 {
		t.Errorf("expected a single user, got %d", userCount)
	}

	var codeCount int64
	db.Model(&models.InviteCode{}).Count(&codeCount)
	if codeCount != 5 {
		t.Errorf("repeat login must not mint more codes, got %d", codeCount)
	}
}
