package services

import (
	"errors"
	"testing"
	"time"

	"xogs-backend/internal/models"

	"gorm.io/gorm"
)

func newTaskService(t *testing.T, db *gorm.DB) *TaskService {
	service := NewTaskService(db, NewLedgerService(db))
	if err := service.SeedDefaultTasks(); err != nil {
		t.Fatalf("SeedDefaultTasks failed: %v", err)
	}
	return service
}

func TestSeedDefaultTasksIdempotent(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newTaskService(t, db)
	if err := service.SeedDefaultTasks(); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	var count int64
	db.Model(&models.Task{}).Count(&count)
	if count != 3 {
		t.Errorf("expected 3 tasks after double seed, got %d", count)
	}
}

func TestClaimOneShotTask(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newTaskService(t, db)
	user := createTestUser(t, db, "100", "alice", 40)

	completion, err := service.ClaimTask(user.ID, models.TaskFollowOfficial, time.Now())
	if err != nil {
		t.Fatalf("ClaimTask failed: %v", err)
	}
	if completion.Reward != 50 {
		t.Errorf("expected reward 50, got %d", completion.Reward)
	}

	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.XogsBalance != 50 {
		t.Errorf("expected balance 50, got %d", fresh.XogsBalance)
	}
	assertReconciled(t, db, user.ID)

	// One-shot tasks reject a second claim forever.
	_, err = service.ClaimTask(user.ID, models.TaskFollowOfficial, time.Now().Add(48*time.Hour))
	if !errors.Is(err, ErrTaskAlreadyClaimed) {
		t.Errorf("expected ErrTaskAlreadyClaimed, got %v", err)
	}
}

func TestDailyCheckinCooldown(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newTaskService(t, db)
	user := createTestUser(t, db, "100", "alice", 40)

	start := time.Now()
	if _, err := service.DailyCheckin(user.ID, start); err != nil {
		t.Fatalf("first check-in failed: %v", err)
	}

	// An hour later is still on cooldown.
	if _, err := service.DailyCheckin(user.ID, start.Add(time.Hour)); !errors.Is(err, ErrTaskOnCooldown) {
		t.Errorf("expected ErrTaskOnCooldown, got %v", err)
	}

	// Past 24 hours it can be claimed again.
	if _, err := service.DailyCheckin(user.ID, start.Add(25*time.Hour)); err != nil {
		t.Fatalf("second check-in failed: %v", err)
	}

	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.XogsBalance != 20 {
		t.Errorf("expected balance 20 after two check-ins, got %d", fresh.XogsBalance)
	}
	assertReconciled(t, db, user.ID)
}

func TestClaimUnknownTask(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newTaskService(t, db)
	user := createTestUser(t, db, "100", "alice", 40)

	if _, err := service.ClaimTask(user.ID, "no_such_task", time.Now()); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestClaimInactiveTask(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newTaskService(t, db)
	user := createTestUser(t, db, "100", "alice", 40)

	if err := db.Model(&models.Task{}).Where("key = ?", models.TaskPublishTweet).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate task: %v", err)
	}

	if _, err := service.ClaimTask(user.ID, models.TaskPublishTweet, time.Now()); !errors.Is(err, ErrTaskInactive) {
		t.Errorf("expected ErrTaskInactive, got %v", err)
	}
}

func TestListTasksReflectsClaimState(t *testing.T) {
	db := setupTestDB(t)
	cleanTables(db)

	service := newTaskService(t, db)
	user := createTestUser(t, db, "100", "alice", 40)

	// Truncate so the timestamp round-trips through the database exactly.
	now := time.Now().Truncate(time.Second)
	if _, err := service.ClaimTask(user.ID, models.TaskFollowOfficial, now); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if _, err := service.DailyCheckin(user.ID, now); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}

	statuses, err := service.ListTasks(user.ID, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(statuses) != 3 {
		t.Fatalf("expected 3 task statuses, got %d", len(statuses))
	}

	byKey := make(map[string]TaskStatus, len(statuses))
	for _, status := range statuses {
		byKey[status.Task.Key] = status
	}

	if !byKey[models.TaskFollowOfficial].Claimed {
		t.Errorf("one-shot task should read as claimed")
	}
	if byKey[models.TaskFollowOfficial].ClaimableAt != nil {
		t.Errorf("one-shot task should have no claimable_at")
	}

	checkin := byKey[models.TaskDailyCheckin]
	if !checkin.Claimed {
		t.Errorf("check-in should be on cooldown an hour after claiming")
	}
	if checkin.ClaimableAt == nil {
		t.Fatal("check-in on cooldown should expose claimable_at")
	}
	if want := now.Add(24 * time.Hour); !checkin.ClaimableAt.Equal(want) {
		t.Errorf("expected claimable_at %v, got %v", want, *checkin.ClaimableAt)
	}

	if byKey[models.TaskPublishTweet].Claimed {
		t.Errorf("unclaimed task should not read as claimed")
	}
}
