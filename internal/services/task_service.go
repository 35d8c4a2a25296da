package services

import (
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"xogs-backend/internal/models"
)

// TaskService owns the task catalog and all claim gating (one-shot guards and
// repeatable cooldowns). The ledger only ever sees mutations this service has
// already authorized.
type TaskService struct {
	db     *gorm.DB
	ledger *LedgerService
	mu     sync.Mutex
}

// NewTaskService creates a new TaskService
func NewTaskService(db *gorm.DB, ledger *LedgerService) *TaskService {
	return &TaskService{db: db, ledger: ledger}
}

// defaultTasks is the built-in catalog seeded at startup.
var defaultTasks = []models.Task{
	{
		Key:           models.TaskDailyCheckin,
		Title:         "Daily check-in",
		Description:   "Check in once a day to earn XOGS",
		Reward:        10,
		Repeatable:    true,
		CooldownHours: 24,
		IsActive:      true,
	},
	{
		Key:         models.TaskFollowOfficial,
		Title:       "Follow the official account",
		Description: "Follow @xogs_official on X",
		Reward:      50,
		Repeatable:  false,
		IsActive:    true,
	},
	{
		Key:           models.TaskPublishTweet,
		Title:         "Post about XOGS",
		Description:   "Publish a tweet mentioning $XOGS",
		Reward:        25,
		Repeatable:    true,
		CooldownHours: 24,
		IsActive:      true,
	},
}

// SeedDefaultTasks inserts the built-in task catalog if it is not present yet
func (s *TaskService) SeedDefaultTasks() error {
	for _, task := range defaultTasks {
		var existing models.Task
		err := s.db.Where("key = ?", task.Key).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := s.db.Create(&task).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// TaskStatus is a task together with the requesting user's claim state
type TaskStatus struct {
	Task        models.Task `json:"task"`
	Claimed     bool        `json:"claimed"`
	ClaimableAt *time.Time  `json:"claimable_at,omitempty"`
}

// ListTasks returns the active catalog annotated with the user's claim state
func (s *TaskService) ListTasks(userID uint, now time.Time) ([]TaskStatus, error) {
	var tasks []models.Task
	if err := s.db.Where("is_active = ?", true).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}

	statuses := make([]TaskStatus, 0, len(tasks))
	for _, task := range tasks {
		status := TaskStatus{Task: task}

		var last models.TaskCompletion
		err := s.db.Where("user_id = ? AND task_id = ?", userID, task.ID).
			Order("claimed_at DESC").First(&last).Error
		if err == nil {
			if !task.Repeatable {
				status.Claimed = true
			} else {
				next := last.ClaimedAt.Add(time.Duration(task.CooldownHours) * time.Hour)
				if next.After(now) {
					status.Claimed = true
					status.ClaimableAt = &next
				}
			}
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}

// ClaimTask claims a task reward for a user. One-shot tasks fail with
// ErrTaskAlreadyClaimed on a second attempt; repeatable ones fail with
// ErrTaskOnCooldown until their cooldown elapses.
func (s *TaskService) ClaimTask(userID uint, taskKey string, now time.Time) (*models.TaskCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var task models.Task
	if err := s.db.Where("key = ?", taskKey).First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if !task.IsActive {
		return nil, ErrTaskInactive
	}

	var last models.TaskCompletion
	err := s.db.Where("user_id = ? AND task_id = ?", userID, task.ID).
		Order("claimed_at DESC").First(&last).Error
	if err == nil {
		if !task.Repeatable {
			return nil, ErrTaskAlreadyClaimed
		}
		if last.ClaimedAt.Add(time.Duration(task.CooldownHours) * time.Hour).After(now) {
			return nil, ErrTaskOnCooldown
		}
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	completion := models.TaskCompletion{
		UserID:    userID,
		TaskID:    task.ID,
		Reward:    task.Reward,
		ClaimedAt: now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&completion).Error; err != nil {
			return err
		}

		if _, err := s.ledger.WithTx(tx).CreditTaskReward(userID, task.Key, task.Reward); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	log.Printf("Task %s claimed by user %d for %d XOGS", task.Key, userID, task.Reward)
	return &completion, nil
}

// DailyCheckin claims the daily check-in task
func (s *TaskService) DailyCheckin(userID uint, now time.Time) (*models.TaskCompletion, error) {
	return s.ClaimTask(userID, models.TaskDailyCheckin, now)
}
